package bptable

import (
	"errors"
	"fmt"

	"github.com/ieee0824/bptbl-go/acoustic"
	"github.com/ieee0824/bptbl-go/lexicon"
)

// ErrNoEntries is returned by Enter when the table is in the failed state,
// which means recognition failed for the utterance.
var ErrNoEntries = errors.New("bptable: no entries in backpointer table")

// EntryID indexes an entry. Ids are stable for the lifetime of a table.
type EntryID int32

// NoEntry is the absent entry: the predecessor of an utterance-initial word.
const NoEntry EntryID = -1

// Valid reports whether id refers to an entry.
func (id EntryID) Valid() bool { return id >= 0 }

// Entry is one committed word hypothesis.
type Entry struct {
	Word     lexicon.WordID
	EndFrame int
	Pred     EntryID
	Score    float64

	ScoreSlab int // offset of the right-context scores on the score stack
	SlabSize  int

	LastPhone       acoustic.PhoneID
	SecondLastPhone acoustic.PhoneID // NoPhone for single-phone words

	RealWord     lexicon.WordID // NoWord until resolved
	PrevRealWord lexicon.WordID

	Live bool
}

// Entry returns a copy of entry id.
func (t *Table) Entry(id EntryID) Entry {
	t.checkID(id)
	return t.entries[id]
}

// StartFrame returns the first frame of entry id: one past its
// predecessor's end, or 0 without a predecessor.
func (t *Table) StartFrame(id EntryID) int {
	t.checkID(id)
	return t.startOf(t.entries[id].Pred)
}

func (t *Table) startOf(pred EntryID) int {
	if !pred.Valid() {
		return 0
	}
	return t.entries[pred].EndFrame + 1
}

func (t *Table) checkID(id EntryID) {
	if id < 0 || int(id) >= t.n {
		panic(fmt.Sprintf("bptable: entry %d out of range [0,%d)", id, t.n))
	}
}

// Enter commits a word hypothesis for w ending in frame, which must be the
// frame opened by the last PushFrame. pred is the entry it extends, score
// its path score and rc the slot of its right context in the score slab.
//
// Enter returns ErrNoEntries when the table is in the failed state. Any
// other violated precondition is a corrupted search and panics.
func (t *Table) Enter(w lexicon.WordID, frame int, pred EntryID, score float64, rc int) (EntryID, error) {
	if t.failed {
		t.stats.FailedEnters++
		t.log.Error("no entries in backpointer table", "word", w, "frame", frame)
		return NoEntry, ErrNoEntries
	}
	if t.frame < 0 {
		panic(fmt.Sprintf("bptable: enter in frame %d before any frame was pushed", frame))
	}
	if frame != t.frame {
		panic(fmt.Sprintf("bptable: enter in frame %d, current frame is %d", frame, t.frame))
	}
	if w < 0 || int(w) >= len(t.wordLast) {
		panic(fmt.Sprintf("bptable: word %d out of range [0,%d)", w, len(t.wordLast)))
	}
	if pred.Valid() {
		t.checkID(pred)
		if t.entries[pred].EndFrame >= frame {
			panic(fmt.Sprintf("bptable: predecessor %d ends in frame %d, not before %d",
				pred, t.entries[pred].EndFrame, frame))
		}
	}
	if sf := t.startOf(pred); sf < t.windowStart {
		panic(fmt.Sprintf("bptable: entry starting in frame %d precedes window start %d", sf, t.windowStart))
	}

	last := t.ctx.LastPhone(w)
	secondLast := acoustic.NoPhone
	size := 1
	if !t.ctx.IsSinglePhone(w) {
		secondLast = t.ctx.SecondLastPhone(w)
		size = t.ctx.RightContextCount(last, secondLast)
	}
	if rc < 0 || rc >= size {
		panic(fmt.Sprintf("bptable: right context %d out of range [0,%d) for %s",
			rc, size, t.ctx.WordText(w)))
	}

	if t.n >= len(t.entries) {
		t.growEntries()
	}
	t.reserveScores(size)

	id := EntryID(t.n)
	t.entries[id] = Entry{
		Word:            w,
		EndFrame:        frame,
		Pred:            pred,
		Score:           score,
		ScoreSlab:       t.scoreHead,
		SlabSize:        size,
		LastPhone:       last,
		SecondLastPhone: secondLast,
		RealWord:        lexicon.NoWord,
		PrevRealWord:    lexicon.NoWord,
		Live:            true,
	}
	slab := t.scores[t.scoreHead : t.scoreHead+size]
	for i := range slab {
		slab[i] = WorstScore
	}
	slab[rc] = score
	t.resolveLMState(id)
	t.wordLast[w] = id

	t.n++
	t.scoreHead += size

	if best := t.frameBest[frame]; !best.Valid() || score > t.entries[best].Score {
		t.frameBest[frame] = id
	}
	if t.debugEnabled() {
		t.log.Debug("entered backpointer",
			"bp", id, "word", t.ctx.WordText(w), "sf", t.startOf(pred), "ef", frame,
			"window_sf", t.windowStart)
	}
	return id, nil
}

// Improve merges a competing exit of the same word into entry id, which
// must belong to the current frame (typically LastEntry of the word). The
// right-context slot rc keeps the better of its score and score; when
// score also beats the entry's path score, the entry takes pred and score
// and its LM state is resolved again. Improve reports whether anything
// changed.
func (t *Table) Improve(id, pred EntryID, score float64, rc int) bool {
	t.checkID(id)
	e := &t.entries[id]
	if e.EndFrame != t.frame {
		panic(fmt.Sprintf("bptable: improve entry %d of frame %d in frame %d", id, e.EndFrame, t.frame))
	}
	if rc < 0 || rc >= e.SlabSize {
		panic(fmt.Sprintf("bptable: right context %d out of range [0,%d)", rc, e.SlabSize))
	}

	changed := false
	if slot := &t.scores[e.ScoreSlab+rc]; score > *slot {
		*slot = score
		changed = true
	}
	if score > e.Score {
		if pred != e.Pred {
			if pred.Valid() {
				t.checkID(pred)
				if t.entries[pred].EndFrame >= e.EndFrame {
					panic(fmt.Sprintf("bptable: predecessor %d does not precede entry %d", pred, id))
				}
			}
			if sf := t.startOf(pred); sf < t.windowStart {
				panic(fmt.Sprintf("bptable: entry starting in frame %d precedes window start %d", sf, t.windowStart))
			}
			e.Pred = pred
			e.RealWord, e.PrevRealWord = lexicon.NoWord, lexicon.NoWord
			t.resolveLMState(id)
		}
		e.Score = score
		if best := t.frameBest[e.EndFrame]; t.entries[best].Score < score {
			t.frameBest[e.EndFrame] = id
		}
		changed = true
	}
	if changed {
		t.stats.Improvements++
	}
	return changed
}

// RightContextScores returns a copy of entry id's score slab.
func (t *Table) RightContextScores(id EntryID) []float64 {
	t.checkID(id)
	e := t.entries[id]
	out := make([]float64, e.SlabSize)
	copy(out, t.scores[e.ScoreSlab:e.ScoreSlab+e.SlabSize])
	return out
}

// SetRightContextScore overwrites slot rc of entry id's score slab.
func (t *Table) SetRightContextScore(id EntryID, rc int, score float64) {
	t.checkID(id)
	e := t.entries[id]
	if rc < 0 || rc >= e.SlabSize {
		panic(fmt.Sprintf("bptable: right context %d out of range [0,%d)", rc, e.SlabSize))
	}
	t.scores[e.ScoreSlab+rc] = score
}

func (t *Table) growEntries() {
	n := 2 * len(t.entries)
	if n == 0 {
		n = 1
	}
	grown := make([]Entry, n)
	copy(grown, t.entries[:t.n])
	t.entries = grown
	t.stats.EntryResizes++
	t.log.Info("resized backpointer table", "entries", n)
}

// reserveScores doubles the score stack until the free tail holds a full
// phone inventory worth of slots, which bounds any single slab.
func (t *Table) reserveScores(size int) {
	headroom := t.ctx.NumPhones()
	if size > headroom {
		headroom = size
	}
	if t.scoreHead < len(t.scores)-headroom {
		return
	}
	n := len(t.scores)
	if n == 0 {
		n = headroom
	}
	for t.scoreHead >= n-headroom {
		n *= 2
	}
	grown := make([]float64, n)
	copy(grown, t.scores[:t.scoreHead])
	t.scores = grown
	t.stats.ScoreResizes++
	t.log.Info("resized score stack", "entries", n)
}
