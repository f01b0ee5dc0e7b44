package bptable

import "strings"

// Result holds the word sequence recovered from the table.
type Result struct {
	Text     string  // concatenated non-filler words
	Words    []Word  // word-level details, fillers included
	LogScore float64 // path score of the final entry
}

// Word holds per-word timing and score information.
type Word struct {
	Text       string
	StartFrame int
	EndFrame   int
	LogScore   float64 // score gained over the predecessor
	Filler     bool
}

// Backtrace follows the predecessor chain of id back to the start of the
// utterance. It reads entries regardless of their Live flag.
func (t *Table) Backtrace(id EntryID) Result {
	t.checkID(id)

	n := 0
	for cur := id; cur.Valid(); cur = t.entries[cur].Pred {
		n++
	}
	words := make([]Word, n)
	for cur, i := id, n-1; cur.Valid(); cur, i = t.entries[cur].Pred, i-1 {
		e := t.entries[cur]
		gain := e.Score
		if e.Pred.Valid() {
			gain -= t.entries[e.Pred].Score
		}
		words[i] = Word{
			Text:       t.ctx.WordText(t.ctx.BaseWord(e.Word)),
			StartFrame: t.startOf(e.Pred),
			EndFrame:   e.EndFrame,
			LogScore:   gain,
			Filler:     t.ctx.IsFiller(e.Word),
		}
	}

	var sb strings.Builder
	for _, w := range words {
		if !w.Filler {
			sb.WriteString(w.Text)
		}
	}
	return Result{
		Text:     sb.String(),
		Words:    words,
		LogScore: t.entries[id].Score,
	}
}

// BestPath backtraces from the best exit of the last frame in which any
// word ended. It reports false when the table holds no entries.
func (t *Table) BestPath() (Result, bool) {
	for f := t.frame; f >= 0; f-- {
		if best := t.frameBest[f]; best.Valid() {
			return t.Backtrace(best), true
		}
	}
	return Result{}, false
}
