package bptable

import "fmt"

// PushFrame opens frame, which must directly follow the last pushed frame
// (the first push opens frame 0). It records the entry boundary of the new
// frame, runs the garbage collector with oldest as the oldest predecessor
// still referenced by the search, and returns the id the first entry of
// the frame will get. oldest may be NoEntry while no active path has a
// predecessor, in which case nothing is collected.
func (t *Table) PushFrame(oldest EntryID, frame int) EntryID {
	if t.closed {
		panic("bptable: push frame on closed table")
	}
	if frame != t.frame+1 {
		panic(fmt.Sprintf("bptable: pushed frame %d after frame %d", frame, t.frame))
	}
	for frame >= len(t.frameBest) {
		t.growFrames()
	}
	if t.debugEnabled() {
		oldestFrame := -1
		if oldest.Valid() && int(oldest) < t.n {
			oldestFrame = t.entries[oldest].EndFrame
		}
		t.log.Debug("pushing frame", "frame", frame, "oldest_bp", oldest, "oldest_frame", oldestFrame)
	}
	t.frameIdx[frame+1] = t.n
	t.frameBest[frame] = NoEntry
	t.frame = frame
	t.collect(oldest, frame)
	return EntryID(t.n)
}

// FrameRange returns the half-open id range [first, end) of the entries
// that end in frame f, for f from -1 to the current frame.
func (t *Table) FrameRange(f int) (first, end EntryID) {
	if f < -1 || f > t.frame {
		panic(fmt.Sprintf("bptable: frame %d out of range [-1,%d]", f, t.frame))
	}
	first = EntryID(t.frameIdx[f+1])
	if f == t.frame {
		return first, EntryID(t.n)
	}
	return first, EntryID(t.frameIdx[f+2])
}

// BestExit returns the best scoring entry of frame f, or NoEntry when no
// word ended there.
func (t *Table) BestExit(f int) EntryID {
	if f < 0 || f > t.frame {
		panic(fmt.Sprintf("bptable: frame %d out of range [0,%d]", f, t.frame))
	}
	return t.frameBest[f]
}

// frameStart is the first entry of frame f; f may be -1.
func (t *Table) frameStart(f int) int {
	return t.frameIdx[f+1]
}

func (t *Table) growFrames() {
	n := 2 * len(t.frameBest)
	if n == 0 {
		n = 1
	}
	idx := make([]int, n+1)
	copy(idx, t.frameIdx)
	best := make([]EntryID, n)
	copy(best, t.frameBest)
	t.frameIdx = idx
	t.frameBest = best
	t.stats.FrameResizes++
	t.log.Info("resized frame index", "frames", n)
}
