package bptable

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/hashicorp/go-multierror"

	"github.com/ieee0824/bptbl-go/internal/mathutil"
)

// Dump writes a human-readable listing of the live entries to w, including
// how many right-context slots of each entry hold a score. The format is
// for debugging only.
func (t *Table) Dump(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Backpointer table (%d entries):\n", t.n); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	live := 0
	for i := 0; i < t.n; i++ {
		e := t.entries[i]
		if !e.Live {
			continue
		}
		live++
		scored := 0
		for _, s := range t.scores[e.ScoreSlab : e.ScoreSlab+e.SlabSize] {
			if !mathutil.IsLogZero(s) {
				scored++
			}
		}
		fmt.Fprintf(tw, "%d\t%s\tstart %d\tend %d\tscore %.3f\tbp %d\trc %d/%d\n",
			i, t.ctx.WordText(e.Word), t.startOf(e.Pred), e.EndFrame, e.Score, e.Pred,
			scored, e.SlabSize)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d live entries\n", live)
	return err
}

// Check validates the table's structural invariants and returns every
// violation found, or nil.
func (t *Table) Check() error {
	var result *multierror.Error

	for f := 0; f <= t.frame; f++ {
		if t.frameIdx[f+1] < t.frameIdx[f] {
			result = multierror.Append(result, fmt.Errorf("frame %d: index %d before frame %d index %d",
				f, t.frameIdx[f+1], f-1, t.frameIdx[f]))
		}
	}

	head := 0
	for i := 0; i < t.n; i++ {
		id := EntryID(i)
		e := t.entries[i]
		if e.EndFrame < 0 || e.EndFrame > t.frame {
			result = multierror.Append(result, fmt.Errorf("entry %d: end frame %d outside [0,%d]", i, e.EndFrame, t.frame))
			continue
		}
		if first, end := t.FrameRange(e.EndFrame); id < first || id >= end {
			result = multierror.Append(result, fmt.Errorf("entry %d: outside frame %d range [%d,%d)", i, e.EndFrame, first, end))
		}
		if e.Pred.Valid() {
			if int(e.Pred) >= i {
				result = multierror.Append(result, fmt.Errorf("entry %d: predecessor %d is not older", i, e.Pred))
			} else if pf := t.entries[e.Pred].EndFrame; pf >= e.EndFrame {
				result = multierror.Append(result, fmt.Errorf("entry %d: predecessor %d ends in frame %d, not before %d",
					i, e.Pred, pf, e.EndFrame))
			}
		}
		if e.ScoreSlab != head || e.SlabSize < 1 {
			result = multierror.Append(result, fmt.Errorf("entry %d: score slab [%d,+%d) not contiguous at %d",
				i, e.ScoreSlab, e.SlabSize, head))
		}
		head = e.ScoreSlab + e.SlabSize
	}
	if head != t.scoreHead {
		result = multierror.Append(result, fmt.Errorf("score stack head %d, slabs end at %d", t.scoreHead, head))
	}
	if t.windowStart > t.frame+1 {
		result = multierror.Append(result, fmt.Errorf("window start %d ahead of frame %d", t.windowStart, t.frame))
	}

	return result.ErrorOrNil()
}
