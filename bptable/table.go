// Package bptable records the word hypotheses a frame-synchronous decoder
// commits during search and reclaims the ones that can no longer be part
// of a traceback.
//
// A recognition pass drives a Table in strict frame order: PushFrame once
// per frame, then Enter for every word hypothesis that ends in that frame.
// Each entry keeps its predecessor, its path score, and a slab of
// per-right-context scores on a shared score stack. PushFrame also runs a
// windowed garbage collector that clears the Live flag of entries the
// search frontier can no longer reach. Storage is never compacted: entry
// ids stay valid until Close.
//
// A Table is not safe for concurrent use.
package bptable

import (
	"context"
	"io"
	"log/slog"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/ieee0824/bptbl-go/internal/mathutil"
	"github.com/ieee0824/bptbl-go/lexicon"
	"github.com/ieee0824/bptbl-go/phonectx"
)

// WorstScore fills right-context slots that have not been scored.
const WorstScore = mathutil.LogZero

// Config holds table sizing parameters.
type Config struct {
	InitialEntries   int `yaml:"initial_entries"`    // entry array capacity
	InitialFrames    int `yaml:"initial_frames"`     // frame index capacity
	ScoreStackFactor int `yaml:"score_stack_factor"` // score stack slots per initial entry
}

// DefaultConfig returns reasonable default parameters.
func DefaultConfig() Config {
	return Config{
		InitialEntries:   256,
		InitialFrames:    128,
		ScoreStackFactor: 20,
	}
}

// Option configures a Table.
type Option func(*Table)

// WithConfig sets the sizing parameters. Non-positive fields keep their
// defaults.
func WithConfig(cfg Config) Option {
	return func(t *Table) {
		if cfg.InitialEntries > 0 {
			t.cfg.InitialEntries = cfg.InitialEntries
		}
		if cfg.InitialFrames > 0 {
			t.cfg.InitialFrames = cfg.InitialFrames
		}
		if cfg.ScoreStackFactor > 0 {
			t.cfg.ScoreStackFactor = cfg.ScoreStackFactor
		}
	}
}

// WithInitialEntries sets the initial entry capacity.
func WithInitialEntries(n int) Option {
	return func(t *Table) {
		if n > 0 {
			t.cfg.InitialEntries = n
		}
	}
}

// WithInitialFrames sets the initial frame index capacity.
func WithInitialFrames(n int) Option {
	return func(t *Table) {
		if n > 0 {
			t.cfg.InitialFrames = n
		}
	}
}

// WithLogger sets the logger. Resizes are logged at Info, collections and
// entries at Debug.
func WithLogger(l *slog.Logger) Option {
	return func(t *Table) {
		if l != nil {
			t.log = l
		}
	}
}

// Stats counts the work done by a table.
type Stats struct {
	Collections  int // sweeps actually run
	Retired      int // entries provisionally cleared by sweeps
	Reactivated  int // retired entries found reachable again
	EntryResizes int
	ScoreResizes int
	FrameResizes int
	Improvements int // successful Improve calls
	FailedEnters int // Enter calls rejected with ErrNoEntries
}

// Table is the backpointer table of one recognition pass.
type Table struct {
	cfg Config
	ctx *phonectx.Context
	log *slog.Logger

	entries []Entry // len(entries) is the capacity
	n       int

	scores    []float64 // len(scores) is the capacity
	scoreHead int

	frameIdx  []int     // frameIdx[f+1] is the first entry of frame f
	frameBest []EntryID // best scoring entry of each frame
	frame     int       // last pushed frame

	wordLast []EntryID

	windowStart int

	agenda []EntryID
	queued *roaring.Bitmap

	failed bool
	closed bool
	stats  Stats
}

// New creates a table and retains ctx until Close.
func New(ctx *phonectx.Context, opts ...Option) *Table {
	t := &Table{
		cfg:   DefaultConfig(),
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		frame: -1,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.ctx = ctx.Retain()

	t.entries = make([]Entry, t.cfg.InitialEntries)
	t.scores = make([]float64, t.cfg.InitialEntries*t.cfg.ScoreStackFactor)
	t.frameIdx = make([]int, t.cfg.InitialFrames+1)
	t.frameBest = make([]EntryID, t.cfg.InitialFrames)
	t.wordLast = make([]EntryID, ctx.Dict().Len())
	for i := range t.wordLast {
		t.wordLast[i] = NoEntry
	}
	t.queued = roaring.New()
	return t
}

// Close releases the phonetic context and all storage. The table is left
// in the failed state: Enter reports ErrNoEntries afterwards. Calling Close
// more than once is a no-op.
func (t *Table) Close() {
	if t.closed {
		return
	}
	t.closed = true
	t.failed = true
	t.ctx.Release()
	t.entries = nil
	t.scores = nil
	t.frameIdx = nil
	t.frameBest = nil
	t.wordLast = nil
	t.agenda = nil
	t.queued = nil
	t.n = 0
	t.frame = -1
}

// MarkFailed puts the table into the no-entries state that signals a failed
// search: every later Enter reports ErrNoEntries.
func (t *Table) MarkFailed() {
	if !t.failed {
		t.log.Warn("backpointer table marked failed", "entries", t.n, "frame", t.frame)
	}
	t.failed = true
}

// debugEnabled consults the handler on each call; its level may change
// after New.
func (t *Table) debugEnabled() bool {
	return t.log.Enabled(context.Background(), slog.LevelDebug)
}

// Failed reports whether the table is in the no-entries state.
func (t *Table) Failed() bool { return t.failed }

// Context returns the phonetic context the table holds.
func (t *Table) Context() *phonectx.Context { return t.ctx }

// Len returns the number of entries.
func (t *Table) Len() int { return t.n }

// Cap returns the entry capacity.
func (t *Table) Cap() int { return len(t.entries) }

// ScoreStackCap returns the score stack capacity.
func (t *Table) ScoreStackCap() int { return len(t.scores) }

// ScoreStackLen returns the number of score slots in use.
func (t *Table) ScoreStackLen() int { return t.scoreHead }

// FrameCap returns the frame index capacity.
func (t *Table) FrameCap() int { return len(t.frameBest) }

// CurrentFrame returns the last pushed frame, or -1 before the first push.
func (t *Table) CurrentFrame() int { return t.frame }

// WindowStart returns the earliest frame whose entries are still
// definitely live.
func (t *Table) WindowStart() int { return t.windowStart }

// Stats returns the work counters.
func (t *Table) Stats() Stats { return t.stats }

// LastEntry returns the latest entry created for word w, or NoEntry.
func (t *Table) LastEntry(w lexicon.WordID) EntryID { return t.wordLast[w] }

// LiveSet returns the ids of all live entries.
func (t *Table) LiveSet() *roaring.Bitmap {
	rb := roaring.New()
	for i := 0; i < t.n; i++ {
		if t.entries[i].Live {
			rb.Add(uint32(i))
		}
	}
	return rb
}
