package main

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/ieee0824/bptbl-go/acoustic"
	"github.com/ieee0824/bptbl-go/bptable"
	"github.com/ieee0824/bptbl-go/lexicon"
)

// Trace is a recorded sequence of search events. Entries are named by
// label so predecessors and oldest predecessors can refer to them.
type Trace struct {
	Table     bptable.Config `yaml:"table"`
	Phones    []string       `yaml:"phones"`
	Triphones []string       `yaml:"triphones"`
	Words     []TraceWord    `yaml:"words"`
	Frames    []TraceFrame   `yaml:"frames"`
}

// TraceWord is an inline dictionary entry.
type TraceWord struct {
	Word   string   `yaml:"word"`
	Phones []string `yaml:"phones"`
	Filler bool     `yaml:"filler"`
}

// TraceFrame lists the events of one frame. Frames missing from the trace
// are pushed without entries.
type TraceFrame struct {
	Frame  int          `yaml:"frame"`
	Oldest string       `yaml:"oldest"`
	Enter  []TraceEntry `yaml:"enter"`
}

// TraceEntry is one Enter call.
type TraceEntry struct {
	Label string  `yaml:"label"`
	Word  string  `yaml:"word"`
	Pred  string  `yaml:"pred"`
	Score float64 `yaml:"score"`
	RC    int     `yaml:"rc"`
}

// LoadTrace reads a YAML trace.
func LoadTrace(r io.Reader) (*Trace, error) {
	var tr Trace
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&tr); err != nil {
		return nil, fmt.Errorf("decode trace: %w", err)
	}
	return &tr, nil
}

// LoadTraceFile is a convenience wrapper that opens a file path.
func LoadTraceFile(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadTrace(f)
}

// Validate checks frame order and label references and reports every
// problem found.
func (tr *Trace) Validate() error {
	var result *multierror.Error
	labels := make(map[string]int)
	last := -1
	for _, fr := range tr.Frames {
		if fr.Frame <= last {
			result = multierror.Append(result, fmt.Errorf("frame %d: frames must be strictly increasing", fr.Frame))
		}
		last = fr.Frame
		if fr.Oldest != "" {
			if _, ok := labels[fr.Oldest]; !ok {
				result = multierror.Append(result, fmt.Errorf("frame %d: unknown oldest %q", fr.Frame, fr.Oldest))
			}
		}
		for _, e := range fr.Enter {
			if e.Pred != "" {
				if pf, ok := labels[e.Pred]; !ok {
					result = multierror.Append(result, fmt.Errorf("frame %d: unknown pred %q", fr.Frame, e.Pred))
				} else if pf >= fr.Frame {
					result = multierror.Append(result, fmt.Errorf("frame %d: pred %q is not older", fr.Frame, e.Pred))
				}
			}
			if e.Label == "" {
				continue
			}
			if _, dup := labels[e.Label]; dup {
				result = multierror.Append(result, fmt.Errorf("frame %d: duplicate label %q", fr.Frame, e.Label))
			}
			labels[e.Label] = fr.Frame
		}
	}
	return result.ErrorOrNil()
}

// Model builds the acoustic model described by the trace, or base when the
// trace names no phones.
func (tr *Trace) Model(base *acoustic.Model) (*acoustic.Model, error) {
	m := base
	if len(tr.Phones) > 0 || m == nil {
		inv := acoustic.DefaultInventory()
		if len(tr.Phones) > 0 {
			phones := make([]acoustic.Phoneme, len(tr.Phones))
			for i, p := range tr.Phones {
				phones[i] = acoustic.Phoneme(p)
			}
			inv = acoustic.NewInventory(phones)
		}
		m = acoustic.NewModel(inv)
	}
	for _, tri := range tr.Triphones {
		l, c, r := acoustic.Triphone(tri).Parts()
		for _, p := range []string{l, c, r} {
			if p == acoustic.WordBoundary {
				continue
			}
			if _, ok := m.Inventory.ID(acoustic.Phoneme(p)); !ok {
				return nil, fmt.Errorf("triphone %s: unknown phone %q", tri, p)
			}
		}
		m.AddTriphone(acoustic.Triphone(tri))
	}
	return m, nil
}

// AddWords adds the inline dictionary entries to dict.
func (tr *Trace) AddWords(dict *lexicon.Dictionary) {
	for _, w := range tr.Words {
		phones := make([]acoustic.Phoneme, len(w.Phones))
		for i, p := range w.Phones {
			phones[i] = acoustic.Phoneme(p)
		}
		if w.Filler {
			dict.AddFiller(w.Word, phones)
		} else {
			dict.Add(w.Word, "", phones)
		}
	}
}

// Replay drives tb through the trace and returns the entry of every label.
func (tr *Trace) Replay(tb *bptable.Table, dict *lexicon.Dictionary) (map[string]bptable.EntryID, error) {
	ids := make(map[string]bptable.EntryID)
	frame := 0
	for _, fr := range tr.Frames {
		for ; frame < fr.Frame; frame++ {
			tb.PushFrame(bptable.NoEntry, frame)
		}
		oldest := bptable.NoEntry
		if fr.Oldest != "" {
			oldest = ids[fr.Oldest]
		}
		tb.PushFrame(oldest, fr.Frame)
		frame = fr.Frame + 1

		for _, e := range fr.Enter {
			w, ok := dict.ID(e.Word)
			if !ok {
				return ids, fmt.Errorf("frame %d: word %q not in dictionary", fr.Frame, e.Word)
			}
			pred := bptable.NoEntry
			if e.Pred != "" {
				pred = ids[e.Pred]
			}
			id, err := tb.Enter(w, fr.Frame, pred, e.Score, e.RC)
			if err != nil {
				return ids, fmt.Errorf("frame %d: enter %s: %w", fr.Frame, e.Word, err)
			}
			if e.Label != "" {
				ids[e.Label] = id
			}
		}
	}
	return ids, nil
}
