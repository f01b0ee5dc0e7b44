// Package phonectx holds the phonetic context shared between a recognizer
// and the backpointer tables of its recognition passes: the dictionary,
// the acoustic model, and per-diphone right-context variant tables.
//
// A Context is reference counted. The creator owns the first reference;
// every table that keeps the context calls Retain and later Release.
package phonectx

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ieee0824/bptbl-go/acoustic"
	"github.com/ieee0824/bptbl-go/lexicon"
)

// RightContext lists the distinct senone sequences a word-final phone can
// take across all right contexts.
type RightContext struct {
	SSIDs []int // distinct senone-sequence ids, in first-seen order
	Index []int // right phone id -> slot in SSIDs
}

// Len returns the number of variants.
func (rc *RightContext) Len() int { return len(rc.SSIDs) }

type diphone struct {
	last, secondLast acoustic.PhoneID
}

// Context is the shared phonetic-context handle.
type Context struct {
	dict  *lexicon.Dictionary
	model *acoustic.Model

	lastPhone       []acoustic.PhoneID
	secondLastPhone []acoustic.PhoneID

	refs atomic.Int32

	mu sync.Mutex
	rc map[diphone]*RightContext
}

// New builds a context over dict and model with a reference count of one.
// Every phone used by dict must be in the model's inventory.
func New(dict *lexicon.Dictionary, model *acoustic.Model) (*Context, error) {
	c := &Context{
		dict:            dict,
		model:           model,
		lastPhone:       make([]acoustic.PhoneID, dict.Len()),
		secondLastPhone: make([]acoustic.PhoneID, dict.Len()),
		rc:              make(map[diphone]*RightContext),
	}
	for i := 0; i < dict.Len(); i++ {
		w := lexicon.WordID(i)
		phones := dict.Phonemes(w)
		if len(phones) == 0 {
			return nil, fmt.Errorf("word %q: empty pronunciation", dict.Word(w))
		}
		ids := make([]acoustic.PhoneID, len(phones))
		for j, p := range phones {
			id, ok := model.Inventory.ID(p)
			if !ok {
				return nil, fmt.Errorf("word %q: phone %q not in acoustic model", dict.Word(w), p)
			}
			ids[j] = id
		}
		c.lastPhone[i] = ids[len(ids)-1]
		c.secondLastPhone[i] = acoustic.NoPhone
		if len(ids) > 1 {
			c.secondLastPhone[i] = ids[len(ids)-2]
		}
	}
	c.refs.Store(1)
	return c, nil
}

// Retain adds a reference and returns c.
func (c *Context) Retain() *Context {
	if c.refs.Add(1) <= 1 {
		panic("phonectx: retain of released context")
	}
	return c
}

// Release drops a reference and returns the number remaining. The last
// release drops the cached right-context tables.
func (c *Context) Release() int {
	n := c.refs.Add(-1)
	switch {
	case n < 0:
		panic("phonectx: context released too many times")
	case n == 0:
		c.mu.Lock()
		c.rc = nil
		c.mu.Unlock()
	}
	return int(n)
}

// RefCount returns the current number of references.
func (c *Context) RefCount() int { return int(c.refs.Load()) }

// Dict returns the dictionary.
func (c *Context) Dict() *lexicon.Dictionary { return c.dict }

// Model returns the acoustic model.
func (c *Context) Model() *acoustic.Model { return c.model }

// NumPhones returns the size of the context-independent phone inventory.
func (c *Context) NumPhones() int { return c.model.Inventory.Len() }

// LastPhone returns the final phone of w.
func (c *Context) LastPhone(w lexicon.WordID) acoustic.PhoneID { return c.lastPhone[w] }

// SecondLastPhone returns the second-to-last phone of w, or NoPhone for
// single-phone words.
func (c *Context) SecondLastPhone(w lexicon.WordID) acoustic.PhoneID {
	return c.secondLastPhone[w]
}

// IsSinglePhone reports whether w has a one-phone pronunciation.
func (c *Context) IsSinglePhone(w lexicon.WordID) bool {
	return c.secondLastPhone[w] == acoustic.NoPhone
}

// IsFiller reports whether w is a filler word.
func (c *Context) IsFiller(w lexicon.WordID) bool { return c.dict.IsFiller(w) }

// BaseWord returns the base form of w.
func (c *Context) BaseWord(w lexicon.WordID) lexicon.WordID { return c.dict.BaseWord(w) }

// WordText returns the printable name of w.
func (c *Context) WordText(w lexicon.WordID) string { return c.dict.Word(w) }

// RightContextCount returns the number of right-context variants of the
// diphone (secondLast, last).
func (c *Context) RightContextCount(last, secondLast acoustic.PhoneID) int {
	if secondLast == acoustic.NoPhone {
		return 1
	}
	return c.RightContext(last, secondLast).Len()
}

// RightContextIndex returns the slot of w's score slab that belongs to
// right phone rc.
func (c *Context) RightContextIndex(w lexicon.WordID, rc acoustic.PhoneID) int {
	if c.IsSinglePhone(w) {
		return 0
	}
	return c.RightContext(c.lastPhone[w], c.secondLastPhone[w]).Index[rc]
}

// RightContext returns the variant table of the diphone (secondLast, last),
// building it on first use.
func (c *Context) RightContext(last, secondLast acoustic.PhoneID) *RightContext {
	key := diphone{last: last, secondLast: secondLast}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rc == nil {
		panic("phonectx: use of released context")
	}
	if rc, ok := c.rc[key]; ok {
		return rc
	}

	inv := c.model.Inventory
	rc := &RightContext{Index: make([]int, inv.Len())}
	seen := make(map[int]int)
	for r := 0; r < inv.Len(); r++ {
		ssid := c.model.Resolve(inv.Phone(secondLast), inv.Phone(last), inv.Phone(acoustic.PhoneID(r)))
		slot, ok := seen[ssid]
		if !ok {
			slot = len(rc.SSIDs)
			seen[ssid] = slot
			rc.SSIDs = append(rc.SSIDs, ssid)
		}
		rc.Index[r] = slot
	}
	c.rc[key] = rc
	return rc
}
