package bptable

import "github.com/ieee0824/bptbl-go/lexicon"

// resolveLMState sets RealWord and PrevRealWord of entry id from the
// nearest non-filler word on its predecessor chain. Entries whose chain
// holds only fillers stay unresolved.
func (t *Table) resolveLMState(id EntryID) {
	e := &t.entries[id]
	cur := id
	w := e.Word
	for t.ctx.IsFiller(w) {
		cur = t.entries[cur].Pred
		if !cur.Valid() {
			return
		}
		w = t.entries[cur].Word
	}
	e.RealWord = t.ctx.BaseWord(w)

	e.PrevRealWord = lexicon.NoWord
	if prev := t.entries[cur].Pred; prev.Valid() {
		e.PrevRealWord = t.entries[prev].RealWord
	}
}

// LMState returns the real word of entry id and the real word before it,
// both NoWord when unresolved.
func (t *Table) LMState(id EntryID) (word, prev lexicon.WordID) {
	t.checkID(id)
	e := t.entries[id]
	return e.RealWord, e.PrevRealWord
}
