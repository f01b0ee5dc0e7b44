package bptable

import "fmt"

// collect advances the active window to one past the end frame of oldest
// and clears the Live flag of entries the search can no longer reach.
//
// No future entry can point back before windowStart-1, so anything in
// [prevStart-1, newStart-1) that is not reachable from the entries of
// [newStart, frame) is dead for traceback. Reachability is tracked per
// frame: reaching a predecessor also queues every other entry of its
// frame. That keeps more entries than strictly needed, never fewer, and
// it decides which entries lattice extraction sees.
func (t *Table) collect(oldest EntryID, frame int) {
	if !oldest.Valid() {
		return
	}
	t.checkID(oldest)

	prevStart := t.windowStart
	newStart := t.entries[oldest].EndFrame + 1
	if newStart < prevStart {
		panic(fmt.Sprintf("bptable: window start moved back from %d to %d", prevStart, newStart))
	}
	if newStart <= prevStart+1 {
		return
	}
	floor := prevStart - 1

	retireEnd := t.frameStart(newStart - 1)
	for i := t.frameStart(floor); i < retireEnd; i++ {
		t.entries[i].Live = false
	}
	retired := retireEnd - t.frameStart(floor)

	agenda := t.agenda[:0]
	t.queued.Clear()
	seedEnd := t.frameStart(frame)
	for i := t.frameStart(newStart); i < seedEnd; i++ {
		t.queued.Add(uint32(i))
		agenda = append(agenda, EntryID(i))
	}
	if t.debugEnabled() {
		t.log.Debug("garbage collecting",
			"from", floor, "to", newStart-1,
			"retired", retired, "seeds", len(agenda))
	}

	reactivated := 0
	for len(agenda) > 0 {
		id := agenda[len(agenda)-1]
		agenda = agenda[:len(agenda)-1]

		bp := t.entries[id].Pred
		if !bp.Valid() {
			continue
		}
		pe := &t.entries[bp]
		if pe.EndFrame < floor {
			continue
		}
		if !pe.Live {
			reactivated++
			pe.Live = true
		}
		end := t.frameStart(pe.EndFrame + 1)
		for j := t.frameStart(pe.EndFrame); j < end; j++ {
			if t.queued.CheckedAdd(uint32(j)) {
				agenda = append(agenda, EntryID(j))
			}
		}
	}
	t.agenda = agenda

	t.windowStart = newStart
	t.stats.Collections++
	t.stats.Retired += retired
	t.stats.Reactivated += reactivated
	if t.debugEnabled() {
		t.log.Debug("garbage collected",
			"window_sf", newStart, "retired", retired, "reactivated", reactivated,
			"invalidated", retired-reactivated)
	}
}
