package scheduler

import (
	"fmt"
	"sort"
	"time"
)

// The scheduler owns one ordered slot list. Every mutation must keep it
// sorted, pairwise non-overlapping, and covering exactly the scheduling
// window minus sleep; violating that is a defect, not a runtime condition.

func (s *Scheduler) sortSlots() {
	sort.SliceStable(s.slots, func(i, j int) bool {
		return s.slots[i].Start.Before(s.slots[j].Start)
	})
}

// splice replaces the slot at idx with the given pieces, dropping
// zero-length pieces, and restores ordering.
func (s *Scheduler) splice(idx int, pieces ...Slot) {
	kept := make([]Slot, 0, len(pieces))
	for _, p := range pieces {
		if p.End.After(p.Start) {
			kept = append(kept, p)
		}
	}
	out := make([]Slot, 0, len(s.slots)-1+len(kept))
	out = append(out, s.slots[:idx]...)
	out = append(out, kept...)
	out = append(out, s.slots[idx+1:]...)
	s.slots = out
	s.sortSlots()
}

// mergeAvailable coalesces adjacent available slots into one.
func (s *Scheduler) mergeAvailable() {
	if len(s.slots) == 0 {
		return
	}
	merged := make([]Slot, 0, len(s.slots))
	for _, slot := range s.slots {
		n := len(merged)
		if n > 0 && merged[n-1].Kind == SlotAvailable && slot.Kind == SlotAvailable && merged[n-1].End.Equal(slot.Start) {
			merged[n-1].End = slot.End
			continue
		}
		merged = append(merged, slot)
	}
	s.slots = merged
}

// taskSlotIndexes returns the indexes of all slots occupied by the task.
func (s *Scheduler) taskSlotIndexes(taskID int64) []int {
	var idxs []int
	for i, slot := range s.slots {
		if slot.Kind == SlotTask && slot.Task != nil && slot.Task.ID == taskID {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

// taskSpan returns the overall [start, end) covered by a task's slots.
func (s *Scheduler) taskSpan(taskID int64) (time.Time, time.Time, bool) {
	idxs := s.taskSlotIndexes(taskID)
	if len(idxs) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return s.slots[idxs[0]].Start, s.slots[idxs[len(idxs)-1]].End, true
}

// dayTaskMinutes sums scheduled task minutes on the given calendar day,
// excluding the task identified by excludeID.
func (s *Scheduler) dayTaskMinutes(day time.Time, excludeID int64) int {
	total := 0
	for _, slot := range s.slots {
		if slot.Kind != SlotTask || slot.Task == nil {
			continue
		}
		if slot.Task.ID == excludeID {
			continue
		}
		if sameDay(slot.Start, day) {
			total += slot.Minutes()
		}
	}
	return total
}

// dayDifficulty sums the difficulty of distinct tasks scheduled on a day.
func (s *Scheduler) dayDifficulty(day time.Time, excludeID int64) int {
	seen := map[int64]bool{}
	total := 0
	for _, slot := range s.slots {
		if slot.Kind != SlotTask || slot.Task == nil || slot.Task.ID == excludeID {
			continue
		}
		if !sameDay(slot.Start, day) || seen[slot.Task.ID] {
			continue
		}
		seen[slot.Task.ID] = true
		total += slot.Task.Difficulty
	}
	return total
}

// snapshot deep-copies the slot list so a failed displacement attempt can
// roll back without any partial-eviction state leaking to the caller.
func (s *Scheduler) snapshot() []Slot {
	cp := make([]Slot, len(s.slots))
	copy(cp, s.slots)
	return cp
}

func (s *Scheduler) restoreSnapshot(snap []Slot) {
	s.slots = snap
}

// Validate checks the slot-list invariant: sorted, non-overlapping, and
// covering the window minus sleep exactly. It returns an error describing
// the first violation; any violation is a defect.
func (s *Scheduler) Validate() error {
	for i := 0; i < len(s.slots); i++ {
		if !s.slots[i].End.After(s.slots[i].Start) {
			return fmt.Errorf("slot %d is empty or inverted: %s", i, s.slots[i])
		}
		if i == 0 {
			continue
		}
		prev := s.slots[i-1]
		if s.slots[i].Start.Before(prev.End) {
			return fmt.Errorf("slot %d overlaps previous: %s / %s", i, prev, s.slots[i])
		}
	}
	covered := 0
	for _, slot := range s.slots {
		covered += slot.Minutes()
	}
	want := 0
	for _, w := range s.baseWindows {
		want += w.Minutes()
	}
	if covered != want {
		return fmt.Errorf("slot list covers %d minutes, window minus sleep is %d", covered, want)
	}
	return nil
}

// Slots returns a copy of the current slot list.
func (s *Scheduler) Slots() []Slot {
	cp := make([]Slot, len(s.slots))
	copy(cp, s.slots)
	return cp
}
