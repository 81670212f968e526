package scheduler

import "time"

// The hybrid optimizer: after the greedy pipeline, if the mean task-slot
// score sits below the configured threshold, try a bounded number of
// randomized pairwise swaps and keep only the ones that improve the mean.
// This is hill climbing, not global optimization.

func (s *Scheduler) optimize() {
	mean := s.meanTaskSlotScore()
	s.stats.MeanSlotScore = mean
	s.stats.FinalMeanSlotScore = mean
	if mean >= s.cfg.OptimizeThreshold {
		return
	}

	best := mean
	for attempt := 0; attempt < s.cfg.MaxSwapAttempts; attempt++ {
		idxs := s.swappableSlotIndexes()
		if len(idxs) < 2 {
			break
		}
		s.stats.SwapAttempts++
		i := idxs[s.cfg.Rand.Intn(len(idxs))]
		j := idxs[s.cfg.Rand.Intn(len(idxs))]
		if i == j || s.slots[i].Task.ID == s.slots[j].Task.ID {
			continue
		}

		snap := s.snapshot()
		if !s.trySwap(i, j) {
			s.restoreSnapshot(snap)
			continue
		}
		newMean := s.meanTaskSlotScore()
		if newMean > best {
			best = newMean
			s.stats.SwapsKept++
		} else {
			s.restoreSnapshot(snap)
		}
	}
	s.stats.FinalMeanSlotScore = best
}

// swappableSlotIndexes lists task slots eligible for swapping: movable,
// and the sole slot of their task (pomodoro fragments stay put).
func (s *Scheduler) swappableSlotIndexes() []int {
	var out []int
	for i, slot := range s.slots {
		if slot.Kind != SlotTask || slot.Task == nil || !slot.Flexible {
			continue
		}
		if len(s.taskSlotIndexes(slot.Task.ID)) != 1 {
			continue
		}
		out = append(out, i)
	}
	return out
}

// trySwap exchanges the occupants of two task slots. Equal durations with
// matching buffer needs swap in place, buffer ownership included; anything
// else is feasible only when each task's buffered duration fits the other
// slot's surrounding available time (the slot span plus adjacent slack).
func (s *Scheduler) trySwap(i, j int) bool {
	a, b := s.slots[i], s.slots[j]
	ta, tb := a.Task, b.Task
	if a.Minutes() == b.Minutes() && ta.BufferBefore == tb.BufferBefore && ta.BufferAfter == tb.BufferAfter {
		s.slots[i].Task, s.slots[j].Task = tb, ta
		s.reownBuffers(i, ta, tb)
		s.reownBuffers(j, tb, ta)
		return true
	}

	if ta.BufferedDuration() > s.surroundingMinutes(j) || tb.BufferedDuration() > s.surroundingMinutes(i) {
		return false
	}

	aStart, bStart := a.Start, b.Start
	s.freeTask(ta.ID)
	s.freeTask(tb.ID)
	if !s.carveNear(ta, bStart) || !s.carveNear(tb, aStart) {
		return false // caller restores the snapshot on a false mean check
	}
	return true
}

// reownBuffers hands the buffer slots hugging idx that belong to prev over
// to next, leaving neighbouring tasks' buffers alone.
func (s *Scheduler) reownBuffers(idx int, prev, next *Task) {
	for k := idx - 1; k >= 0 && s.slots[k].Kind == SlotBuffer; k-- {
		if s.slots[k].Task != nil && s.slots[k].Task.ID == prev.ID {
			s.slots[k].Task = next
		}
	}
	for k := idx + 1; k < len(s.slots) && s.slots[k].Kind == SlotBuffer; k++ {
		if s.slots[k].Task != nil && s.slots[k].Task.ID == prev.ID {
			s.slots[k].Task = next
		}
	}
}

// surroundingMinutes is the slot's own span plus the contiguous available
// slack hugging it on both sides.
func (s *Scheduler) surroundingMinutes(idx int) int {
	total := s.slots[idx].Minutes()
	for k := idx - 1; k >= 0 && s.slots[k].Kind == SlotAvailable && s.slots[k].End.Equal(s.slots[k+1].Start); k-- {
		total += s.slots[k].Minutes()
	}
	for k := idx + 1; k < len(s.slots) && s.slots[k].Kind == SlotAvailable && s.slots[k].Start.Equal(s.slots[k-1].End); k++ {
		total += s.slots[k].Minutes()
	}
	return total
}

// carveNear places the task, buffers and all, inside the available slot
// covering the anchor: at the anchor when the region is long enough,
// otherwise shifted earlier against the region's end.
func (s *Scheduler) carveNear(task *Task, anchor time.Time) bool {
	lead := time.Duration(task.BufferBefore) * time.Minute
	dur := time.Duration(task.Duration) * time.Minute
	trail := time.Duration(task.BufferAfter) * time.Minute
	required := lead + dur + trail

	for idx, slot := range s.slots {
		if slot.Kind != SlotAvailable {
			continue
		}
		if slot.Start.After(anchor) || !slot.End.After(anchor) {
			continue
		}
		bufStart := anchor.Add(-lead)
		if bufStart.Before(slot.Start) {
			bufStart = slot.Start
		}
		if bufStart.Add(required).After(slot.End) {
			bufStart = slot.End.Add(-required)
		}
		if bufStart.Before(slot.Start) {
			return false
		}
		taskStart := bufStart.Add(lead)
		taskEnd := taskStart.Add(dur)

		pieces := make([]Slot, 0, 5)
		pieces = append(pieces, Slot{Start: slot.Start, End: bufStart, Kind: SlotAvailable})
		if lead > 0 {
			pieces = append(pieces, Slot{Start: bufStart, End: taskStart, Kind: SlotBuffer, Task: task})
		}
		pieces = append(pieces, Slot{Start: taskStart, End: taskEnd, Kind: SlotTask, Task: task, Flexible: true})
		if trail > 0 {
			pieces = append(pieces, Slot{Start: taskEnd, End: taskEnd.Add(trail), Kind: SlotBuffer, Task: task})
		}
		pieces = append(pieces, Slot{Start: taskEnd.Add(trail), End: slot.End, Kind: SlotAvailable})
		s.splice(idx, pieces...)
		return true
	}
	return false
}
