package scheduler

import "time"

const (
	pomodoroWork  = 25 * time.Minute
	pomodoroBreak = 5 * time.Minute
)

// candidate is one admissible placement found inside an available slot.
type candidate struct {
	slotIdx int       // index of the hosting available slot
	start   time.Time // start of the buffered region
	score   float64
}

func (c candidate) valid() bool { return c.slotIdx >= 0 }

// bestCandidate scans every available slot large enough for the buffered
// duration, stepping at the configured granularity, filters through the
// constraint checker and returns the maximum-scoring survivor. The first
// candidate seen wins ties. A dayFilter restricts the scan to one
// calendar day (strict instances and chunk target days).
func (s *Scheduler) bestCandidate(task *Task, dayFilter *time.Time) candidate {
	best := candidate{slotIdx: -1}
	required := time.Duration(task.BufferedDuration()) * time.Minute
	lead := time.Duration(task.BufferBefore) * time.Minute
	dur := time.Duration(task.Duration) * time.Minute

	day := dayFilter
	if day == nil && task.PinnedDay != nil {
		day = task.PinnedDay
	}

	for idx, slot := range s.slots {
		if slot.Kind != SlotAvailable {
			continue
		}
		for start := slot.Start; !start.Add(required).After(slot.End); start = start.Add(s.cfg.Granularity) {
			if day != nil && !sameDay(start.Add(lead), *day) {
				continue
			}
			taskStart := start.Add(lead)
			taskEnd := taskStart.Add(dur)
			if !s.isSlotAllowed(task, taskStart, taskEnd) {
				continue
			}
			score := s.slotScore(task, taskStart, taskEnd)
			if !best.valid() || score > best.score {
				best = candidate{slotIdx: idx, start: start, score: score}
			}
		}
	}
	return best
}

// anyAvailableFits reports whether any single available slot can hold the
// buffered duration at all, ignoring constraints. Used by the chunking
// trigger for 2-4 hour tasks.
func (s *Scheduler) anyAvailableFits(task *Task) bool {
	required := task.BufferedDuration()
	for _, slot := range s.slots {
		if slot.Kind == SlotAvailable && slot.Minutes() >= required {
			return true
		}
	}
	return false
}

// occupy splits the chosen available slot into up to four pieces: leading
// buffer, the task interval itself (possibly pomodoro-subdivided),
// trailing buffer and the remaining available tail, then splices them in.
func (s *Scheduler) occupy(task *Task, c candidate) Assignment {
	host := s.slots[c.slotIdx]
	lead := time.Duration(task.BufferBefore) * time.Minute
	dur := time.Duration(task.Duration) * time.Minute
	trail := time.Duration(task.BufferAfter) * time.Minute

	taskStart := c.start.Add(lead)
	taskEnd := taskStart.Add(dur)

	pieces := make([]Slot, 0, 6)
	if c.start.After(host.Start) {
		pieces = append(pieces, Slot{Start: host.Start, End: c.start, Kind: SlotAvailable})
	}
	if lead > 0 {
		pieces = append(pieces, Slot{Start: c.start, End: taskStart, Kind: SlotBuffer, Task: task})
	}
	if task.Pomodoro {
		pieces = append(pieces, s.pomodoroSlots(task, taskStart, taskEnd)...)
	} else {
		pieces = append(pieces, Slot{
			Start:    taskStart,
			End:      taskEnd,
			Kind:     SlotTask,
			Task:     task,
			Flexible: task.Flexibility != FlexFixed,
		})
	}
	if trail > 0 {
		pieces = append(pieces, Slot{Start: taskEnd, End: taskEnd.Add(trail), Kind: SlotBuffer, Task: task})
	}
	if tail := taskEnd.Add(trail); tail.Before(host.End) {
		pieces = append(pieces, Slot{Start: tail, End: host.End, Kind: SlotAvailable})
	}

	s.splice(c.slotIdx, pieces...)
	return Assignment{Task: task, Start: taskStart, End: taskEnd}
}

// pomodoroSlots subdivides the task interval into alternating 25-minute
// work and 5-minute break sub-slots; the final partial work session
// absorbs any remainder.
func (s *Scheduler) pomodoroSlots(task *Task, start, end time.Time) []Slot {
	var out []Slot
	cursor := start
	for cursor.Before(end) {
		workEnd := cursor.Add(pomodoroWork)
		if !workEnd.Before(end.Add(-pomodoroBreak)) {
			// Not enough room left for a full cycle: one last work
			// session takes whatever remains.
			workEnd = end
		}
		out = append(out, Slot{
			Start:    cursor,
			End:      workEnd,
			Kind:     SlotTask,
			Task:     task,
			Flexible: task.Flexibility != FlexFixed,
		})
		cursor = workEnd
		if cursor.Before(end) {
			breakEnd := cursor.Add(pomodoroBreak)
			if breakEnd.After(end) {
				breakEnd = end
			}
			out = append(out, Slot{Start: cursor, End: breakEnd, Kind: SlotBuffer, Task: task})
			cursor = breakEnd
		}
	}
	return out
}

// placeFixed carves a fixed task directly at its hard window, no search.
// The hosting interval must currently be one available slot; anything
// else is a conflict and the task stays unplaced.
func (s *Scheduler) placeFixed(task *Task) (Assignment, bool) {
	if task.HardWindow == nil {
		return Assignment{}, false
	}
	day := s.fixedDay(task)
	start := day.Add(time.Duration(task.HardWindow.Start) * time.Minute)
	end := day.Add(time.Duration(task.HardWindow.End) * time.Minute)
	if start.Before(s.windowStart) || end.After(s.windowEnd) {
		return Assignment{}, false
	}

	for idx, slot := range s.slots {
		if slot.Kind != SlotAvailable {
			continue
		}
		if slot.Start.After(start) || slot.End.Before(end) {
			continue
		}
		pieces := []Slot{
			{Start: slot.Start, End: start, Kind: SlotAvailable},
			{Start: start, End: end, Kind: SlotTask, Task: task, Flexible: false},
			{Start: end, End: slot.End, Kind: SlotAvailable},
		}
		s.splice(idx, pieces...)
		return Assignment{Task: task, Start: start, End: end}, true
	}
	return Assignment{}, false
}

// fixedDay resolves the calendar day a fixed task belongs to: recurrence
// instances carry a pinned day, otherwise the deadline's day, otherwise
// the first day of the window.
func (s *Scheduler) fixedDay(task *Task) time.Time {
	if task.PinnedDay != nil {
		return *task.PinnedDay
	}
	if task.Deadline != nil {
		return dayOf(*task.Deadline)
	}
	return dayOf(s.windowStart)
}
