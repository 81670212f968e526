package scheduler

import (
	"time"

	"go.uber.org/zap"
)

// The displacement engine runs only when placement finds zero admissible
// candidates. It searches combinations of up to MaxEvictees lower-priority
// occupied tasks whose eviction frees room, performs the best
// positive-scoring eviction and reschedules the evicted tasks through an
// explicit worklist. It never evicts at a loss and never leaves partial
// eviction state visible: a failed attempt restores the exact prior slots.

type evictee struct {
	task  *Task
	start time.Time
	end   time.Time
}

type evictionPlan struct {
	evictees []evictee
	score    float64
}

// displace attempts to make room for task. Returns the assignment and
// true on success; on failure the slot list is untouched.
func (s *Scheduler) displace(task *Task, depth int) (Assignment, bool) {
	if depth >= s.cfg.MaxDisplaceDepth {
		return Assignment{}, false
	}

	candidates := s.evictableTasks(task)
	if len(candidates) == 0 {
		return Assignment{}, false
	}

	best := evictionPlan{score: 0}
	s.forEachCombination(candidates, func(combo []evictee) {
		score, feasible := s.evaluateEviction(task, combo)
		if feasible && score > best.score {
			best = evictionPlan{evictees: append([]evictee(nil), combo...), score: score}
		}
	})
	if len(best.evictees) == 0 {
		// The best combination scores at or below zero: do nothing.
		return Assignment{}, false
	}

	return s.performEviction(task, best, depth)
}

// evictableTasks lists occupied tasks that may legally be evicted for the
// requester: strictly lower priority, not fixed, and not already past the
// requester's deadline.
func (s *Scheduler) evictableTasks(requester *Task) []evictee {
	seen := map[int64]bool{}
	var out []evictee
	for _, slot := range s.slots {
		if slot.Kind != SlotTask || slot.Task == nil || seen[slot.Task.ID] {
			continue
		}
		t := slot.Task
		if t.Priority >= requester.Priority || t.Flexibility == FlexFixed {
			continue
		}
		start, end, ok := s.taskSpan(t.ID)
		if !ok {
			continue
		}
		if requester.Deadline != nil && start.After(*requester.Deadline) {
			// Freeing time the requester cannot use anyway.
			continue
		}
		seen[t.ID] = true
		out = append(out, evictee{task: t, start: start, end: end})
	}
	return out
}

// forEachCombination visits every 1-, 2- and 3-element combination, never
// larger, bounded by the configured cap.
func (s *Scheduler) forEachCombination(items []evictee, visit func([]evictee)) {
	n := len(items)
	max := s.cfg.MaxEvictees
	for i := 0; i < n; i++ {
		visit([]evictee{items[i]})
	}
	if max < 2 {
		return
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			visit([]evictee{items[i], items[j]})
		}
	}
	if max < 3 {
		return
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := j + 1; k < n; k++ {
				visit([]evictee{items[i], items[j], items[k]})
			}
		}
	}
}

// evaluateEviction temporarily frees the combo, asks the candidate search
// for the best resulting slot, scores the trade and restores everything.
func (s *Scheduler) evaluateEviction(task *Task, combo []evictee) (float64, bool) {
	snap := s.snapshot()
	defer s.restoreSnapshot(snap)

	for _, e := range combo {
		s.freeTask(e.task.ID)
	}
	c := s.bestCandidate(task, nil)
	if !c.valid() {
		return 0, false
	}

	lead := time.Duration(task.BufferBefore) * time.Minute
	dur := time.Duration(task.Duration) * time.Minute
	newStart := c.start.Add(lead)
	newEnd := newStart.Add(dur)
	tpBonus := s.timePreferenceScore(task, newStart, newEnd)

	now := s.cfg.Clock()
	w := s.cfg.Weights
	var score float64
	for _, e := range combo {
		gap := float64(task.Priority - e.task.Priority)
		score += gap*w.DisplacePriorityGap +
			tpBonus -
			s.deadlineUrgencyPenalty(now, e.task) -
			flexibilityPenalty(e.task) -
			durationPenalty(e.task) +
			w.DisplaceQualityRecovery*s.timePreferenceScore(e.task, e.start, e.end) +
			w.DisplaceBaseBonus
	}
	if len(combo) > 1 {
		score -= w.DisplaceMultiPenalty * float64(len(combo)-1)
	}
	return score, true
}

func (s *Scheduler) deadlineUrgencyPenalty(now time.Time, task *Task) float64 {
	return 2 * urgencyScore(now, task.Deadline)
}

func flexibilityPenalty(task *Task) float64 {
	switch task.Flexibility {
	case FlexStrict:
		return 1.0
	case FlexWindow:
		return 0.5
	default:
		return 0
	}
}

func durationPenalty(task *Task) float64 {
	return 0.25 * float64(task.Duration) / 60
}

// freeTask releases every slot a task occupies, plus the buffer slots it
// owns, back to available time. Buffers owned by neighbouring tasks stay
// in place.
func (s *Scheduler) freeTask(taskID int64) {
	for i := range s.slots {
		slot := &s.slots[i]
		if slot.Task == nil || slot.Task.ID != taskID {
			continue
		}
		if slot.Kind != SlotTask && slot.Kind != SlotBuffer {
			continue
		}
		slot.Kind = SlotAvailable
		slot.Task = nil
		slot.Flexible = false
	}
	s.mergeAvailable()
}

// performEviction executes the chosen plan: evict, reserve the best slot
// for the requester against reuse, reschedule each evictee from a
// worklist, then hand the reserved interval to the requester. Evictees
// that cannot be rescheduled go back to their original slots; if even
// that is impossible the whole attempt rolls back.
func (s *Scheduler) performEviction(task *Task, plan evictionPlan, depth int) (Assignment, bool) {
	snap := s.snapshot()

	freed := make([]evictee, len(plan.evictees))
	copy(freed, plan.evictees)
	for _, e := range freed {
		s.freeTask(e.task.ID)
	}

	c := s.bestCandidate(task, nil)
	if !c.valid() {
		s.restoreSnapshot(snap)
		return Assignment{}, false
	}
	required := time.Duration(task.BufferedDuration()) * time.Minute
	resStart, resEnd := c.start, c.start.Add(required)
	if !s.reserveInterval(resStart, resEnd) {
		s.restoreSnapshot(snap)
		return Assignment{}, false
	}

	worklist := make([]evictee, len(freed))
	copy(worklist, freed)
	for len(worklist) > 0 {
		e := worklist[0]
		worklist = worklist[1:]
		if s.scheduleInstance(e.task, depth+1) {
			continue
		}
		if !s.restoreInterval(e.task, e.start, e.end) {
			// The requester claimed this evictee's old interval and no
			// alternative exists: the whole attempt is off.
			s.restoreSnapshot(snap)
			s.logger.Debug("displacement rolled back",
				zap.Int64("task_id", task.ID), zap.Int64("evictee_id", e.task.ID))
			return Assignment{}, false
		}
		s.logger.Debug("evicted task restored to original slot",
			zap.Int64("task_id", e.task.ID), zap.String("title", e.task.Title))
	}

	s.stats.Displacements++
	return s.occupyReserved(task, resStart, resEnd), true
}

// reserveInterval carves [start, end) out of its hosting available slot
// as reserved time, keeping it away from evictee rescheduling.
func (s *Scheduler) reserveInterval(start, end time.Time) bool {
	for idx, slot := range s.slots {
		if slot.Kind != SlotAvailable || slot.Start.After(start) || slot.End.Before(end) {
			continue
		}
		pieces := []Slot{
			{Start: slot.Start, End: start, Kind: SlotAvailable},
			{Start: start, End: end, Kind: SlotReserved},
			{Start: end, End: slot.End, Kind: SlotAvailable},
		}
		s.splice(idx, pieces...)
		return true
	}
	return false
}

// occupyReserved converts the reserved interval into the requester's
// buffer/task/buffer layout.
func (s *Scheduler) occupyReserved(task *Task, start, end time.Time) Assignment {
	for idx, slot := range s.slots {
		if slot.Kind != SlotReserved || !slot.Start.Equal(start) || !slot.End.Equal(end) {
			continue
		}
		lead := time.Duration(task.BufferBefore) * time.Minute
		dur := time.Duration(task.Duration) * time.Minute
		taskStart := start.Add(lead)
		taskEnd := taskStart.Add(dur)

		pieces := make([]Slot, 0, 5)
		if lead > 0 {
			pieces = append(pieces, Slot{Start: start, End: taskStart, Kind: SlotBuffer, Task: task})
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
		if taskEnd.Before(end) {
			pieces = append(pieces, Slot{Start: taskEnd, End: end, Kind: SlotBuffer, Task: task})
		}
		s.splice(idx, pieces...)
		s.mergeAvailable()
		return Assignment{Task: task, Start: taskStart, End: taskEnd}
	}
	// Unreachable with a reserved interval in place; keep the invariant
	// honest rather than panic.
	return Assignment{Task: task, Start: start, End: end}
}

// restoreInterval puts a task back onto its exact original interval,
// buffers included. The whole buffered region must currently be free time
// not claimed by the requester.
func (s *Scheduler) restoreInterval(task *Task, start, end time.Time) bool {
	lead := time.Duration(task.BufferBefore) * time.Minute
	trail := time.Duration(task.BufferAfter) * time.Minute
	bufStart := start.Add(-lead)
	bufEnd := end.Add(trail)

	for i := 0; i < len(s.slots); i++ {
		slot := s.slots[i]
		if slot.Start.After(bufStart) || slot.End.Before(bufEnd) {
			continue
		}
		if slot.Kind != SlotAvailable {
			return false
		}
		pieces := make([]Slot, 0, 6)
		pieces = append(pieces, Slot{Start: slot.Start, End: bufStart, Kind: SlotAvailable})
		if lead > 0 {
			pieces = append(pieces, Slot{Start: bufStart, End: start, Kind: SlotBuffer, Task: task})
		}
		if task.Pomodoro {
			pieces = append(pieces, s.pomodoroSlots(task, start, end)...)
		} else {
			pieces = append(pieces, Slot{Start: start, End: end, Kind: SlotTask, Task: task, Flexible: task.Flexibility != FlexFixed})
		}
		if trail > 0 {
			pieces = append(pieces, Slot{Start: end, End: bufEnd, Kind: SlotBuffer, Task: task})
		}
		pieces = append(pieces, Slot{Start: bufEnd, End: slot.End, Kind: SlotAvailable})
		s.splice(i, pieces...)
		return true
	}
	return false
}
