// Package scheduler implements the quest planning engine: a greedy
// constructive scheduler over a bounded window, with multi-factor slot
// scoring, bounded displacement of lower-priority work, multi-strategy
// task chunking and a hill-climbing swap pass on top.
//
// The engine is single-threaded and performs no I/O. A Scheduler
// exclusively owns its slot list; callers scheduling several users
// concurrently must use one instance per user.
package scheduler

import (
	"time"

	"go.uber.org/zap"
)

// Scheduler owns the slot list for one scheduling run.
type Scheduler struct {
	cfg    Config
	logger *zap.Logger

	windowStart time.Time
	windowEnd   time.Time
	baseWindows []Slot // window minus sleep, for invariant checks

	slots     []Slot
	conflicts []Conflict
	stats     Stats

	synthetic int64 // descending counter for derived-instance identities
}

// New builds a Scheduler over [windowStart, windowEnd), excluding the
// daily sleep interval when one is configured.
func New(windowStart, windowEnd time.Time, sleep *SleepWindow, cfg Config) *Scheduler {
	cfg = cfg.withDefaults()
	base := buildWindow(windowStart, windowEnd, sleep)
	s := &Scheduler{
		cfg:         cfg,
		logger:      cfg.Logger,
		windowStart: windowStart,
		windowEnd:   windowEnd,
		baseWindows: base,
	}
	s.slots = make([]Slot, len(base))
	copy(s.slots, base)
	return s
}

func (s *Scheduler) nextSyntheticID() int64 {
	s.synthetic--
	return s.synthetic
}

// Schedule runs the full pipeline: recurrence expansion, fixed-first
// ordering, greedy placement with displacement and chunking fallbacks,
// then the optional swap refinement. Infeasible tasks come back as
// conflicts, never as errors.
func (s *Scheduler) Schedule(tasks []*Task) *Result {
	now := s.cfg.Clock()
	s.stats.TasksRequested = len(tasks)

	var instances []*Task
	for _, t := range tasks {
		expanded := s.expandRecurrence(t)
		if t.Recurrence != "" && len(expanded) == 0 {
			s.conflicts = append(s.conflicts, Conflict{
				TaskID:  t.ID,
				Title:   t.Title,
				Type:    ConflictBadRecurrence,
				Message: "recurrence rule yielded no occurrences",
			})
		}
		instances = append(instances, expanded...)
	}
	s.stats.Instances = len(instances)

	fixed, others := partitionAndOrder(instances, now)
	for _, t := range fixed {
		if _, ok := s.placeFixed(t); !ok {
			s.conflicts = append(s.conflicts, Conflict{
				TaskID:  t.ID,
				Title:   t.Title,
				Type:    ConflictFixedUnavailable,
				Message: "hard window is not available",
			})
		}
	}
	for _, t := range others {
		if !s.scheduleInstance(t, 0) {
			s.conflicts = append(s.conflicts, Conflict{
				TaskID:  t.ID,
				Title:   t.Title,
				Type:    ConflictUnplaced,
				Message: "no admissible slot, displacement found none worth taking",
			})
		}
	}

	s.optimize()
	return s.finalize()
}

// scheduleInstance handles one concrete task instance: chunk when the
// duration demands it, otherwise place, falling back to displacement.
func (s *Scheduler) scheduleInstance(task *Task, depth int) bool {
	if s.needsChunking(task) {
		return s.scheduleChunks(task)
	}
	return s.placeOrDisplace(task, depth)
}

func (s *Scheduler) placeOrDisplace(task *Task, depth int) bool {
	if c := s.bestCandidate(task, nil); c.valid() {
		s.occupy(task, c)
		return true
	}
	if _, ok := s.displace(task, depth); ok {
		return true
	}
	return false
}

// finalize assembles the result from the final slot list. Assignments
// are derived from the slots themselves so rollbacks need no separate
// bookkeeping; a task's assignment spans its first and last slot.
func (s *Scheduler) finalize() *Result {
	spans := map[int64]*Assignment{}
	var order []int64
	for _, slot := range s.slots {
		if slot.Kind != SlotTask || slot.Task == nil {
			continue
		}
		if a, ok := spans[slot.Task.ID]; ok {
			if slot.End.After(a.End) {
				a.End = slot.End
			}
			continue
		}
		spans[slot.Task.ID] = &Assignment{Task: slot.Task, Start: slot.Start, End: slot.End}
		order = append(order, slot.Task.ID)
	}

	assignments := make([]Assignment, 0, len(order))
	for _, id := range order {
		assignments = append(assignments, *spans[id])
	}
	s.stats.Placed = len(assignments)
	for _, c := range s.conflicts {
		switch c.Type {
		case ConflictUnplaced, ConflictFixedUnavailable, ConflictChunkUnplaced:
			s.stats.Unplaced++
		}
	}

	return &Result{
		Slots:       s.Slots(),
		Assignments: assignments,
		Conflicts:   s.conflicts,
		Stats:       s.stats,
	}
}
