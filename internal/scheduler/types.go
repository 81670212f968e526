package scheduler

import (
	"fmt"
	"time"
)

// Flexibility describes how movable a task is once it enters the planner.
type Flexibility string

const (
	// FlexFixed tasks are immovable and occupy their exact hard window.
	FlexFixed Flexibility = "FIXED"
	// FlexStrict tasks are pinned to a day but movable within it.
	FlexStrict Flexibility = "STRICT"
	// FlexWindow tasks must fall inside a time-of-day band but may move days.
	FlexWindow Flexibility = "WINDOW"
	// FlexFlexible tasks are fully movable.
	FlexFlexible Flexibility = "FLEXIBLE"
)

// DayPart is a coarse time-of-day preference.
type DayPart string

const (
	DayPartMorning      DayPart = "MORNING"
	DayPartAfternoon    DayPart = "AFTERNOON"
	DayPartEvening      DayPart = "EVENING"
	DayPartNoPreference DayPart = "NO_PREFERENCE"
)

// MinuteOfDay counts minutes since local midnight.
type MinuteOfDay int

// ClockWindow is a start/end time-of-day pair, inclusive of start,
// exclusive of end.
type ClockWindow struct {
	Start MinuteOfDay
	End   MinuteOfDay
}

// Contains reports whether [start, end) lies fully inside the window.
func (w ClockWindow) Contains(start, end MinuteOfDay) bool {
	return start >= w.Start && end <= w.End
}

// ChunkStrategyName selects how an oversized task is split into sessions.
type ChunkStrategyName string

const (
	ChunkAdaptive       ChunkStrategyName = "ADAPTIVE"
	ChunkFixedSize      ChunkStrategyName = "FIXED_SIZE"
	ChunkDeadlineAware  ChunkStrategyName = "DEADLINE_AWARE"
	ChunkFrontLoaded    ChunkStrategyName = "FRONT_LOADED"
	ChunkUserPreference ChunkStrategyName = "USER_PREFERENCE"
)

// Task is the schedulable unit. Callers supply tasks already validated
// (duration > 0, priority 1-6); the engine only reads them, working on
// its own clones for recurrence instances and chunks.
type Task struct {
	ID       int64
	Title    string
	Duration int // minutes
	Priority int // 1-6, higher wins
	Deadline *time.Time

	Flexibility    Flexibility
	HardWindow     *ClockWindow
	SoftWindow     *ClockWindow
	ExpectedWindow *ClockWindow
	PreferredPart  DayPart

	BufferBefore int // minutes
	BufferAfter  int

	Recurrence string // RFC-5545 RRULE text, e.g. FREQ=WEEKLY;BYDAY=MO
	Difficulty int    // 1-10

	AllowTimeDeviation    bool
	AllowUrgentOverride   bool
	AllowSameDayRecurring bool

	Pomodoro bool

	ChunkStrategy ChunkStrategyName // empty means adaptive once chunking triggers
	ChunkSize     int               // preferred flat chunk minutes (user-preference strategy)
	ForceChunk    bool

	// Derived fields, set only on engine-local clones.
	ChunkIndex int
	ChunkCount int
	ParentID   int64
	PinnedDay  *time.Time // strict recurrence instances carry their occurrence day

	noChunk bool // chunking is disabled on derived chunks
}

// BufferedDuration is the total minutes the task needs including buffers.
func (t *Task) BufferedDuration() int {
	return t.BufferBefore + t.Duration + t.BufferAfter
}

// IsChunk reports whether the task is a derived chunk of a parent task.
func (t *Task) IsChunk() bool {
	return t.ChunkCount > 0
}

func (t *Task) clone() *Task {
	c := *t
	return &c
}

// SlotKind tags the occupant of a slot.
type SlotKind string

const (
	SlotAvailable SlotKind = "AVAILABLE"
	SlotBuffer    SlotKind = "BUFFER"
	SlotReserved  SlotKind = "RESERVED"
	SlotTask      SlotKind = "TASK"
)

// Slot is a half-open interval [Start, End) with a tagged occupant.
type Slot struct {
	Start    time.Time
	End      time.Time
	Kind     SlotKind
	Task     *Task // occupant for SlotTask, owner for SlotBuffer
	Flexible bool  // true for movable task slots
}

// Minutes returns the slot length in whole minutes.
func (s Slot) Minutes() int {
	return int(s.End.Sub(s.Start) / time.Minute)
}

func (s Slot) String() string {
	who := string(s.Kind)
	if s.Kind == SlotTask && s.Task != nil {
		who = fmt.Sprintf("TASK(%d %q)", s.Task.ID, s.Task.Title)
	}
	return fmt.Sprintf("[%s - %s) %s", s.Start.Format("2006-01-02 15:04"), s.End.Format("15:04"), who)
}

// SleepWindow is the daily sleep interval, time-of-day only. It may span
// midnight (Start > End).
type SleepWindow struct {
	Start MinuteOfDay
	End   MinuteOfDay
}

// ConflictType classifies a recoverable scheduling failure.
type ConflictType string

const (
	ConflictUnplaced         ConflictType = "UNPLACED"
	ConflictChunkUnplaced    ConflictType = "CHUNK_UNPLACED"
	ConflictBadRecurrence    ConflictType = "BAD_RECURRENCE"
	ConflictFixedUnavailable ConflictType = "FIXED_UNAVAILABLE"
)

// Conflict reports a per-task or per-chunk failure. Conflicts are ordinary
// results, never errors: infeasible placement is not a system fault.
type Conflict struct {
	TaskID  int64
	Title   string
	Type    ConflictType
	Message string
}

// Assignment is the placement outcome for one task instance.
type Assignment struct {
	Task  *Task
	Start time.Time
	End   time.Time
}

// Stats summarises a scheduling run.
type Stats struct {
	TasksRequested     int
	Instances          int
	Placed             int
	Unplaced           int
	Displacements      int
	ChunkedTasks       int
	SwapAttempts       int
	SwapsKept          int
	MeanSlotScore      float64
	FinalMeanSlotScore float64
}

// Result is the final state of a scheduling run.
type Result struct {
	Slots       []Slot
	Assignments []Assignment
	Conflicts   []Conflict
	Stats       Stats
}

// Assigned returns the assignment for a task identity, if any.
func (r *Result) Assigned(taskID int64) (Assignment, bool) {
	for _, a := range r.Assignments {
		if a.Task.ID == taskID {
			return a, true
		}
	}
	return Assignment{}, false
}

func minuteOfDay(t time.Time) MinuteOfDay {
	return MinuteOfDay(t.Hour()*60 + t.Minute())
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
