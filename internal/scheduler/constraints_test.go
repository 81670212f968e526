package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSlotAllowedDeadline(t *testing.T) {
	s := newTestScheduler(at(2, 7, 0), at(2, 22, 0), nil)
	deadline := at(2, 10, 0)
	task := &Task{ID: 1, Duration: 60, Flexibility: FlexFlexible, Deadline: &deadline}

	assert.True(t, s.isSlotAllowed(task, at(2, 9, 0), at(2, 10, 0)), "finishing exactly at the deadline is allowed")
	assert.False(t, s.isSlotAllowed(task, at(2, 9, 30), at(2, 10, 30)))
}

func TestIsSlotAllowedFixedExactWindowOnly(t *testing.T) {
	s := newTestScheduler(at(2, 7, 0), at(2, 22, 0), nil)
	task := &Task{ID: 1, Duration: 60, Flexibility: FlexFixed, HardWindow: &ClockWindow{Start: 9 * 60, End: 10 * 60}}

	assert.True(t, s.isSlotAllowed(task, at(2, 9, 0), at(2, 10, 0)))
	assert.False(t, s.isSlotAllowed(task, at(2, 9, 5), at(2, 10, 5)))
	assert.False(t, s.isSlotAllowed(&Task{ID: 2, Duration: 60, Flexibility: FlexFixed}, at(2, 9, 0), at(2, 10, 0)),
		"fixed without a hard window has nowhere legal to go")
}

func TestIsSlotAllowedWindowHardBand(t *testing.T) {
	s := newTestScheduler(at(2, 7, 0), at(2, 22, 0), nil)
	task := &Task{ID: 1, Duration: 60, Flexibility: FlexWindow, HardWindow: &ClockWindow{Start: 8 * 60, End: 12 * 60}}

	assert.True(t, s.isSlotAllowed(task, at(2, 8, 0), at(2, 9, 0)))
	assert.True(t, s.isSlotAllowed(task, at(2, 11, 0), at(2, 12, 0)))
	assert.False(t, s.isSlotAllowed(task, at(2, 7, 30), at(2, 8, 30)), "leaks out of the hard band")
	assert.False(t, s.isSlotAllowed(task, at(2, 11, 30), at(2, 12, 30)))
}

func TestIsSlotAllowedWindowByDay(t *testing.T) {
	s := newTestScheduler(at(2, 0, 0), at(9, 0, 0), nil)
	task := &Task{
		ID:          1,
		Title:       "Team sync",
		Duration:    60,
		Flexibility: FlexWindow,
		HardWindow:  &ClockWindow{Start: 8 * 60, End: 12 * 60},
		Recurrence:  "FREQ=WEEKLY;BYDAY=MO",
	}

	assert.True(t, s.isSlotAllowed(task, at(2, 9, 0), at(2, 10, 0)), "June 2nd is a Monday")
	assert.False(t, s.isSlotAllowed(task, at(3, 9, 0), at(3, 10, 0)), "June 3rd is a Tuesday")

	// A window task whose rule has no day-list is disqualified outright.
	noList := &Task{ID: 2, Duration: 60, Flexibility: FlexWindow, HardWindow: &ClockWindow{Start: 8 * 60, End: 12 * 60}, Recurrence: "FREQ=DAILY"}
	assert.False(t, s.isSlotAllowed(noList, at(2, 9, 0), at(2, 10, 0)))
}

func TestIsSlotAllowedSameDayRecurrence(t *testing.T) {
	s := newTestScheduler(at(2, 7, 0), at(4, 22, 0), nil)

	placed := &Task{ID: -1, Title: "Jog", Duration: 45, Flexibility: FlexFlexible, Recurrence: "FREQ=DAILY"}
	c := s.bestCandidate(placed, nil)
	require.True(t, c.valid())
	s.occupy(placed, c)

	next := &Task{ID: -2, Title: "Jog", Duration: 45, Flexibility: FlexFlexible, Recurrence: "FREQ=DAILY"}
	assert.False(t, s.isSlotAllowed(next, at(2, 18, 0), at(2, 18, 45)), "second occurrence on the same day")
	assert.True(t, s.isSlotAllowed(next, at(3, 18, 0), at(3, 18, 45)))

	relaxed := &Task{ID: -3, Title: "Jog", Duration: 45, Flexibility: FlexFlexible, Recurrence: "FREQ=DAILY", AllowSameDayRecurring: true}
	assert.True(t, s.isSlotAllowed(relaxed, at(2, 18, 0), at(2, 18, 45)))
}
