package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleCadence(t *testing.T) {
	assert.Equal(t, CadenceNone, ruleCadence(""))
	assert.Equal(t, CadenceNone, ruleCadence("   "))
	assert.Equal(t, CadenceDaily, ruleCadence("FREQ=DAILY"))
	assert.Equal(t, CadenceWeekly, ruleCadence("INTERVAL=2;FREQ=WEEKLY"))
	assert.Equal(t, CadenceMonthly, ruleCadence("freq=monthly"))
	assert.Equal(t, CadenceOther, ruleCadence("FREQ=HOURLY"))
	assert.Equal(t, CadenceOther, ruleCadence("BYDAY=MO"))
}

func TestRuleWeekdays(t *testing.T) {
	days, ok := ruleWeekdays("FREQ=WEEKLY;BYDAY=MO,WE")
	require.True(t, ok)
	assert.True(t, days[time.Monday])
	assert.True(t, days[time.Wednesday])
	assert.False(t, days[time.Sunday])

	_, ok = ruleWeekdays("FREQ=DAILY")
	assert.False(t, ok, "rules without a day-list have no weekday filter")

	_, ok = ruleWeekdays("FREQ=BOGUS")
	assert.False(t, ok)
}

func TestExpandRecurrenceNoRule(t *testing.T) {
	s := newTestScheduler(at(2, 0, 0), at(5, 0, 0), nil)
	task := &Task{ID: 1, Title: "One-off", Duration: 30, Flexibility: FlexFlexible}
	out := s.expandRecurrence(task)
	require.Len(t, out, 1)
	assert.Same(t, task, out[0])
}

func TestExpandRecurrenceDaily(t *testing.T) {
	s := newTestScheduler(at(2, 0, 0), at(4, 23, 0), nil)
	task := &Task{ID: 7, Title: "Jog", Duration: 30, Flexibility: FlexFlexible, Recurrence: "FREQ=DAILY"}

	out := s.expandRecurrence(task)

	require.Len(t, out, 3)
	seen := map[int64]bool{}
	for _, inst := range out {
		assert.Equal(t, int64(7), inst.ParentID)
		assert.Negative(t, inst.ID, "instances get synthetic identities")
		assert.False(t, seen[inst.ID], "instance identities must be distinct")
		seen[inst.ID] = true
	}
}

func TestExpandRecurrenceStrictPinsDays(t *testing.T) {
	s := newTestScheduler(at(2, 0, 0), at(4, 23, 0), nil)
	task := &Task{ID: 7, Title: "Physio", Duration: 30, Flexibility: FlexStrict, Recurrence: "FREQ=DAILY"}

	out := s.expandRecurrence(task)

	require.Len(t, out, 3)
	for i, inst := range out {
		require.NotNil(t, inst.PinnedDay)
		assert.Equal(t, at(2+i, 0, 0), *inst.PinnedDay)
	}
}

func TestExpandRecurrenceFixedGetsOccurrenceDeadline(t *testing.T) {
	s := newTestScheduler(at(2, 0, 0), at(4, 23, 0), nil)
	task := &Task{
		ID:          7,
		Title:       "Clinic",
		Duration:    60,
		Flexibility: FlexFixed,
		HardWindow:  &ClockWindow{Start: 9 * 60, End: 10 * 60},
		Recurrence:  "FREQ=DAILY",
	}

	out := s.expandRecurrence(task)

	require.Len(t, out, 3)
	for i, inst := range out {
		require.NotNil(t, inst.Deadline)
		assert.Equal(t, at(2+i, 10, 0), *inst.Deadline)
		require.NotNil(t, inst.PinnedDay)
		assert.Equal(t, at(2+i, 0, 0), *inst.PinnedDay)
	}
}

func TestExpandRecurrenceMalformedYieldsNothing(t *testing.T) {
	s := newTestScheduler(at(2, 0, 0), at(4, 23, 0), nil)
	task := &Task{ID: 7, Title: "Broken", Duration: 30, Flexibility: FlexFlexible, Recurrence: "FREQ=BOGUS"}
	assert.Empty(t, s.expandRecurrence(task))
}

func TestScheduleFixedRecurrencePlacesEveryOccurrence(t *testing.T) {
	s := newTestScheduler(at(2, 0, 0), at(4, 23, 0), nil)

	res := s.Schedule([]*Task{{
		ID:          1,
		Title:       "Clinic",
		Duration:    60,
		Priority:    4,
		Flexibility: FlexFixed,
		HardWindow:  &ClockWindow{Start: 9 * 60, End: 10 * 60},
		Recurrence:  "FREQ=DAILY",
	}})

	require.NoError(t, s.Validate())
	require.Len(t, res.Assignments, 3)
	for _, a := range res.Assignments {
		assert.Equal(t, MinuteOfDay(9*60), minuteOfDay(a.Start))
		assert.Equal(t, MinuteOfDay(10*60), minuteOfDay(a.End))
	}
}
