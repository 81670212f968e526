package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityScoreTable(t *testing.T) {
	assert.Equal(t, 0.3, priorityScore(1))
	assert.Equal(t, 1.5, priorityScore(6))
	assert.Equal(t, 0.5, priorityScore(0), "out-of-range priority falls back to the middle")
	assert.Equal(t, 0.5, priorityScore(99))
}

func TestUrgencyScoreBands(t *testing.T) {
	now := at(2, 12, 0)
	dl := func(h time.Duration) *time.Time {
		d := now.Add(h)
		return &d
	}

	assert.Equal(t, 0.0, urgencyScore(now, nil))
	assert.Equal(t, 1.0, urgencyScore(now, dl(-time.Hour)), "past deadlines saturate")
	assert.InDelta(t, 0.9, urgencyScore(now, dl(12*time.Hour)), 1e-9)
	assert.InDelta(t, 0.8, urgencyScore(now, dl(24*time.Hour)), 1e-9)
	assert.InDelta(t, 0.65, urgencyScore(now, dl(36*time.Hour)), 1e-9)
	assert.InDelta(t, 0.5, urgencyScore(now, dl(48*time.Hour)), 1e-9)
	assert.InDelta(t, 0.4, urgencyScore(now, dl(60*time.Hour)), 1e-9)
	assert.InDelta(t, 0.3, urgencyScore(now, dl(72*time.Hour)), 1e-9)
	assert.InDelta(t, 0.25, urgencyScore(now, dl(120*time.Hour)), 1e-9)
	assert.InDelta(t, 0.2, urgencyScore(now, dl(168*time.Hour)), 1e-9)
	assert.Equal(t, 0.1, urgencyScore(now, dl(200*time.Hour)))
}

func TestFrequencyScore(t *testing.T) {
	assert.Equal(t, 0.0, frequencyScore(""))
	assert.Equal(t, 1.0, frequencyScore("FREQ=DAILY"))
	assert.Equal(t, 0.8, frequencyScore("FREQ=WEEKLY;BYDAY=MO"))
	assert.Equal(t, 0.6, frequencyScore("FREQ=MONTHLY"))
	assert.Equal(t, 0.4, frequencyScore("FREQ=YEARLY"))
	assert.Equal(t, 0.5, frequencyScore("FREQ=HOURLY"))
}

func TestPartitionAndOrderFixedFirst(t *testing.T) {
	now := at(2, 8, 0)
	soon := at(2, 20, 0)
	tasks := []*Task{
		{ID: 1, Priority: 1, Flexibility: FlexFlexible},
		{ID: 2, Priority: 3, Flexibility: FlexFixed, HardWindow: &ClockWindow{Start: 540, End: 600}},
		{ID: 3, Priority: 6, Flexibility: FlexFlexible},
		{ID: 4, Priority: 1, Flexibility: FlexFlexible, Deadline: &soon},
	}

	fixed, others := partitionAndOrder(tasks, now)

	require.Len(t, fixed, 1)
	assert.Equal(t, int64(2), fixed[0].ID)

	require.Len(t, others, 3)
	assert.Equal(t, int64(3), others[0].ID, "highest priority goes first")
	assert.Equal(t, int64(4), others[1].ID, "looming deadline beats equal priority")
	assert.Equal(t, int64(1), others[2].ID)
}

func TestPartitionAndOrderStableOnTies(t *testing.T) {
	now := at(2, 8, 0)
	tasks := []*Task{
		{ID: 10, Priority: 3, Flexibility: FlexFlexible},
		{ID: 11, Priority: 3, Flexibility: FlexFlexible},
		{ID: 12, Priority: 3, Flexibility: FlexFlexible},
	}
	_, others := partitionAndOrder(tasks, now)
	require.Len(t, others, 3)
	assert.Equal(t, int64(10), others[0].ID)
	assert.Equal(t, int64(11), others[1].ID)
	assert.Equal(t, int64(12), others[2].ID)
}
