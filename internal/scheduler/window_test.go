package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWindowNoSleep(t *testing.T) {
	slots := buildWindow(at(2, 7, 0), at(4, 22, 0), nil)
	require.Len(t, slots, 1)
	assert.Equal(t, at(2, 7, 0), slots[0].Start)
	assert.Equal(t, at(4, 22, 0), slots[0].End)
	assert.Equal(t, SlotAvailable, slots[0].Kind)
}

func TestBuildWindowSleepInsideDay(t *testing.T) {
	// Siesta from 13:00 to 15:00 splits each day in two.
	sleep := &SleepWindow{Start: 13 * 60, End: 15 * 60}
	slots := buildWindow(at(2, 0, 0), at(4, 0, 0), sleep)

	require.Len(t, slots, 4)
	assert.Equal(t, at(2, 0, 0), slots[0].Start)
	assert.Equal(t, at(2, 13, 0), slots[0].End)
	assert.Equal(t, at(2, 15, 0), slots[1].Start)
	assert.Equal(t, at(3, 0, 0), slots[1].End)
	assert.Equal(t, at(3, 0, 0), slots[2].Start)
	assert.Equal(t, at(3, 13, 0), slots[2].End)
}

func TestBuildWindowSleepWrapsMidnight(t *testing.T) {
	sleep := &SleepWindow{Start: 23 * 60, End: 7 * 60}
	slots := buildWindow(at(2, 0, 0), at(5, 0, 0), sleep)

	require.Len(t, slots, 3)
	for i, slot := range slots {
		day := at(2+i, 0, 0)
		assert.Equal(t, day.Add(7*time.Hour), slot.Start)
		assert.Equal(t, day.Add(23*time.Hour), slot.End)
	}
}

func TestBuildWindowClipsToHorizon(t *testing.T) {
	sleep := &SleepWindow{Start: 23 * 60, End: 7 * 60}
	slots := buildWindow(at(2, 9, 0), at(2, 20, 0), sleep)

	require.Len(t, slots, 1)
	assert.Equal(t, at(2, 9, 0), slots[0].Start)
	assert.Equal(t, at(2, 20, 0), slots[0].End)
}

func TestBuildWindowEmptyHorizon(t *testing.T) {
	assert.Nil(t, buildWindow(at(2, 9, 0), at(2, 9, 0), nil))
}

func TestValidateFreshScheduler(t *testing.T) {
	sleep := &SleepWindow{Start: 22 * 60, End: 6 * 60}
	s := newTestScheduler(at(2, 0, 0), at(9, 0, 0), sleep)
	require.NoError(t, s.Validate())
}
