package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOccupySplitsHostSlot(t *testing.T) {
	s := newTestScheduler(at(2, 7, 0), at(2, 22, 0), nil)
	task := &Task{ID: 1, Title: "Review", Duration: 60, Priority: 3, Flexibility: FlexFlexible, BufferBefore: 10, BufferAfter: 15}

	c := s.bestCandidate(task, nil)
	require.True(t, c.valid())
	a := s.occupy(task, c)

	require.NoError(t, s.Validate())
	assert.Equal(t, 60, int(a.End.Sub(a.Start)/time.Minute))

	var kinds []SlotKind
	for _, slot := range s.Slots() {
		kinds = append(kinds, slot.Kind)
	}
	assert.Equal(t, []SlotKind{SlotBuffer, SlotTask, SlotBuffer, SlotAvailable}, kinds)
}

func TestBestCandidateHonoursPinnedDay(t *testing.T) {
	s := newTestScheduler(at(2, 7, 0), at(5, 22, 0), nil)
	pinned := at(4, 0, 0)
	task := &Task{ID: 1, Duration: 60, Priority: 3, Flexibility: FlexStrict, PinnedDay: &pinned}

	c := s.bestCandidate(task, nil)
	require.True(t, c.valid())
	a := s.occupy(task, c)
	assert.True(t, sameDay(a.Start, pinned), "strict instance must stay on its pinned day")
}

func TestBestCandidateNoRoom(t *testing.T) {
	s := newTestScheduler(at(2, 7, 0), at(2, 8, 0), nil)
	task := &Task{ID: 1, Duration: 90, Priority: 3, Flexibility: FlexFlexible}
	c := s.bestCandidate(task, nil)
	assert.False(t, c.valid())
}

func TestPomodoroSubdivision(t *testing.T) {
	s := newTestScheduler(at(2, 7, 0), at(2, 22, 0), nil)
	task := &Task{ID: 1, Title: "Study", Duration: 60, Priority: 3, Flexibility: FlexFlexible, Pomodoro: true}

	c := s.bestCandidate(task, nil)
	require.True(t, c.valid())
	s.occupy(task, c)
	require.NoError(t, s.Validate())

	var work, breaks int
	for _, slot := range s.Slots() {
		switch slot.Kind {
		case SlotTask:
			work += slot.Minutes()
		case SlotBuffer:
			breaks += slot.Minutes()
		}
	}
	// 25 work, 5 break, then a final 30-minute session absorbing the rest.
	assert.Equal(t, 55, work)
	assert.Equal(t, 5, breaks)
}

func TestPlaceFixedCarvesHardWindow(t *testing.T) {
	s := newTestScheduler(at(2, 7, 0), at(2, 22, 0), nil)
	task := &Task{ID: 1, Title: "Dentist", Duration: 60, Flexibility: FlexFixed, HardWindow: &ClockWindow{Start: 14 * 60, End: 15 * 60}}

	a, ok := s.placeFixed(task)
	require.True(t, ok)
	assert.Equal(t, at(2, 14, 0), a.Start)
	assert.Equal(t, at(2, 15, 0), a.End)
	require.NoError(t, s.Validate())
}

func TestPlaceFixedRefusesOccupiedWindow(t *testing.T) {
	s := newTestScheduler(at(2, 7, 0), at(2, 22, 0), nil)
	hard := &ClockWindow{Start: 14 * 60, End: 15 * 60}

	_, ok := s.placeFixed(&Task{ID: 1, Duration: 60, Flexibility: FlexFixed, HardWindow: hard})
	require.True(t, ok)

	_, ok = s.placeFixed(&Task{ID: 2, Duration: 60, Flexibility: FlexFixed, HardWindow: hard})
	assert.False(t, ok)
	require.NoError(t, s.Validate())
}

func TestPlaceFixedOutsideHorizon(t *testing.T) {
	s := newTestScheduler(at(2, 7, 0), at(2, 12, 0), nil)
	_, ok := s.placeFixed(&Task{ID: 1, Duration: 60, Flexibility: FlexFixed, HardWindow: &ClockWindow{Start: 14 * 60, End: 15 * 60}})
	assert.False(t, ok)
}
