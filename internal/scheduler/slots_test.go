package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpliceDropsZeroLengthPieces(t *testing.T) {
	s := newTestScheduler(at(2, 8, 0), at(2, 12, 0), nil)
	task := &Task{ID: 1, Duration: 60}

	s.splice(0,
		Slot{Start: at(2, 8, 0), End: at(2, 8, 0), Kind: SlotAvailable},
		Slot{Start: at(2, 8, 0), End: at(2, 9, 0), Kind: SlotTask, Task: task},
		Slot{Start: at(2, 9, 0), End: at(2, 12, 0), Kind: SlotAvailable},
	)

	require.NoError(t, s.Validate())
	require.Len(t, s.slots, 2)
	assert.Equal(t, SlotTask, s.slots[0].Kind)
}

func TestMergeAvailableCoalescesNeighbours(t *testing.T) {
	s := newTestScheduler(at(2, 8, 0), at(2, 12, 0), nil)
	s.slots = []Slot{
		{Start: at(2, 8, 0), End: at(2, 9, 0), Kind: SlotAvailable},
		{Start: at(2, 9, 0), End: at(2, 10, 0), Kind: SlotAvailable},
		{Start: at(2, 10, 0), End: at(2, 12, 0), Kind: SlotAvailable},
	}

	s.mergeAvailable()

	require.Len(t, s.slots, 1)
	assert.Equal(t, at(2, 8, 0), s.slots[0].Start)
	assert.Equal(t, at(2, 12, 0), s.slots[0].End)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	s := newTestScheduler(at(2, 8, 0), at(2, 12, 0), nil)
	task := &Task{ID: 1, Title: "Review", Duration: 60, Priority: 3, Flexibility: FlexFlexible}

	snap := s.snapshot()
	c := s.bestCandidate(task, nil)
	require.True(t, c.valid())
	s.occupy(task, c)
	require.NotEmpty(t, s.taskSlotIndexes(1))

	s.restoreSnapshot(snap)
	assert.Empty(t, s.taskSlotIndexes(1))
	require.NoError(t, s.Validate())
}

func TestValidateCatchesOverlap(t *testing.T) {
	s := newTestScheduler(at(2, 8, 0), at(2, 12, 0), nil)
	s.slots = []Slot{
		{Start: at(2, 8, 0), End: at(2, 10, 0), Kind: SlotAvailable},
		{Start: at(2, 9, 0), End: at(2, 12, 0), Kind: SlotAvailable},
	}
	assert.Error(t, s.Validate())
}

func TestValidateCatchesCoverageGap(t *testing.T) {
	s := newTestScheduler(at(2, 8, 0), at(2, 12, 0), nil)
	s.slots = []Slot{{Start: at(2, 8, 0), End: at(2, 11, 0), Kind: SlotAvailable}}
	assert.Error(t, s.Validate())
}

func TestDayTaskMinutesExcludesTask(t *testing.T) {
	s := newTestScheduler(at(2, 8, 0), at(3, 22, 0), nil)
	a := &Task{ID: 1, Title: "A", Duration: 60, Priority: 3, Flexibility: FlexFlexible}
	b := &Task{ID: 2, Title: "B", Duration: 30, Priority: 3, Flexibility: FlexFlexible}
	monday := at(2, 0, 0)
	for _, task := range []*Task{a, b} {
		c := s.bestCandidate(task, &monday)
		require.True(t, c.valid())
		s.occupy(task, c)
	}

	day := at(2, 0, 0)
	assert.Equal(t, 90, s.dayTaskMinutes(day, 0))
	assert.Equal(t, 30, s.dayTaskMinutes(day, a.ID))
}
