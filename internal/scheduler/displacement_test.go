package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplacementNeverEvictsEqualOrHigherPriority(t *testing.T) {
	// One 90-minute slot, two 90-minute tasks. The priority-5 task wins
	// and the priority-2 task must not push it out.
	s := newTestScheduler(at(2, 8, 0), at(2, 9, 30), nil)

	res := s.Schedule([]*Task{
		{ID: 1, Title: "Errand", Duration: 90, Priority: 2, Flexibility: FlexFlexible},
		{ID: 2, Title: "Exam prep", Duration: 90, Priority: 5, Flexibility: FlexFlexible},
	})

	require.NoError(t, s.Validate())
	_, ok := res.Assigned(2)
	assert.True(t, ok, "the high-priority task keeps the slot")
	_, ok = res.Assigned(1)
	assert.False(t, ok)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, ConflictUnplaced, res.Conflicts[0].Type)
	assert.Equal(t, int64(1), res.Conflicts[0].TaskID)
	assert.Equal(t, 0, res.Stats.Displacements)
}

func TestDisplacementMovesEvicteeElsewhere(t *testing.T) {
	// Two wake intervals of three hours each. The low-priority task parks
	// at Monday 08:00; a deadline-bound high-priority task then needs
	// exactly that stretch and the evictee lands on Tuesday.
	sleep := &SleepWindow{Start: 11 * 60, End: 8 * 60}
	s := newTestScheduler(at(2, 8, 0), at(3, 11, 0), sleep)

	low := &Task{
		ID:             1,
		Title:          "Tidy inbox",
		Duration:       60,
		Priority:       2,
		Flexibility:    FlexFlexible,
		ExpectedWindow: &ClockWindow{Start: 8 * 60, End: 9 * 60},
	}
	res := s.Schedule([]*Task{low})
	a, ok := res.Assigned(1)
	require.True(t, ok)
	require.Equal(t, at(2, 8, 0), a.Start)

	deadline := at(2, 23, 0)
	high := &Task{
		ID:          2,
		Title:       "Client workshop",
		Duration:    150,
		Priority:    6,
		Flexibility: FlexWindow,
		HardWindow:  &ClockWindow{Start: 8 * 60, End: 10*60 + 30},
		Deadline:    &deadline,
	}
	res = s.Schedule([]*Task{high})

	require.NoError(t, s.Validate())
	assert.Equal(t, 1, res.Stats.Displacements)

	got, ok := res.Assigned(2)
	require.True(t, ok)
	assert.Equal(t, at(2, 8, 0), got.Start)
	assert.Equal(t, at(2, 10, 30), got.End)

	moved, ok := res.Assigned(1)
	require.True(t, ok, "the evictee must be rescheduled, not dropped")
	assert.True(t, sameDay(moved.Start, at(3, 0, 0)), "evictee moves to Tuesday")
}

func TestDisplacementRollsBackWhenEvicteeHasNowhereToGo(t *testing.T) {
	// 105 minutes of space. Evicting the 60-minute task would free room
	// for the 90-minute one, but the evictee could then go nowhere, so the
	// whole attempt must roll back.
	s := newTestScheduler(at(2, 8, 0), at(2, 9, 45), nil)

	low := &Task{ID: 1, Title: "Errand", Duration: 60, Priority: 2, Flexibility: FlexFlexible}
	res := s.Schedule([]*Task{low})
	orig, ok := res.Assigned(1)
	require.True(t, ok)

	high := &Task{ID: 2, Title: "Workshop", Duration: 90, Priority: 6, Flexibility: FlexFlexible}
	res = s.Schedule([]*Task{high})

	require.NoError(t, s.Validate())
	kept, ok := res.Assigned(1)
	require.True(t, ok, "rollback must leave the original placement intact")
	assert.Equal(t, orig.Start, kept.Start)
	assert.Equal(t, orig.End, kept.End)

	_, ok = res.Assigned(2)
	assert.False(t, ok)
	assert.Equal(t, 0, res.Stats.Displacements)
	require.NotEmpty(t, res.Conflicts)
	assert.Equal(t, ConflictUnplaced, res.Conflicts[len(res.Conflicts)-1].Type)
}

func TestEvictableTasksFiltering(t *testing.T) {
	s := newTestScheduler(at(2, 7, 0), at(2, 22, 0), nil)

	fixed := &Task{ID: 1, Duration: 60, Priority: 1, Flexibility: FlexFixed, HardWindow: &ClockWindow{Start: 9 * 60, End: 10 * 60}}
	_, ok := s.placeFixed(fixed)
	require.True(t, ok)

	flex := &Task{ID: 2, Title: "Notes", Duration: 60, Priority: 3, Flexibility: FlexFlexible}
	c := s.bestCandidate(flex, nil)
	require.True(t, c.valid())
	s.occupy(flex, c)

	requester := &Task{ID: 3, Duration: 60, Priority: 4, Flexibility: FlexFlexible}
	out := s.evictableTasks(requester)
	require.Len(t, out, 1, "fixed tasks are never evictable")
	assert.Equal(t, int64(2), out[0].task.ID)

	weak := &Task{ID: 4, Duration: 60, Priority: 3, Flexibility: FlexFlexible}
	assert.Empty(t, s.evictableTasks(weak), "equal priority does not displace")
}

func TestFreeTaskReleasesBuffers(t *testing.T) {
	s := newTestScheduler(at(2, 7, 0), at(2, 22, 0), nil)
	task := &Task{ID: 1, Title: "Review", Duration: 60, Priority: 3, Flexibility: FlexFlexible, BufferBefore: 10, BufferAfter: 10}
	c := s.bestCandidate(task, nil)
	require.True(t, c.valid())
	s.occupy(task, c)

	s.freeTask(1)

	require.NoError(t, s.Validate())
	slots := s.Slots()
	require.Len(t, slots, 1, "everything merges back into one available slot")
	assert.Equal(t, SlotAvailable, slots[0].Kind)
}

func TestFreeTaskKeepsNeighbourBuffers(t *testing.T) {
	// Two adjacent placements: A's trailing buffer touches B's leading
	// buffer. Freeing A must not take B's buffer with it.
	s := newTestScheduler(at(2, 8, 0), at(2, 11, 0), nil)

	a := &Task{ID: 1, Title: "Draft", Duration: 60, Priority: 3, Flexibility: FlexFlexible, BufferAfter: 30}
	c := s.bestCandidate(a, nil)
	require.True(t, c.valid())
	s.occupy(a, c)

	b := &Task{ID: 2, Title: "Review", Duration: 60, Priority: 3, Flexibility: FlexFlexible, BufferBefore: 30}
	c = s.bestCandidate(b, nil)
	require.True(t, c.valid())
	s.occupy(b, c)
	require.NoError(t, s.Validate())

	s.freeTask(a.ID)

	require.NoError(t, s.Validate())
	var buffers []Slot
	for _, slot := range s.Slots() {
		if slot.Kind == SlotBuffer {
			buffers = append(buffers, slot)
		}
	}
	require.Len(t, buffers, 1, "the neighbour's buffer must survive the eviction")
	assert.Equal(t, at(2, 9, 30), buffers[0].Start)
	assert.Equal(t, at(2, 10, 0), buffers[0].End)
	require.NotNil(t, buffers[0].Task)
	assert.Equal(t, b.ID, buffers[0].Task.ID)
}

func TestRestoreIntervalRebuildsBuffers(t *testing.T) {
	s := newTestScheduler(at(2, 7, 0), at(2, 22, 0), nil)
	task := &Task{ID: 1, Title: "Review", Duration: 60, Priority: 3, Flexibility: FlexFlexible, BufferBefore: 10, BufferAfter: 15}
	c := s.bestCandidate(task, nil)
	require.True(t, c.valid())
	a := s.occupy(task, c)
	layout := s.Slots()

	s.freeTask(task.ID)
	require.True(t, s.restoreInterval(task, a.Start, a.End))

	require.NoError(t, s.Validate())
	restored := s.Slots()
	require.Len(t, restored, len(layout))
	for i := range layout {
		assert.Equal(t, layout[i].Kind, restored[i].Kind)
		assert.Equal(t, layout[i].Start, restored[i].Start)
		assert.Equal(t, layout[i].End, restored[i].End)
	}
}

func TestForEachCombinationBounds(t *testing.T) {
	s := newTestScheduler(at(2, 7, 0), at(2, 22, 0), nil)
	items := []evictee{{task: &Task{ID: 1}}, {task: &Task{ID: 2}}, {task: &Task{ID: 3}}, {task: &Task{ID: 4}}}

	var sizes []int
	s.forEachCombination(items, func(combo []evictee) { sizes = append(sizes, len(combo)) })

	counts := map[int]int{}
	for _, n := range sizes {
		counts[n]++
	}
	assert.Equal(t, 4, counts[1])
	assert.Equal(t, 6, counts[2])
	assert.Equal(t, 4, counts[3])
	assert.Equal(t, 0, counts[4], "combinations never exceed three evictees")
}
