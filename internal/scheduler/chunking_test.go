package scheduler

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeedsChunking(t *testing.T) {
	s := newTestScheduler(at(2, 7, 0), at(4, 22, 0), nil)

	assert.False(t, s.needsChunking(&Task{Duration: 90}))
	assert.True(t, s.needsChunking(&Task{Duration: 240}), "four hours always splits")
	assert.True(t, s.needsChunking(&Task{Duration: 90, ForceChunk: true}))
	assert.False(t, s.needsChunking(&Task{Duration: 240, noChunk: true}), "derived chunks never re-split")

	// Between two and four hours only when nothing can hold it whole.
	assert.False(t, s.needsChunking(&Task{Duration: 150}))
	tight := newTestScheduler(at(2, 7, 0), at(2, 9, 0), nil)
	assert.True(t, tight.needsChunking(&Task{Duration: 150}))
}

func TestRoundToBucket(t *testing.T) {
	assert.Equal(t, 30, roundToBucket(10))
	assert.Equal(t, 30, roundToBucket(44))
	assert.Equal(t, 60, roundToBucket(50))
	assert.Equal(t, 120, roundToBucket(150))
	assert.Equal(t, 240, roundToBucket(200))
	assert.Equal(t, 240, roundToBucket(600))
}

func TestFrontLoadedSizes(t *testing.T) {
	assert.Equal(t, []int{180, 120, 60}, frontLoadedSizes(360))
	assert.Equal(t, []int{180, 120, 65}, frontLoadedSizes(365), "sub-half-hour sliver folds into the previous chunk")
	assert.Equal(t, []int{180, 180, 40}, frontLoadedSizes(400))
	assert.Equal(t, []int{45}, frontLoadedSizes(45))
}

func TestBuildChunkPlanFixedSize(t *testing.T) {
	s := newTestScheduler(at(2, 7, 0), at(4, 22, 0), nil)
	plan := s.buildChunkPlan(&Task{Duration: 300, ChunkStrategy: ChunkFixedSize})
	assert.Equal(t, ChunkFixedSize, plan.Strategy)
	assert.Equal(t, []int{120, 120, 60}, plan.chunkSizes())
}

func TestBuildChunkPlanUserPreference(t *testing.T) {
	s := newTestScheduler(at(2, 7, 0), at(4, 22, 0), nil)

	plan := s.buildChunkPlan(&Task{Duration: 300, ChunkStrategy: ChunkUserPreference, ChunkSize: 100})
	assert.Equal(t, ChunkUserPreference, plan.Strategy)
	assert.Equal(t, []int{100, 100, 100}, plan.chunkSizes())

	// A preferred size the horizon cannot absorb falls back to adaptive.
	squeezed := newTestScheduler(at(2, 7, 0), at(2, 22, 0), nil)
	plan = squeezed.buildChunkPlan(&Task{Duration: 300, ChunkStrategy: ChunkUserPreference, ChunkSize: 10})
	assert.Equal(t, ChunkAdaptive, plan.Strategy)
}

func TestBuildChunkPlanDeadlineAware(t *testing.T) {
	s := newTestScheduler(at(2, 0, 0), at(7, 0, 0), nil)
	deadline := at(4, 0, 0)
	plan := s.buildChunkPlan(&Task{Duration: 300, ChunkStrategy: ChunkDeadlineAware, Deadline: &deadline})
	assert.Equal(t, 2, plan.DaysAvailable)
	assert.Equal(t, 120, plan.Size, "300 minutes over 2 days rounds to the 120 bucket")
}

func TestScheduleChunksSpreadsAcrossDays(t *testing.T) {
	s := newTestScheduler(at(2, 8, 0), at(4, 8, 0), nil)
	deadline := at(3, 20, 0)

	res := s.Schedule([]*Task{{
		ID:          1,
		Title:       "Thesis chapter",
		Duration:    300,
		Priority:    4,
		Flexibility: FlexFlexible,
		Deadline:    &deadline,
	}})

	require.NoError(t, s.Validate())
	assert.Equal(t, 1, res.Stats.ChunkedTasks)
	require.Len(t, res.Assignments, 3, "120+120+60 over two days")

	total := 0
	days := map[time.Time]bool{}
	for _, a := range res.Assignments {
		assert.Contains(t, a.Task.Title, "Thesis chapter (")
		assert.True(t, strings.HasSuffix(a.Task.Title, "/3)"))
		assert.Equal(t, int64(1), a.Task.ParentID)
		assert.False(t, a.End.After(deadline))
		total += int(a.End.Sub(a.Start) / time.Minute)
		days[dayOf(a.Start)] = true
	}
	assert.Equal(t, 300, total)
	assert.GreaterOrEqual(t, len(days), 2, "chunks must spread over the deadline horizon")
}

func TestScheduleChunksReportsUnplaceableChunk(t *testing.T) {
	// Forced chunking with almost no room: some chunks place, the rest
	// surface as chunk conflicts rather than failing the whole task.
	s := newTestScheduler(at(2, 8, 0), at(2, 10, 0), nil)

	res := s.Schedule([]*Task{{
		ID:          1,
		Title:       "Marathon prep",
		Duration:    300,
		Priority:    4,
		Flexibility: FlexFlexible,
	}})

	require.NoError(t, s.Validate())
	require.NotEmpty(t, res.Conflicts)
	for _, c := range res.Conflicts {
		assert.Equal(t, ConflictChunkUnplaced, c.Type)
	}
	assert.NotEmpty(t, res.Assignments, "placeable chunks still land")
}
