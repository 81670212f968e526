package scheduler

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// Chunking splits long tasks into several scheduled sessions spread over
// the days before the deadline. Each chunk is an independent derived
// task placed by a single-day candidate search; chunks never displace
// other work and never get re-chunked themselves.

var chunkBuckets = []int{30, 60, 120, 240}

const (
	chunkAlwaysThreshold = 240 // minutes: split regardless of fit
	chunkMaybeThreshold  = 120 // minutes: split only when nothing fits
	fixedChunkSize       = 120
	maxChunksPerDay      = 4
)

// ChunkPlan is the derived splitting decision for one oversized task. It
// is computed once, consumed while generating chunk sub-tasks, then
// discarded; nothing persists it.
type ChunkPlan struct {
	Strategy      ChunkStrategyName
	Count         int
	Size          int
	Remainder     int
	Sizes         []int // explicit per-chunk sizes, front-loaded strategy only
	DaysAvailable int
}

// chunkSizes expands the plan into the ordered list of chunk durations.
func (p ChunkPlan) chunkSizes() []int {
	if len(p.Sizes) > 0 {
		return p.Sizes
	}
	sizes := make([]int, 0, p.Count+1)
	for i := 0; i < p.Count; i++ {
		sizes = append(sizes, p.Size)
	}
	if p.Remainder > 0 {
		sizes = append(sizes, p.Remainder)
	}
	return sizes
}

// needsChunking decides whether a task must be split: four hours or more
// always, two to four hours only when no single available slot can hold
// it with buffers, or when the task forces splitting outright.
func (s *Scheduler) needsChunking(task *Task) bool {
	if task.noChunk {
		return false
	}
	if task.ForceChunk {
		return true
	}
	if task.Duration >= chunkAlwaysThreshold {
		return true
	}
	if task.Duration >= chunkMaybeThreshold && !s.anyAvailableFits(task) {
		return true
	}
	return false
}

// buildChunkPlan picks the splitting strategy, defaulting to adaptive.
func (s *Scheduler) buildChunkPlan(task *Task) ChunkPlan {
	days := s.daysAvailable(task)
	strategy := task.ChunkStrategy
	if strategy == "" {
		strategy = ChunkAdaptive
	}

	switch strategy {
	case ChunkFixedSize:
		return ChunkPlan{
			Strategy:      ChunkFixedSize,
			Count:         task.Duration / fixedChunkSize,
			Size:          fixedChunkSize,
			Remainder:     task.Duration % fixedChunkSize,
			DaysAvailable: days,
		}
	case ChunkDeadlineAware:
		size := roundToBucket(task.Duration / days)
		return ChunkPlan{
			Strategy:      ChunkDeadlineAware,
			Count:         task.Duration / size,
			Size:          size,
			Remainder:     task.Duration % size,
			DaysAvailable: days,
		}
	case ChunkFrontLoaded:
		sizes := frontLoadedSizes(task.Duration)
		return ChunkPlan{
			Strategy:      ChunkFrontLoaded,
			Count:         len(sizes),
			Size:          sizes[0],
			Sizes:         sizes,
			DaysAvailable: days,
		}
	case ChunkUserPreference:
		size := task.ChunkSize
		if size > 0 {
			count := int(math.Ceil(float64(task.Duration) / float64(size)))
			if count <= days*maxChunksPerDay {
				return ChunkPlan{
					Strategy:      ChunkUserPreference,
					Count:         task.Duration / size,
					Size:          size,
					Remainder:     task.Duration % size,
					DaysAvailable: days,
				}
			}
		}
		// The preferred size cannot fit the deadline horizon.
		return s.adaptivePlan(task, days)
	default:
		return s.adaptivePlan(task, days)
	}
}

func (s *Scheduler) adaptivePlan(task *Task, days int) ChunkPlan {
	size := roundToBucket(task.Duration / days)
	// Shrink until a chunk of this size actually fits somewhere.
	largest := s.largestAvailableMinutes()
	for size > chunkBuckets[0] && size+task.BufferBefore+task.BufferAfter > largest {
		size = nextSmallerBucket(size)
	}
	return ChunkPlan{
		Strategy:      ChunkAdaptive,
		Count:         task.Duration / size,
		Size:          size,
		Remainder:     task.Duration % size,
		DaysAvailable: days,
	}
}

// daysAvailable counts whole days between the window start and the
// task's deadline (window end if none), clamped to the window length.
func (s *Scheduler) daysAvailable(task *Task) int {
	horizon := s.windowEnd
	if task.Deadline != nil && task.Deadline.Before(horizon) {
		horizon = *task.Deadline
	}
	days := int(math.Ceil(horizon.Sub(s.windowStart).Hours() / 24))
	windowDays := int(math.Ceil(s.windowEnd.Sub(s.windowStart).Hours() / 24))
	if days > windowDays {
		days = windowDays
	}
	if days < 1 {
		days = 1
	}
	return days
}

func (s *Scheduler) largestAvailableMinutes() int {
	largest := 0
	for _, slot := range s.slots {
		if slot.Kind == SlotAvailable && slot.Minutes() > largest {
			largest = slot.Minutes()
		}
	}
	return largest
}

func roundToBucket(minutes int) int {
	best := chunkBuckets[0]
	bestDiff := math.MaxInt
	for _, b := range chunkBuckets {
		diff := minutes - b
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			best = b
			bestDiff = diff
		}
	}
	return best
}

func nextSmallerBucket(size int) int {
	for i := len(chunkBuckets) - 1; i >= 0; i-- {
		if chunkBuckets[i] < size {
			return chunkBuckets[i]
		}
	}
	return chunkBuckets[0]
}

// frontLoadedSizes produces descending chunk sizes biased toward the
// start: 180-minute pieces first, then 120, then 60. Slivers under half
// an hour get absorbed into the preceding chunk.
func frontLoadedSizes(duration int) []int {
	var sizes []int
	rem := duration
	for rem > 0 {
		var sz int
		switch {
		case rem >= 180:
			sz = 180
		case rem >= 120:
			sz = 120
		case rem >= 60:
			sz = 60
		default:
			sz = rem
		}
		if sz < 30 && len(sizes) > 0 {
			sizes[len(sizes)-1] += sz
		} else {
			sizes = append(sizes, sz)
		}
		rem -= sz
	}
	return sizes
}

// scheduleChunks splits the task per its plan and places each chunk on
// its round-robin target day. A chunk that finds no slot on its day is
// reported as a conflict and left unplaced; the remaining chunks keep
// their placements.
func (s *Scheduler) scheduleChunks(task *Task) bool {
	plan := s.buildChunkPlan(task)
	sizes := plan.chunkSizes()
	n := len(sizes)
	if n <= 1 {
		// Degenerate plan: place as a single block.
		return s.placeOrDisplace(task, 0)
	}
	s.stats.ChunkedTasks++
	s.logger.Debug("splitting task into chunks",
		zap.Int64("task_id", task.ID),
		zap.String("strategy", string(plan.Strategy)),
		zap.Int("chunks", n),
		zap.Int("days", plan.DaysAvailable))

	baseDay := dayOf(s.windowStart)
	placedAny := false
	for i, size := range sizes {
		chunk := task.clone()
		chunk.ID = s.nextSyntheticID()
		chunk.ParentID = task.ID
		chunk.Duration = size
		chunk.Title = fmt.Sprintf("%s (%d/%d)", task.Title, i+1, n)
		chunk.ChunkIndex = i + 1
		chunk.ChunkCount = n
		chunk.ForceChunk = false
		chunk.noChunk = true

		targetDay := baseDay.AddDate(0, 0, i%plan.DaysAvailable)
		c := s.bestCandidate(chunk, &targetDay)
		if !c.valid() {
			// No cross-day displacement for chunks; single-day search only.
			s.conflicts = append(s.conflicts, Conflict{
				TaskID:  chunk.ID,
				Title:   chunk.Title,
				Type:    ConflictChunkUnplaced,
				Message: fmt.Sprintf("no slot on %s for chunk %d/%d", targetDay.Format("2006-01-02"), i+1, n),
			})
			continue
		}
		s.occupy(chunk, c)
		placedAny = true
	}
	return placedAny
}
