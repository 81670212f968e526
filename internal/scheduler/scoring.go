package scheduler

import (
	"math"
	"time"
)

// Day-part bands in minutes of day. The morning band deliberately runs
// long; short tasks placed before lunch still count as morning work.
var dayPartBands = map[DayPart]ClockWindow{
	DayPartMorning:   {Start: 6 * 60, End: 14 * 60},
	DayPartAfternoon: {Start: 12 * 60, End: 18 * 60},
	DayPartEvening:   {Start: 17 * 60, End: 23 * 60},
}

const dayPartDeviation = 60 // minutes of tolerated drift outside a band

// timePreferenceScore rates how well a candidate interval matches the
// task's declared time preferences. Nested windows dominate: an interval
// fully inside the expected window scores 100, inside soft 0.5, inside
// hard 0.1, outside 0 (outside-hard was already rejected upstream but is
// re-checked here since scoring is also used on standing slots).
func (s *Scheduler) timePreferenceScore(task *Task, start, end time.Time) float64 {
	if task.Flexibility == FlexFixed {
		if task.HardWindow != nil &&
			minuteOfDay(start) == task.HardWindow.Start &&
			minuteOfDay(end) == task.HardWindow.End {
			return 1.0
		}
		return 0.0
	}

	if hasClockWindows(task) {
		score := nestedWindowScore(task, minuteOfDay(start), minuteOfDay(end))
		if task.Flexibility == FlexWindow {
			return score
		}
		// Non-window tasks treat their bands as advisory: blend with the
		// coarse day-part match so the band still dominates.
		return 0.7*score + 0.3*dayPartScore(task, start)
	}

	return dayPartScore(task, start)
}

func nestedWindowScore(task *Task, start, end MinuteOfDay) float64 {
	if task.ExpectedWindow != nil && task.ExpectedWindow.Contains(start, end) {
		return 100.0
	}
	if task.SoftWindow != nil && task.SoftWindow.Contains(start, end) {
		return 0.5
	}
	if task.HardWindow != nil && task.HardWindow.Contains(start, end) {
		return 0.1
	}
	return 0.0
}

func dayPartScore(task *Task, start time.Time) float64 {
	if task.PreferredPart == "" || task.PreferredPart == DayPartNoPreference {
		return 0.5
	}
	band, ok := dayPartBands[task.PreferredPart]
	if !ok {
		return 0.5
	}
	m := minuteOfDay(start)
	if m >= band.Start && m < band.End {
		return 1.0
	}
	if task.AllowTimeDeviation &&
		m >= band.Start-dayPartDeviation && m < band.End+dayPartDeviation {
		return 0.7
	}
	return 0.3
}

// slotScore is the full desirability score for placing task at
// [start, end). Time preference dominates lexicographically; workload,
// difficulty, spacing and buffers adjust within a preference tier; the
// earlier-is-better bias only breaks near-ties.
func (s *Scheduler) slotScore(task *Task, start, end time.Time) float64 {
	w := s.cfg.Weights
	score := s.timePreferenceScore(task, start, end) * w.TimePreference

	if task.Deadline != nil && end.After(*task.Deadline) {
		return score + w.DeadlineViolation
	}

	score += s.dailyWorkloadScore(task, start)
	score += s.weeklyBalanceScore(task, start)
	score += s.spacingScore(task, start)
	score += s.difficultyBalanceScore(task, start)
	score += s.bufferScore(task, start, end)
	score += s.earlierBias(task, start, end)
	return score
}

// dailyWorkloadScore applies the hard daily cap: exceeding it overrides
// every soft component, staying comfortably under earns a small bonus.
func (s *Scheduler) dailyWorkloadScore(task *Task, start time.Time) float64 {
	w := s.cfg.Weights
	total := s.dayTaskMinutes(start, task.ID) + task.Duration
	if total > s.cfg.DailyCapMinutes {
		return w.DailyOverload
	}
	if total <= s.cfg.DailyCapMinutes-120 {
		return w.DailyComfort
	}
	return 0
}

// weeklyBalanceScore rewards placing work on a day whose combined
// workload and difficulty sits below the week's average.
func (s *Scheduler) weeklyBalanceScore(task *Task, start time.Time) float64 {
	weekStart := dayOf(start).AddDate(0, 0, -int((start.Weekday()+6)%7)) // Monday
	var loads [7]float64
	var sum float64
	for i := 0; i < 7; i++ {
		day := weekStart.AddDate(0, 0, i)
		loads[i] = float64(s.dayTaskMinutes(day, task.ID)) + 30*float64(s.dayDifficulty(day, task.ID))
		sum += loads[i]
	}
	avg := sum / 7
	candidate := loads[int((start.Weekday()+6)%7)]
	if candidate >= avg || avg <= 0 {
		return 0
	}
	return s.cfg.Weights.WeeklyBalance * (avg - candidate) / avg
}

// spacingScore rewards even spacing between sibling recurrence instances:
// daily cadence wants ~24h gaps, weekly cadence wants at least a day of
// separation.
func (s *Scheduler) spacingScore(task *Task, start time.Time) float64 {
	cadence := ruleCadence(task.Recurrence)
	if cadence != CadenceDaily && cadence != CadenceWeekly {
		return 0
	}
	nearest := time.Duration(math.MaxInt64)
	for _, slot := range s.slots {
		if slot.Kind != SlotTask || slot.Task == nil || slot.Task.ID == task.ID {
			continue
		}
		if slot.Task.Title != task.Title {
			continue
		}
		gap := start.Sub(slot.Start)
		if gap < 0 {
			gap = -gap
		}
		if gap < nearest {
			nearest = gap
		}
	}
	if nearest == time.Duration(math.MaxInt64) {
		return 0
	}

	w := s.cfg.Weights.Spacing
	if cadence == CadenceDaily {
		drift := nearest - 24*time.Hour
		if drift < 0 {
			drift = -drift
		}
		switch {
		case drift <= time.Hour:
			return w
		case drift <= 3*time.Hour:
			return 0.6 * w
		case drift <= 6*time.Hour:
			return 0.3 * w
		default:
			return 0
		}
	}
	// Weekly: anything at least a day away from a sibling is fine.
	if nearest >= 24*time.Hour {
		return 0.5 * w
	}
	return -0.5 * w
}

// difficultyBalanceScore penalises stacking high-difficulty work on one
// day, measured against the week's average and spread.
func (s *Scheduler) difficultyBalanceScore(task *Task, start time.Time) float64 {
	if task.Difficulty <= 0 {
		return 0
	}
	weekStart := dayOf(start).AddDate(0, 0, -int((start.Weekday()+6)%7))
	var diffs [7]float64
	var sum float64
	for i := 0; i < 7; i++ {
		diffs[i] = float64(s.dayDifficulty(weekStart.AddDate(0, 0, i), task.ID))
		sum += diffs[i]
	}
	avg := sum / 7
	var variance float64
	for _, d := range diffs {
		variance += (d - avg) * (d - avg)
	}
	stddev := math.Sqrt(variance / 7)

	candidate := diffs[int((start.Weekday()+6)%7)] + float64(task.Difficulty)
	w := s.cfg.Weights.DifficultyBalance
	if candidate > avg+stddev+float64(task.Difficulty)/2 {
		return -w
	}
	if candidate < avg {
		return 0.25 * w
	}
	return 0
}

// bufferScore checks the gap to the nearest occupied neighbour. The
// required gap grows with task length and priority; tight placements are
// penalised proportionally, roomy ones earn a token bonus.
func (s *Scheduler) bufferScore(task *Task, start, end time.Time) float64 {
	required := time.Duration(task.Duration/4+task.Priority*5) * time.Minute
	if required <= 0 {
		return 0
	}

	gapBefore := time.Duration(math.MaxInt64)
	gapAfter := time.Duration(math.MaxInt64)
	for _, slot := range s.slots {
		if slot.Kind != SlotTask || slot.Task == nil || slot.Task.ID == task.ID {
			continue
		}
		if !slot.End.After(start) {
			if g := start.Sub(slot.End); g < gapBefore {
				gapBefore = g
			}
		}
		if !slot.Start.Before(end) {
			if g := slot.Start.Sub(end); g < gapAfter {
				gapAfter = g
			}
		}
	}
	gap := gapBefore
	if gapAfter < gap {
		gap = gapAfter
	}
	if gap == time.Duration(math.MaxInt64) {
		return 0.2 * s.cfg.Weights.Buffer
	}
	if gap < required {
		return -s.cfg.Weights.Buffer * (1 - float64(gap)/float64(required))
	}
	return 0.2 * s.cfg.Weights.Buffer
}

// earlierBias nudges placements ahead of a looming deadline: within the
// final 14 days, the further the slot finishes before the deadline the
// larger the bonus, linearly.
func (s *Scheduler) earlierBias(task *Task, start, end time.Time) float64 {
	if task.Deadline == nil {
		return 0
	}
	const horizon = 14 * 24 * time.Hour
	if task.Deadline.Sub(start) > horizon {
		return 0
	}
	lead := task.Deadline.Sub(end)
	if lead <= 0 {
		return 0
	}
	return s.cfg.Weights.EarlierBias * float64(lead) / float64(horizon)
}

// meanTaskSlotScore is the aggregate schedule quality: the mean slot
// score over all task-occupied slots, zero when nothing is placed.
func (s *Scheduler) meanTaskSlotScore() float64 {
	var sum float64
	var n int
	for _, slot := range s.slots {
		if slot.Kind != SlotTask || slot.Task == nil {
			continue
		}
		sum += s.slotScore(slot.Task, slot.Start, slot.End)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
