package scheduler

import (
	"sort"
	"time"
)

// Selection order: fixed tasks are carved in first at their exact hard
// windows, everything else descends by a blend of priority, deadline
// urgency and recurrence frequency. Ties keep input order (stable sort).

const (
	orderPriorityWeight  = 0.5
	orderUrgencyWeight   = 0.4
	orderFrequencyWeight = 0.1
)

var priorityScoreTable = map[int]float64{
	1: 0.3,
	2: 0.5,
	3: 0.8,
	4: 1.0,
	5: 1.2,
	6: 1.5,
}

func priorityScore(priority int) float64 {
	if score, ok := priorityScoreTable[priority]; ok {
		return score
	}
	return 0.5
}

// urgencyScore approaches 1.0 as the deadline nears, following a
// piecewise curve with linear interpolation inside each band.
func urgencyScore(now time.Time, deadline *time.Time) float64 {
	if deadline == nil {
		return 0
	}
	hours := deadline.Sub(now).Hours()
	switch {
	case hours <= 0:
		return 1.0
	case hours <= 24:
		return 0.8 + 0.2*(1-hours/24)
	case hours <= 48:
		return 0.5 + 0.3*(1-(hours-24)/24)
	case hours <= 72:
		return 0.3 + 0.2*(1-(hours-48)/24)
	case hours <= 168:
		return 0.2 + 0.1*(1-(hours-72)/96)
	default:
		return 0.1
	}
}

func frequencyScore(rule string) float64 {
	switch ruleCadence(rule) {
	case CadenceNone:
		return 0
	case CadenceDaily:
		return 1.0
	case CadenceWeekly:
		return 0.8
	case CadenceMonthly:
		return 0.6
	case CadenceYearly:
		return 0.4
	default:
		return 0.5
	}
}

func selectionScore(task *Task, now time.Time) float64 {
	return orderPriorityWeight*priorityScore(task.Priority) +
		orderUrgencyWeight*urgencyScore(now, task.Deadline) +
		orderFrequencyWeight*frequencyScore(task.Recurrence)
}

// partitionAndOrder splits instances into fixed-first placement order and
// the remainder sorted by descending selection score.
func partitionAndOrder(instances []*Task, now time.Time) (fixed, others []*Task) {
	for _, t := range instances {
		if t.Flexibility == FlexFixed {
			fixed = append(fixed, t)
		} else {
			others = append(others, t)
		}
	}
	sort.SliceStable(others, func(i, j int) bool {
		return selectionScore(others[i], now) > selectionScore(others[j], now)
	})
	return fixed, others
}
