package scheduler

import "time"

// isSlotAllowed is the hard admissibility filter run before any scoring.
// All checks must pass; the first failure rejects the candidate outright.
func (s *Scheduler) isSlotAllowed(task *Task, start, end time.Time) bool {
	// 1. Deadline: the task must finish before its deadline.
	if task.Deadline != nil && end.After(*task.Deadline) {
		return false
	}

	switch task.Flexibility {
	case FlexFixed:
		// 2. Fixed tasks accept only their exact hard window.
		if task.HardWindow == nil {
			return false
		}
		if minuteOfDay(start) != task.HardWindow.Start || minuteOfDay(end) != task.HardWindow.End {
			return false
		}
	case FlexWindow:
		// 3. Window tasks must stay inside the hard band, score at least
		// the hard-band floor, and honour their BYDAY day-list.
		if task.HardWindow != nil && !task.HardWindow.Contains(minuteOfDay(start), minuteOfDay(end)) {
			return false
		}
		if s.timePreferenceScore(task, start, end) < 0.1 {
			return false
		}
		if task.Recurrence != "" {
			days, ok := ruleWeekdays(task.Recurrence)
			if !ok || !days[start.Weekday()] {
				return false
			}
		}
	case FlexStrict:
		// 4. Day-pinning for strict tasks is enforced upstream by the
		// recurrence expander; nothing extra at slot level.
	default:
		// 5. Flexible (or unspecified): a zero time-preference score
		// means the slot sits in a disqualified band.
		if hasClockWindows(task) && s.timePreferenceScore(task, start, end) <= 0 {
			return false
		}
	}

	// 6. Same-day recurrence: one occurrence per calendar day unless the
	// task explicitly permits more.
	if task.Recurrence != "" && !task.AllowSameDayRecurring {
		for _, slot := range s.slots {
			if slot.Kind != SlotTask || slot.Task == nil || slot.Task.ID == task.ID {
				continue
			}
			if slot.Task.Title == task.Title && sameDay(slot.Start, start) {
				return false
			}
		}
	}

	return true
}

func hasClockWindows(task *Task) bool {
	return task.HardWindow != nil || task.SoftWindow != nil || task.ExpectedWindow != nil
}
