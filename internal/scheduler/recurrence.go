package scheduler

import (
	"strings"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"
)

// Cadence is the coarse repeat frequency of a recurrence rule.
type Cadence string

const (
	CadenceNone    Cadence = ""
	CadenceDaily   Cadence = "DAILY"
	CadenceWeekly  Cadence = "WEEKLY"
	CadenceMonthly Cadence = "MONTHLY"
	CadenceYearly  Cadence = "YEARLY"
	CadenceOther   Cadence = "OTHER"
)

// ruleCadence inspects the FREQ component without fully parsing the rule.
func ruleCadence(rule string) Cadence {
	if strings.TrimSpace(rule) == "" {
		return CadenceNone
	}
	for _, part := range strings.Split(rule, ";") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 || !strings.EqualFold(kv[0], "FREQ") {
			continue
		}
		switch strings.ToUpper(strings.TrimSpace(kv[1])) {
		case "DAILY":
			return CadenceDaily
		case "WEEKLY":
			return CadenceWeekly
		case "MONTHLY":
			return CadenceMonthly
		case "YEARLY":
			return CadenceYearly
		default:
			return CadenceOther
		}
	}
	return CadenceOther
}

// ruleWeekdays extracts the BYDAY day-list of a rule. The second return
// is false when the rule cannot be parsed or carries no day-list; window
// tasks treat that as disqualifying.
func ruleWeekdays(rule string) (map[time.Weekday]bool, bool) {
	opt, err := rrule.StrToROption(strings.TrimSpace(rule))
	if err != nil || len(opt.Byweekday) == 0 {
		return nil, false
	}
	days := make(map[time.Weekday]bool, len(opt.Byweekday))
	for _, wd := range opt.Byweekday {
		// rrule counts from Monday=0, time.Weekday from Sunday=0.
		days[time.Weekday((wd.Day()+1)%7)] = true
	}
	return days, true
}

// expandRecurrence turns one task into its concrete instances inside the
// scheduling window. Tasks without a rule expand to themselves. Malformed
// rule text is a data-quality failure: it yields zero instances and a log
// line, never an error.
func (s *Scheduler) expandRecurrence(task *Task) []*Task {
	rule := strings.TrimSpace(task.Recurrence)
	if rule == "" {
		return []*Task{task}
	}

	opt, err := rrule.StrToROption(rule)
	if err != nil {
		s.logger.Warn("skipping task with malformed recurrence rule",
			zap.Int64("task_id", task.ID), zap.String("rule", rule), zap.Error(err))
		return nil
	}
	if opt.Dtstart.IsZero() {
		opt.Dtstart = s.windowStart
	}
	rr, err := rrule.NewRRule(*opt)
	if err != nil {
		s.logger.Warn("skipping task with malformed recurrence rule",
			zap.Int64("task_id", task.ID), zap.String("rule", rule), zap.Error(err))
		return nil
	}

	occurrences := rr.Between(s.windowStart, s.windowEnd, true)
	instances := make([]*Task, 0, len(occurrences))
	for _, occ := range occurrences {
		inst := task.clone()
		inst.ID = s.nextSyntheticID()
		inst.ParentID = task.ID
		day := dayOf(occ.In(s.windowStart.Location()))

		switch task.Flexibility {
		case FlexFixed:
			// The deadline filter would otherwise reject the instance:
			// its effective deadline is the hard window's end on the
			// occurrence day, so the placement itself stays admissible.
			if task.HardWindow != nil {
				dl := day.Add(time.Duration(task.HardWindow.End) * time.Minute)
				inst.Deadline = &dl
			}
			d := day
			inst.PinnedDay = &d
		case FlexStrict:
			// Day-pinning happens here so the slot-level checker stays
			// free of strict-specific rules.
			d := day
			inst.PinnedDay = &d
		}
		instances = append(instances, inst)
	}
	return instances
}
