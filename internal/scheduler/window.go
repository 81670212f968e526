package scheduler

import "time"

// buildWindow partitions [start, end) into available slots, excluding the
// daily sleep interval per calendar day. With no sleep window configured
// the whole horizon becomes one available slot.
func buildWindow(start, end time.Time, sleep *SleepWindow) []Slot {
	if !end.After(start) {
		return nil
	}
	if sleep == nil {
		return []Slot{{Start: start, End: end, Kind: SlotAvailable}}
	}

	var out []Slot
	appendClipped := func(a, b time.Time) {
		if a.Before(start) {
			a = start
		}
		if b.After(end) {
			b = end
		}
		if b.After(a) {
			out = append(out, Slot{Start: a, End: b, Kind: SlotAvailable})
		}
	}

	for day := dayOf(start); day.Before(end); day = day.AddDate(0, 0, 1) {
		sleepStart := day.Add(time.Duration(sleep.Start) * time.Minute)
		sleepEnd := day.Add(time.Duration(sleep.End) * time.Minute)
		next := day.AddDate(0, 0, 1)

		if sleep.Start <= sleep.End {
			// Sleep falls inside the day: wake before and after it.
			appendClipped(day, sleepStart)
			appendClipped(sleepEnd, next)
		} else {
			// Sleep wraps midnight: one wake interval per day.
			appendClipped(sleepEnd, sleepStart)
		}
	}
	return out
}
