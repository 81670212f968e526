package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNestedWindowScore(t *testing.T) {
	task := &Task{
		HardWindow:     &ClockWindow{Start: 8 * 60, End: 20 * 60},
		SoftWindow:     &ClockWindow{Start: 9 * 60, End: 17 * 60},
		ExpectedWindow: &ClockWindow{Start: 10 * 60, End: 12 * 60},
	}

	assert.Equal(t, 100.0, nestedWindowScore(task, 10*60, 11*60), "inside expected")
	assert.Equal(t, 0.5, nestedWindowScore(task, 9*60, 10*60), "inside soft only")
	assert.Equal(t, 0.1, nestedWindowScore(task, 8*60, 9*60), "inside hard only")
	assert.Equal(t, 0.0, nestedWindowScore(task, 7*60, 8*60), "outside everything")
}

func TestDayPartScore(t *testing.T) {
	morning := &Task{PreferredPart: DayPartMorning}
	assert.Equal(t, 1.0, dayPartScore(morning, at(2, 8, 0)))
	assert.Equal(t, 0.3, dayPartScore(morning, at(2, 16, 0)))

	tolerant := &Task{PreferredPart: DayPartMorning, AllowTimeDeviation: true}
	assert.Equal(t, 0.7, dayPartScore(tolerant, at(2, 5, 30)), "within the deviation margin")
	assert.Equal(t, 0.3, dayPartScore(tolerant, at(2, 4, 0)))

	assert.Equal(t, 0.5, dayPartScore(&Task{}, at(2, 8, 0)))
	assert.Equal(t, 0.5, dayPartScore(&Task{PreferredPart: DayPartNoPreference}, at(2, 8, 0)))
}

func TestTimePreferenceDominatesSoftComponents(t *testing.T) {
	s := newTestScheduler(at(2, 7, 0), at(2, 22, 0), nil)
	task := &Task{ID: 1, Duration: 60, Priority: 3, Flexibility: FlexFlexible, PreferredPart: DayPartMorning}

	inBand := s.slotScore(task, at(2, 8, 0), at(2, 9, 0))
	outOfBand := s.slotScore(task, at(2, 16, 0), at(2, 17, 0))

	// Full-band vs out-of-band is a 700-point gap; no combination of the
	// soft components comes close to bridging it.
	assert.Greater(t, inBand-outOfBand, 500.0)
}

func TestSlotScoreDeadlineViolationOverridesEverything(t *testing.T) {
	s := newTestScheduler(at(2, 7, 0), at(2, 22, 0), nil)
	deadline := at(2, 10, 0)
	task := &Task{ID: 1, Duration: 60, Priority: 3, Flexibility: FlexFlexible, Deadline: &deadline, PreferredPart: DayPartMorning}

	late := s.slotScore(task, at(2, 11, 0), at(2, 12, 0))
	onTime := s.slotScore(task, at(2, 8, 0), at(2, 9, 0))
	assert.Greater(t, onTime, late)
	assert.Less(t, late, 100.0, "the violation penalty must sink an otherwise perfect slot")
}

func TestDailyWorkloadOverload(t *testing.T) {
	s := newTestScheduler(at(2, 7, 0), at(2, 22, 0), nil)
	filler := &Task{ID: -1, Title: "Long haul", Duration: 450, Priority: 3, Flexibility: FlexFlexible, noChunk: true}
	c := s.bestCandidate(filler, nil)
	require.True(t, c.valid())
	s.occupy(filler, c)

	task := &Task{ID: 1, Duration: 60, Priority: 3, Flexibility: FlexFlexible}
	assert.Equal(t, s.cfg.Weights.DailyOverload, s.dailyWorkloadScore(task, at(2, 20, 0)),
		"450 existing plus 60 breaches the 480-minute cap")
}

func TestEarlierBiasPrefersLead(t *testing.T) {
	s := newTestScheduler(at(2, 7, 0), at(6, 22, 0), nil)
	deadline := at(5, 18, 0)
	task := &Task{ID: 1, Duration: 60, Flexibility: FlexFlexible, Deadline: &deadline}

	early := s.earlierBias(task, at(2, 8, 0), at(2, 9, 0))
	late := s.earlierBias(task, at(5, 8, 0), at(5, 9, 0))
	assert.Greater(t, early, late)
	assert.Equal(t, 0.0, s.earlierBias(&Task{ID: 2, Duration: 60}, at(2, 8, 0), at(2, 9, 0)),
		"no deadline, no bias")
}

func TestSpacingScoreDailyCadence(t *testing.T) {
	s := newTestScheduler(at(2, 7, 0), at(5, 22, 0), nil)
	sibling := &Task{ID: -1, Title: "Jog", Duration: 45, Flexibility: FlexFlexible, Recurrence: "FREQ=DAILY"}
	c := s.bestCandidate(sibling, nil)
	require.True(t, c.valid())
	s.occupy(sibling, c)
	anchor, _, ok := s.taskSpan(-1)
	require.True(t, ok)

	next := &Task{ID: -2, Title: "Jog", Duration: 45, Flexibility: FlexFlexible, Recurrence: "FREQ=DAILY"}
	exact := s.spacingScore(next, anchor.Add(24*time.Hour))
	drifted := s.spacingScore(next, anchor.Add(31*time.Hour))
	assert.Equal(t, s.cfg.Weights.Spacing, exact)
	assert.Greater(t, exact, drifted)
}

func TestMeanTaskSlotScoreEmpty(t *testing.T) {
	s := newTestScheduler(at(2, 7, 0), at(2, 22, 0), nil)
	assert.Equal(t, 0.0, s.meanTaskSlotScore())
}
