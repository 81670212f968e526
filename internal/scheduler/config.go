package scheduler

import (
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// Weights are the scoring coefficients. Only their relative ordering is
// load-bearing (time preference dominates workload/difficulty/spacing,
// which dominate the earlier-is-better bias); the exact values are tuning.
type Weights struct {
	TimePreference    float64
	DeadlineViolation float64
	DailyOverload     float64
	DailyComfort      float64
	WeeklyBalance     float64
	Spacing           float64
	DifficultyBalance float64
	Buffer            float64
	EarlierBias       float64

	DisplacePriorityGap     float64
	DisplaceMultiPenalty    float64
	DisplaceBaseBonus       float64
	DisplaceQualityRecovery float64
}

// DefaultWeights returns the historical tuning.
func DefaultWeights() Weights {
	return Weights{
		TimePreference:    1000,
		DeadlineViolation: -1000,
		DailyOverload:     -1000,
		DailyComfort:      0.5,
		WeeklyBalance:     0.7,
		Spacing:           1.0,
		DifficultyBalance: 0.8,
		Buffer:            1.3,
		EarlierBias:       0.5,

		DisplacePriorityGap:     5,
		DisplaceMultiPenalty:    2.0,
		DisplaceBaseBonus:       0.1,
		DisplaceQualityRecovery: 0.5,
	}
}

// Config parameterises one Scheduler instance. Zero values fall back to
// the defaults in DefaultConfig.
type Config struct {
	// Granularity is the candidate start step inside available slots.
	Granularity time.Duration
	// MaxEvictees bounds displacement combinations (never larger than 3).
	MaxEvictees int
	// MaxDisplaceDepth bounds nested re-evictions while rescheduling.
	MaxDisplaceDepth int
	// MaxSwapAttempts bounds the optimizer's randomized swap phase.
	MaxSwapAttempts int
	// DailyCapMinutes is the soft per-day workload cap.
	DailyCapMinutes int
	// OptimizeThreshold triggers the swap phase when the mean task-slot
	// score falls below it.
	OptimizeThreshold float64

	Weights Weights

	// Rand drives the swap phase. Inject a seeded source for
	// reproducible runs; nil falls back to a fixed seed.
	Rand *rand.Rand
	// Clock supplies "now" for urgency scoring. Nil means time.Now.
	Clock func() time.Time

	Logger *zap.Logger
}

// DefaultConfig returns the engine defaults described in one place so
// callers can treat every cap as configuration.
func DefaultConfig() Config {
	return Config{
		Granularity:       5 * time.Minute,
		MaxEvictees:       3,
		MaxDisplaceDepth:  3,
		MaxSwapAttempts:   10,
		DailyCapMinutes:   8 * 60,
		OptimizeThreshold: 500,
		Weights:           DefaultWeights(),
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Granularity <= 0 {
		c.Granularity = def.Granularity
	}
	if c.MaxEvictees <= 0 || c.MaxEvictees > 3 {
		c.MaxEvictees = def.MaxEvictees
	}
	if c.MaxDisplaceDepth <= 0 {
		c.MaxDisplaceDepth = def.MaxDisplaceDepth
	}
	if c.MaxSwapAttempts <= 0 {
		c.MaxSwapAttempts = def.MaxSwapAttempts
	}
	if c.DailyCapMinutes <= 0 {
		c.DailyCapMinutes = def.DailyCapMinutes
	}
	if c.OptimizeThreshold == 0 {
		c.OptimizeThreshold = def.OptimizeThreshold
	}
	if (c.Weights == Weights{}) {
		c.Weights = def.Weights
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewSource(1))
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}
