// Package decay implements importance-weighted time decay scoring.
// Every memory read path ranks facts through Score.
package decay

import (
	"math"
	"time"

	"github.com/franklab/frank/internal/core"
)

// Half-lives per field class, in days.
const (
	HalfLifeProjects    = 90.0
	HalfLifePreferences = 180.0
	HalfLifeRelations   = 365.0
	HalfLifeEmotion     = 7.0

	// HalfLifeIdentity covers name and location. They have no decay class
	// of their own; the slowest one fits facts that rarely go stale.
	HalfLifeIdentity = HalfLifeRelations
)

// StaleThreshold is the relevance below which an item is eligible for pruning.
const StaleThreshold = 0.05

// ExpiredIntensity is the intensity below which a current emotion is cleared.
const ExpiredIntensity = 0.15

// Score returns the current relevance of item at time now:
// importance * 0.5^(age_days / halfLifeDays). A non-positive half-life
// short-circuits to full importance (explicit no-decay opt-out).
func Score(item core.TimedValue, halfLifeDays float64, now time.Time) float64 {
	return item.Importance * Factor(item.Timestamp, halfLifeDays, now)
}

// Factor returns the bare decay multiplier for a write timestamp (unix
// seconds), without the importance weight.
func Factor(timestamp, halfLifeDays float64, now time.Time) float64 {
	if halfLifeDays <= 0 {
		return 1.0
	}
	return math.Pow(0.5, AgeDays(timestamp, now)/halfLifeDays)
}

// AgeDays returns the non-negative age of a unix-seconds timestamp in days.
func AgeDays(timestamp float64, now time.Time) float64 {
	age := (float64(now.UnixNano())/1e9 - timestamp) / 86400.0
	if age < 0 {
		return 0
	}
	return age
}

// IntensityAt applies the emotional-state read-side decay: the stored base
// intensity halves every halfLifeHours.
func IntensityAt(base, timestamp, halfLifeHours float64, now time.Time) float64 {
	if halfLifeHours <= 0 {
		return base
	}
	ageHours := (float64(now.UnixNano())/1e9 - timestamp) / 3600.0
	if ageHours < 0 {
		ageHours = 0
	}
	return base * math.Pow(0.5, ageHours/halfLifeHours)
}
