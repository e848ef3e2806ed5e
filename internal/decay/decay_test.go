package decay

import (
	"math"
	"testing"
	"time"

	"github.com/franklab/frank/internal/core"
)

func TestScore_FreshItemKeepsImportance(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	item := core.TimedValue{Value: "frank", Timestamp: 1_700_000_000, Importance: 0.8}

	got := Score(item, HalfLifeProjects, now)
	if math.Abs(got-0.8) > 1e-9 {
		t.Errorf("Score() = %v, want 0.8", got)
	}
}

func TestScore_HalvesAtHalfLife(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	item := core.TimedValue{Value: "frank", Timestamp: 1_700_000_000, Importance: 1.0}

	at := start.Add(90 * 24 * time.Hour)
	got := Score(item, 90, at)
	if math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Score() after one half-life = %v, want 0.5", got)
	}
}

func TestScore_MonotonicNonIncreasing(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	item := core.TimedValue{Value: "frank", Timestamp: 1_700_000_000, Importance: 0.9}

	prev := math.Inf(1)
	for d := 0; d <= 400; d += 10 {
		now := start.Add(time.Duration(d) * 24 * time.Hour)
		s := Score(item, HalfLifePreferences, now)
		if s > prev {
			t.Fatalf("score increased at day %d: %v > %v", d, s, prev)
		}
		if s < 0 {
			t.Fatalf("score went negative at day %d: %v", d, s)
		}
		prev = s
	}
	if prev >= 0.9 {
		t.Errorf("score never decreased over 400 days: %v", prev)
	}
}

func TestScore_NonPositiveHalfLifeDisablesDecay(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	item := core.TimedValue{Value: "frank", Timestamp: 1_700_000_000, Importance: 0.7}

	tenYears := start.Add(10 * 365 * 24 * time.Hour)
	for _, h := range []float64{0, -1} {
		if got := Score(item, h, tenYears); got != 0.7 {
			t.Errorf("Score(half-life %v) = %v, want 0.7", h, got)
		}
	}
}

func TestAgeDays_ClampsFutureTimestamps(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	if got := AgeDays(1_700_000_500, now); got != 0 {
		t.Errorf("AgeDays(future) = %v, want 0", got)
	}
}

func TestIntensityAt_ThreeHourHalfLife(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)

	got := IntensityAt(0.8, 1_700_000_000, 3, start.Add(3*time.Hour))
	if math.Abs(got-0.4) > 1e-9 {
		t.Errorf("IntensityAt(+3h) = %v, want 0.4", got)
	}

	// ~5.2h is where 0.5 falls under the 0.15 expiry threshold.
	late := IntensityAt(0.5, 1_700_000_000, 3, start.Add(6*time.Hour))
	if late >= ExpiredIntensity {
		t.Errorf("IntensityAt(+6h) = %v, want < %v", late, ExpiredIntensity)
	}
}
