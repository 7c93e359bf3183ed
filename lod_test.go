package server

import (
	"math"
	"testing"
)

func tierThresholds() []float64 {
	meters := []float64{0, 35, 80, 180}
	squared := make([]float64, len(meters))
	for i, m := range meters {
		squared[i] = m * m
	}
	return squared
}

func TestClassifyTierCoarsensAtRawThreshold(t *testing.T) {
	thresholds := tierThresholds()

	tier := ClassifyTier(40*40, thresholds, 0)
	if tier != 1 {
		t.Fatalf("expected tier 1 at 40m from tier 0, got %d", tier)
	}

	tier = ClassifyTier(200*200, thresholds, 0)
	if tier != 3 {
		t.Fatalf("expected tier 3 at 200m from tier 0, got %d", tier)
	}
}

func TestClassifyTierHoldsInsideHysteresisBand(t *testing.T) {
	thresholds := tierThresholds()

	// 40m is past the 35m boundary, so staying at tier 1 is stable.
	tier := ClassifyTier(40*40, thresholds, 1)
	if tier != 1 {
		t.Fatalf("expected tier 1 at 40m from tier 1, got %d", tier)
	}

	// 30m is under the raw boundary but not under the shrunk one
	// (35 * 0.85 = 29.75), so the tier must hold.
	tier = ClassifyTier(30*30, thresholds, 1)
	if tier != 1 {
		t.Fatalf("expected tier 1 at 30m from tier 1, got %d", tier)
	}
}

func TestClassifyTierRefinesBelowShrunkThreshold(t *testing.T) {
	thresholds := tierThresholds()

	tier := ClassifyTier(29*29, thresholds, 1)
	if tier != 0 {
		t.Fatalf("expected tier 0 at 29m from tier 1, got %d", tier)
	}

	tier = ClassifyTier(10*10, thresholds, 3)
	if tier != 0 {
		t.Fatalf("expected tier 0 at 10m from tier 3, got %d", tier)
	}
}

func TestClassifyTierDegenerateInput(t *testing.T) {
	thresholds := tierThresholds()

	if tier := ClassifyTier(math.NaN(), thresholds, 2); tier != 0 {
		t.Fatalf("expected NaN distance to resolve to tier 0, got %d", tier)
	}
	if tier := ClassifyTier(-5, thresholds, 2); tier != 0 {
		t.Fatalf("expected negative distance to resolve to tier 0, got %d", tier)
	}
	if tier := ClassifyTier(50*50, nil, 2); tier != 0 {
		t.Fatalf("expected empty thresholds to resolve to tier 0, got %d", tier)
	}
}

func TestClassifyTierClampsCurrentTier(t *testing.T) {
	thresholds := tierThresholds()

	if tier := ClassifyTier(40*40, thresholds, -3); tier != 1 {
		t.Fatalf("expected negative current tier to clamp, got %d", tier)
	}
	// A stale out-of-range tier clamps to the coarsest before the
	// hysteresis check runs.
	if tier := ClassifyTier(10*10, thresholds, 99); tier != 0 {
		t.Fatalf("expected oversized current tier to clamp and refine, got %d", tier)
	}
}
