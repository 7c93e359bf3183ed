package server

import (
	"math"
	"testing"
)

func TestFacilitySoilRatesDependOnOccupancy(t *testing.T) {
	w := newTestWorld(t, 2, 0)
	live := w.courts["court-1"]
	idle := w.courts["court-2"]
	live.Status = MatchRally
	idle.Status = MatchGameOver

	w.StepFacility(10)

	wantLive := 100 - occupiedSoilRate*10
	wantIdle := 100 - idleSoilRate*10
	if math.Abs(live.Cleanliness-wantLive) > 1e-9 {
		t.Fatalf("expected live court at %f, got %f", wantLive, live.Cleanliness)
	}
	if math.Abs(idle.Cleanliness-wantIdle) > 1e-9 {
		t.Fatalf("expected idle court at %f, got %f", wantIdle, idle.Cleanliness)
	}
}

func TestFacilityCleanlinessClampsAtZero(t *testing.T) {
	w := newTestWorld(t, 1, 0)
	court := w.courts["court-1"]
	court.Status = MatchRally
	court.Cleanliness = 1

	w.StepFacility(100)

	if court.Cleanliness != 0 {
		t.Fatalf("expected cleanliness clamped at zero, got %f", court.Cleanliness)
	}
}

func TestFacilityQueuesJobsForDirtyFreeCourts(t *testing.T) {
	w := newTestWorld(t, 1, 0)
	court := w.courts["court-1"]
	court.Status = MatchGameOver
	court.Cleanliness = cleanlinessFloor - 1

	w.StepFacility(0.1)

	if len(w.jobs) != 1 {
		t.Fatalf("expected one queued job, got %d", len(w.jobs))
	}
	if w.jobs[0].Priority != PriorityRoutine {
		t.Fatalf("expected routine priority, got %s", w.jobs[0].Priority)
	}

	// Repeat ticks must not stack duplicate jobs for the same court.
	w.StepFacility(0.1)
	if len(w.jobs) != 1 {
		t.Fatalf("expected job queue deduplicated, got %d", len(w.jobs))
	}
}

func TestFacilityEscalatesVeryDirtyCourts(t *testing.T) {
	w := newTestWorld(t, 1, 0)
	court := w.courts["court-1"]
	court.Status = MatchGameOver
	court.Cleanliness = cleanlinessFloor/2 - 5

	w.StepFacility(0.1)

	if len(w.jobs) != 1 || w.jobs[0].Priority != PriorityUrgent {
		t.Fatalf("expected an urgent job, got %v", w.jobs)
	}
}

func TestFacilityDoesNotQueueForOccupiedCourts(t *testing.T) {
	w := newTestWorld(t, 1, 0)
	court := w.courts["court-1"]
	court.Status = MatchRally
	court.Cleanliness = 5

	w.StepFacility(0.1)

	if len(w.jobs) != 0 {
		t.Fatalf("expected no jobs while the match runs, got %d", len(w.jobs))
	}
}

func TestFacilityReclassifiesTiersAgainstViewpoint(t *testing.T) {
	w := newTestWorld(t, 1, 0)
	court := w.courts["court-1"]

	w.SetViewpoint(court.Origin.X, court.Origin.Y)
	w.StepFacility(0.01)
	if court.Tier != 0 {
		t.Fatalf("expected finest tier at the court, got %d", court.Tier)
	}

	w.SetViewpoint(court.Origin.X+100, court.Origin.Y)
	w.StepFacility(0.01)
	if court.Tier != 2 {
		t.Fatalf("expected tier 2 at 100m, got %d", court.Tier)
	}

	// Walking back inside the hysteresis band keeps the coarse tier.
	w.SetViewpoint(court.Origin.X+79, court.Origin.Y)
	w.StepFacility(0.01)
	if court.Tier != 2 {
		t.Fatalf("expected tier 2 held inside the band, got %d", court.Tier)
	}

	w.SetViewpoint(court.Origin.X+10, court.Origin.Y)
	w.StepFacility(0.01)
	if court.Tier != 0 {
		t.Fatalf("expected refinement back to tier 0, got %d", court.Tier)
	}
}

func TestStepFacilityBumpsVersionOncePerBatch(t *testing.T) {
	w := newTestWorld(t, 3, 0)

	before := w.Version()
	w.StepFacility(0.1)
	if got := w.Version() - before; got != 1 {
		t.Fatalf("expected exactly one version bump for the batch, got %d", got)
	}
}

func TestStepFacilityIgnoresInvalidDelta(t *testing.T) {
	w := newTestWorld(t, 1, 0)

	before := w.Version()
	w.StepFacility(0)
	w.StepFacility(-1)
	w.StepFacility(math.NaN())
	if w.Version() != before {
		t.Fatalf("expected invalid deltas to be rejected before any mutation")
	}
}
