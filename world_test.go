package server

import (
	"testing"
)

func TestNewWorldPopulatesRegistries(t *testing.T) {
	w := newTestWorld(t, 4, 2)

	if len(w.courts) != 4 || len(w.courtIDs) != 4 {
		t.Fatalf("expected 4 courts, got %d", len(w.courts))
	}
	if len(w.robots) != 2 || len(w.robotIDs) != 2 {
		t.Fatalf("expected 2 robots, got %d", len(w.robots))
	}

	for _, id := range w.courtIDs {
		court := w.courts[id]
		if court.Status != MatchWaiting {
			t.Fatalf("expected %s to start Waiting, got %s", id, court.Status)
		}
		if court.Cleanliness != 100 {
			t.Fatalf("expected %s to start clean, got %f", id, court.Cleanliness)
		}
		if court.ServerSlot != 1 || court.ServingTeam != 0 {
			t.Fatalf("expected %s to start with server 1 of team 0", id)
		}
		if court.Ball.LastHitBy != -1 {
			t.Fatalf("expected %s ball untagged, got %d", id, court.Ball.LastHitBy)
		}
	}

	for _, id := range w.robotIDs {
		robot := w.robots[id]
		if robot.Status != RobotIdle {
			t.Fatalf("expected %s to start Idle, got %s", id, robot.Status)
		}
		if robot.Battery != 100 {
			t.Fatalf("expected %s full battery, got %f", id, robot.Battery)
		}
		if robot.Pos != w.depot {
			t.Fatalf("expected %s parked at the depot, got %v", id, robot.Pos)
		}
	}
}

func TestWorldSnapshotCopiesState(t *testing.T) {
	w := newTestWorld(t, 2, 1)
	w.EnqueueJob("court-1", PriorityRoutine)

	courts, robots, jobs := w.Snapshot()
	if len(courts) != 2 || len(robots) != 1 || len(jobs) != 1 {
		t.Fatalf("unexpected snapshot sizes: %d courts, %d robots, %d jobs", len(courts), len(robots), len(jobs))
	}

	// Mutating the snapshot must not touch the registries.
	courts[0].Score[0] = 99
	jobs[0].AssignedTo = "robot-99"
	if w.courts[courts[0].ID].Score[0] != 0 {
		t.Fatalf("snapshot mutation leaked into the court registry")
	}
	if w.jobs[0].AssignedTo != "" {
		t.Fatalf("snapshot mutation leaked into the job queue")
	}
}

func TestWorldCourtAndRobotLookups(t *testing.T) {
	w := newTestWorld(t, 1, 1)

	if _, ok := w.Court("court-1"); !ok {
		t.Fatalf("expected court-1 to exist")
	}
	if _, ok := w.Court("court-9"); ok {
		t.Fatalf("expected unknown court lookup to fail")
	}
	if _, ok := w.Robot("robot-1"); !ok {
		t.Fatalf("expected robot-1 to exist")
	}
	if _, ok := w.Robot("robot-9"); ok {
		t.Fatalf("expected unknown robot lookup to fail")
	}
}

func TestResetMatchOnlyFromGameOver(t *testing.T) {
	w := newTestWorld(t, 1, 0)
	court := w.courts["court-1"]

	if w.ResetMatch("court-1") {
		t.Fatalf("expected reset rejected mid-game")
	}
	if w.ResetMatch("court-9") {
		t.Fatalf("expected reset rejected for unknown court")
	}

	court.Status = MatchGameOver
	court.Score = [2]int{11, 7}
	court.Rally = 9
	before := w.Version()

	if !w.ResetMatch("court-1") {
		t.Fatalf("expected reset to succeed from GameOver")
	}
	if court.Status != MatchWaiting {
		t.Fatalf("expected Waiting after reset, got %s", court.Status)
	}
	if court.Score != [2]int{} || court.Rally != 0 {
		t.Fatalf("expected score and rally cleared, got %v rally %d", court.Score, court.Rally)
	}
	if court.ServerSlot != 1 || court.ServingTeam != 0 {
		t.Fatalf("expected serve state reset")
	}
	if w.Version() != before+1 {
		t.Fatalf("expected a version bump on reset")
	}
}

func TestDeterministicRNGStreams(t *testing.T) {
	a := newDeterministicRNG("seed", "match")
	b := newDeterministicRNG("seed", "match")
	c := newDeterministicRNG("seed", "fleet")

	for i := 0; i < 10; i++ {
		av, bv := a.Float64(), b.Float64()
		if av != bv {
			t.Fatalf("expected identical streams for identical seed+label at draw %d", i)
		}
		if av == c.Float64() && i == 0 {
			t.Fatalf("expected different labels to diverge")
		}
	}
}

func TestWorldsWithSameSeedAgree(t *testing.T) {
	a := newTestWorld(t, 1, 0)
	b := newTestWorld(t, 1, 0)

	for i := 0; i < 200; i++ {
		a.StepMatches(1.0 / 60)
		b.StepMatches(1.0 / 60)
	}

	courtA := a.courts["court-1"]
	courtB := b.courts["court-1"]
	if courtA.Status != courtB.Status {
		t.Fatalf("expected identical status, got %s vs %s", courtA.Status, courtB.Status)
	}
	if courtA.Ball != courtB.Ball {
		t.Fatalf("expected identical ball state")
	}
	if courtA.Score != courtB.Score {
		t.Fatalf("expected identical score, got %v vs %v", courtA.Score, courtB.Score)
	}
}
