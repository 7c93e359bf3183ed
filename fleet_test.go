package server

import (
	"math"
	"testing"
)

// stubPlanner returns canned routes so fleet tests are independent of the
// grid search.
type stubPlanner struct {
	approach []vec2
	depot    []vec2
	cleaning []vec2
}

func (s *stubPlanner) ApproachPath(from vec2, courtID string) []vec2 {
	return append([]vec2(nil), s.approach...)
}

func (s *stubPlanner) DepotPath(from vec2) []vec2 {
	return append([]vec2(nil), s.depot...)
}

func (s *stubPlanner) CleaningPath(courtID string) []vec2 {
	return append([]vec2(nil), s.cleaning...)
}

func newFleetTestWorld(t *testing.T) (*World, *robotState, *courtState) {
	t.Helper()
	w := newTestWorld(t, 1, 1)
	robot := w.robots["robot-1"]
	court := w.courts["court-1"]
	court.Status = MatchGameOver // free the court for cleaning
	return w, robot, court
}

func TestFleetAssignsQueuedJob(t *testing.T) {
	w, robot, _ := newFleetTestWorld(t)
	w.planner = &stubPlanner{
		approach: []vec2{{X: robot.Pos.X + 1, Y: robot.Pos.Y}},
	}

	job, ok := w.EnqueueJob("court-1", PriorityRoutine)
	if !ok {
		t.Fatalf("expected job to enqueue")
	}

	w.StepFleet(0.01)

	if robot.Status != RobotNavigating {
		t.Fatalf("expected Navigating after assignment, got %s", robot.Status)
	}
	if robot.JobID != job.ID {
		t.Fatalf("expected robot bound to %s, got %q", job.ID, robot.JobID)
	}
	if queued := w.jobByID(job.ID); queued == nil || queued.AssignedTo != robot.ID {
		t.Fatalf("expected job assigned to %s", robot.ID)
	}
}

func TestFleetSkipsOccupiedCourts(t *testing.T) {
	w, robot, court := newFleetTestWorld(t)
	court.Status = MatchRally
	w.planner = &stubPlanner{approach: []vec2{{X: 1, Y: 1}}}

	w.EnqueueJob("court-1", PriorityRoutine)
	w.StepFleet(0.01)

	if robot.Status != RobotIdle {
		t.Fatalf("expected robot to stay idle while the court is live, got %s", robot.Status)
	}
}

func TestFleetPrefersUrgentJobs(t *testing.T) {
	w := newTestWorld(t, 2, 1)
	w.courts["court-1"].Status = MatchGameOver
	w.courts["court-2"].Status = MatchGameOver
	robot := w.robots["robot-1"]
	w.planner = &stubPlanner{approach: []vec2{{X: 1, Y: 1}}}

	w.EnqueueJob("court-1", PriorityRoutine)
	urgent, _ := w.EnqueueJob("court-2", PriorityUrgent)

	w.StepFleet(0.01)

	if robot.JobID != urgent.ID {
		t.Fatalf("expected urgent job %s to win, got %q", urgent.ID, robot.JobID)
	}
}

func TestFleetCompletesJobAndRestoresCleanliness(t *testing.T) {
	w, robot, court := newFleetTestWorld(t)
	court.Cleanliness = 30
	w.planner = &stubPlanner{
		approach: []vec2{{X: robot.Pos.X + 0.5, Y: robot.Pos.Y}},
		cleaning: []vec2{{X: robot.Pos.X + 1, Y: robot.Pos.Y}, {X: robot.Pos.X + 1, Y: robot.Pos.Y + 1}},
	}

	job, _ := w.EnqueueJob("court-1", PriorityRoutine)
	startBattery := robot.Battery

	for i := 0; i < 500 && w.jobByID(job.ID) != nil; i++ {
		w.StepFleet(0.05)
	}

	if got := w.jobByID(job.ID); got != nil {
		t.Fatalf("expected job %s removed after completion", job.ID)
	}
	if court.Cleanliness != 100 {
		t.Fatalf("expected cleanliness restored to 100, got %f", court.Cleanliness)
	}
	if robot.Status != RobotIdle {
		t.Fatalf("expected robot idle after completion, got %s", robot.Status)
	}
	if robot.Battery >= startBattery-batteryPerJob {
		t.Fatalf("expected battery drained past the per-job cost, got %f from %f", robot.Battery, startBattery)
	}
	if robot.JobID != "" || robot.TargetCourt != "" {
		t.Fatalf("expected robot detached from the job, got job=%q court=%q", robot.JobID, robot.TargetCourt)
	}
}

func TestFleetLowBatteryReturnsAndCharges(t *testing.T) {
	w, robot, _ := newFleetTestWorld(t)
	robot.Battery = batteryLowWater - 5
	robot.Pos = vec2{X: w.depot.X + 10, Y: w.depot.Y}
	w.planner = &stubPlanner{depot: []vec2{w.depot}}

	w.StepFleet(0.01)
	if robot.Status != RobotReturning {
		t.Fatalf("expected Returning on low battery, got %s", robot.Status)
	}

	for i := 0; i < 500 && robot.Status == RobotReturning; i++ {
		w.StepFleet(0.05)
	}
	if robot.Status != RobotCharging {
		t.Fatalf("expected Charging at the depot, got %s", robot.Status)
	}

	for i := 0; i < 5000 && robot.Status == RobotCharging; i++ {
		w.StepFleet(0.05)
	}
	if robot.Status != RobotIdle {
		t.Fatalf("expected Idle after charging, got %s", robot.Status)
	}
	if robot.Battery < batteryHighWater {
		t.Fatalf("expected battery at or above the high-water mark, got %f", robot.Battery)
	}
}

func TestFleetChargesInPlaceWhenAlreadyAtDepot(t *testing.T) {
	w, robot, _ := newFleetTestWorld(t)
	robot.Battery = 5
	robot.Pos = w.depot

	w.StepFleet(0.01)

	if robot.Status != RobotCharging {
		t.Fatalf("expected immediate Charging at the depot, got %s", robot.Status)
	}
}

func TestAssignJobValidation(t *testing.T) {
	w, robot, court := newFleetTestWorld(t)
	w.planner = &stubPlanner{approach: []vec2{{X: 1, Y: 1}}}
	job, _ := w.EnqueueJob("court-1", PriorityRoutine)

	if w.AssignJob("robot-404", job.ID) {
		t.Fatalf("expected unknown robot to be rejected")
	}
	if w.AssignJob(robot.ID, "job-404") {
		t.Fatalf("expected unknown job to be rejected")
	}

	court.Status = MatchRally
	if w.AssignJob(robot.ID, job.ID) {
		t.Fatalf("expected occupied court to be rejected")
	}
	court.Status = MatchGameOver

	robot.Status = RobotCharging
	if w.AssignJob(robot.ID, job.ID) {
		t.Fatalf("expected busy robot to be rejected")
	}
	robot.Status = RobotIdle

	before := w.Version()
	if !w.AssignJob(robot.ID, job.ID) {
		t.Fatalf("expected valid assignment to succeed")
	}
	if robot.Status != RobotNavigating {
		t.Fatalf("expected Navigating after forced assignment, got %s", robot.Status)
	}
	if w.Version() != before+1 {
		t.Fatalf("expected one version bump on assignment")
	}

	// A second robot cannot steal an assigned job.
	if w.AssignJob(robot.ID, job.ID) {
		t.Fatalf("expected already-assigned job to be rejected")
	}
}

func TestStepFleetIgnoresInvalidDelta(t *testing.T) {
	w, _, _ := newFleetTestWorld(t)

	before := w.Version()
	w.StepFleet(0)
	w.StepFleet(-2)
	w.StepFleet(math.NaN())
	if w.Version() != before {
		t.Fatalf("expected invalid deltas to be rejected before any mutation")
	}
}

func TestStepFleetBumpsVersionOncePerBatch(t *testing.T) {
	cfg := FacilityConfig{Seed: "test", Courts: 1, CourtsPerRow: 1, Robots: 3}
	w := newWorld(cfg, nil)

	before := w.Version()
	w.StepFleet(0.05)
	if got := w.Version() - before; got != 1 {
		t.Fatalf("expected exactly one version bump for the batch, got %d", got)
	}
}
