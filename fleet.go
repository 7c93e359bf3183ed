package server

import (
	"context"
	"math"

	"courtworks/server/logging"
	loggingfleet "courtworks/server/logging/fleet"
)

const depotArriveSq = 0.25

// StepFleet advances every robot by dt seconds. The fleet runs on a reduced
// cadence, so dt is usually several frames of accumulated time. Mutation is
// in place and the version counter is bumped once per batch.
func (w *World) StepFleet(dt float64) {
	if dt <= 0 || dt != dt {
		return
	}
	for _, id := range w.robotIDs {
		w.stepRobot(w.robots[id], dt)
	}
	w.bumpVersion()
}

func (w *World) stepRobot(r *robotState, dt float64) {
	switch r.Status {
	case RobotIdle:
		w.stepIdle(r)
	case RobotNavigating:
		w.stepNavigating(r, dt)
	case RobotCleaning:
		w.stepCleaning(r, dt)
	case RobotReturning:
		w.stepReturning(r, dt)
	case RobotCharging:
		w.stepCharging(r, dt)
	}
}

// stepIdle runs the assignment policy: low-battery robots head home, anyone
// else picks up the first workable job in the queue.
func (w *World) stepIdle(r *robotState) {
	if r.Battery < batteryLowWater {
		if w.atDepot(r) {
			r.Status = RobotCharging
			return
		}
		if path := w.planner.DepotPath(r.Pos); len(path) > 0 {
			w.setRobotPath(r, path)
			r.Status = RobotReturning
		}
		return
	}

	job := w.nextAssignableJob()
	if job == nil {
		return
	}
	path := w.planner.ApproachPath(r.Pos, job.CourtID)
	if len(path) == 0 {
		return
	}
	job.AssignedTo = r.ID
	r.JobID = job.ID
	r.TargetCourt = job.CourtID
	r.Progress = 0
	w.setRobotPath(r, path)
	r.Status = RobotNavigating

	loggingfleet.JobAssigned(context.Background(), w.publisher, logging.EntityRef{ID: r.ID, Kind: logging.EntityKindRobot}, loggingfleet.JobAssignedPayload{
		JobID:   job.ID,
		CourtID: job.CourtID,
	})
}

func (w *World) stepNavigating(r *robotState, dt float64) {
	exhausted := w.travel(r, dt)
	if !exhausted {
		return
	}
	path := w.planner.CleaningPath(r.TargetCourt)
	if len(path) == 0 {
		// Court vanished from the layout; abandon the job in place.
		w.abortJob(r)
		return
	}
	w.setRobotPath(r, path)
	r.Progress = 0
	r.Status = RobotCleaning
}

func (w *World) stepCleaning(r *robotState, dt float64) {
	budget := robotSpeed * dt
	pos, facing, remaining, traveled, exhausted := advanceAlongPath(r.Pos, r.Facing, r.path, budget)
	r.Pos = pos
	r.Facing = facing
	r.path = remaining
	w.drainBattery(r, traveled)
	if r.pathTotal > 0 {
		r.Progress = math.Min(100, r.Progress+100*traveled/r.pathTotal)
	}

	if court, ok := w.courts[r.TargetCourt]; ok && traveled > 0 {
		court.Cleanliness += (100 - court.Cleanliness) * (1 - math.Exp(-cleanRatePerMeter*traveled))
	}

	if !exhausted {
		return
	}

	if court, ok := w.courts[r.TargetCourt]; ok {
		court.Cleanliness = 100
	}
	jobID := r.JobID
	w.completeJob(jobID)
	r.Battery = math.Max(0, r.Battery-batteryPerJob)
	r.Progress = 100
	r.JobID = ""
	r.TargetCourt = ""
	r.path = nil
	r.pathTotal = 0

	loggingfleet.JobCompleted(context.Background(), w.publisher, logging.EntityRef{ID: r.ID, Kind: logging.EntityKindRobot}, loggingfleet.JobCompletedPayload{
		JobID:   jobID,
		Battery: r.Battery,
	})

	if r.Battery < batteryLowWater {
		if path := w.planner.DepotPath(r.Pos); len(path) > 0 {
			w.setRobotPath(r, path)
			r.Status = RobotReturning
			return
		}
	}
	r.Status = RobotIdle
}

func (w *World) stepReturning(r *robotState, dt float64) {
	if w.travel(r, dt) {
		r.path = nil
		r.pathTotal = 0
		r.Status = RobotCharging
	}
}

func (w *World) stepCharging(r *robotState, dt float64) {
	r.Battery = math.Min(100, r.Battery+batteryChargeRate*dt)
	if r.Battery >= batteryHighWater {
		r.Status = RobotIdle
		loggingfleet.RobotCharged(context.Background(), w.publisher, logging.EntityRef{ID: r.ID, Kind: logging.EntityKindRobot}, loggingfleet.RobotChargedPayload{
			Battery: r.Battery,
		})
	}
}

// travel consumes the robot's current path by one tick's distance budget and
// drains battery for the distance actually covered.
func (w *World) travel(r *robotState, dt float64) bool {
	budget := robotSpeed * dt
	pos, facing, remaining, traveled, exhausted := advanceAlongPath(r.Pos, r.Facing, r.path, budget)
	r.Pos = pos
	r.Facing = facing
	r.path = remaining
	w.drainBattery(r, traveled)
	return exhausted
}

func (w *World) drainBattery(r *robotState, traveled float64) {
	if traveled <= 0 {
		return
	}
	r.Battery = math.Max(0, r.Battery-traveled*batteryDrainPerMeter)
}

func (w *World) setRobotPath(r *robotState, path []vec2) {
	r.path = path
	r.pathTotal = pathLength(r.Pos, path)
}

func (w *World) abortJob(r *robotState) {
	if r.JobID != "" {
		w.releaseJob(r.JobID)
	}
	r.JobID = ""
	r.TargetCourt = ""
	r.path = nil
	r.pathTotal = 0
	r.Progress = 0
	r.Status = RobotIdle
}

func (w *World) atDepot(r *robotState) bool {
	dx := r.Pos.X - w.depot.X
	dy := r.Pos.Y - w.depot.Y
	return dx*dx+dy*dy <= depotArriveSq
}

func pathLength(from vec2, path []vec2) float64 {
	total := 0.0
	prev := from
	for _, wp := range path {
		dx := wp.X - prev.X
		dy := wp.Y - prev.Y
		total += math.Sqrt(dx*dx + dy*dy)
		prev = wp
	}
	return total
}

// AssignJob forces a specific idle robot onto a specific queued job. Unknown
// ids or a robot outside Idle leave every registry untouched.
func (w *World) AssignJob(robotID, jobID string) bool {
	r, ok := w.robots[robotID]
	if !ok {
		return false
	}
	if r.Status != RobotIdle {
		return false
	}
	job := w.jobByID(jobID)
	if job == nil || job.AssignedTo != "" {
		return false
	}
	if w.courtOccupied(job.CourtID) {
		return false
	}
	path := w.planner.ApproachPath(r.Pos, job.CourtID)
	if len(path) == 0 {
		return false
	}
	job.AssignedTo = r.ID
	r.JobID = job.ID
	r.TargetCourt = job.CourtID
	r.Progress = 0
	w.setRobotPath(r, path)
	r.Status = RobotNavigating
	w.bumpVersion()
	return true
}
