package server

import (
	"context"
	"math"
	"sync/atomic"

	"courtworks/server/logging"
	loggingsim "courtworks/server/logging/simulation"
)

// Scheduler is the single cooperative entry point the host render loop
// invokes once per frame. It fans out to the subsystems in fixed order:
// telemetry, the match batch, then the facility tick and the fleet on
// reduced cadences, handing each skipped subsystem the sum of deltas since
// its last turn. It is not reentrant.
type Scheduler struct {
	world     *World
	telemetry *frameTelemetry
	publisher logging.Publisher

	frame            uint64
	facilityInterval uint64
	fleetInterval    uint64
	facilityDebt     float64
	fleetDebt        float64
	paused           atomic.Bool

	// Subsystem steps are indirected so faults can be injected under test.
	matchStep    func(float64)
	facilityStep func(float64)
	fleetStep    func(float64)
}

func newScheduler(world *World, tel *frameTelemetry, publisher logging.Publisher) *Scheduler {
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	cfg := world.config
	s := &Scheduler{
		world:            world,
		telemetry:        tel,
		publisher:        publisher,
		facilityInterval: uint64(cfg.FacilityInterval),
		fleetInterval:    uint64(cfg.FleetInterval),
	}
	s.matchStep = world.StepMatches
	s.facilityStep = world.StepFacility
	s.fleetStep = world.StepFleet
	return s
}

// Advance runs one frame. dt is the wall-clock delta in seconds; invalid
// deltas clamp to zero rather than erroring. While paused, nothing runs and
// no time debt accrues, so paused time is never retroactively charged to a
// skipped subsystem.
func (s *Scheduler) Advance(dt float64) {
	if math.IsNaN(dt) || dt < 0 {
		dt = 0
	}
	if s.paused.Load() {
		return
	}
	s.frame++

	if s.telemetry != nil {
		s.telemetry.RecordFrame(dt * 1000)
	}

	s.runStep("match", dt, s.matchStep)

	s.facilityDebt += dt
	if s.frame%s.facilityInterval == 0 {
		delivered := s.facilityDebt
		s.facilityDebt = 0
		s.runStep("facility", delivered, s.facilityStep)
	}

	s.fleetDebt += dt
	if s.frame%s.fleetInterval == 0 {
		delivered := s.fleetDebt
		s.fleetDebt = 0
		s.runStep("fleet", delivered, s.fleetStep)
	}
}

// runStep isolates one subsystem invocation. A panic inside a step becomes a
// recorded fault and a skip for this frame; the affected entities stay at
// their last good state and the loop keeps running.
func (s *Scheduler) runStep(name string, dt float64, step func(float64)) {
	defer func() {
		if r := recover(); r != nil {
			if s.telemetry != nil {
				s.telemetry.RecordFault()
			}
			loggingsim.SubsystemFault(context.Background(), s.publisher, name, r)
		}
	}()
	step(dt)
}

// Frame returns the monotonically increasing frame counter. It is never
// reset for the lifetime of the scheduler.
func (s *Scheduler) Frame() uint64 {
	return s.frame
}

// FacilityDebt returns the facility tick's pending accumulator.
func (s *Scheduler) FacilityDebt() float64 {
	return s.facilityDebt
}

// FleetDebt returns the fleet engine's pending accumulator.
func (s *Scheduler) FleetDebt() float64 {
	return s.fleetDebt
}

// Pause stops all subsystem invocations until Resume. Checked at the top of
// Advance.
func (s *Scheduler) Pause() {
	if s.paused.CompareAndSwap(false, true) {
		loggingsim.Paused(context.Background(), s.publisher)
	}
}

// Resume re-enables the scheduler after a pause.
func (s *Scheduler) Resume() {
	if s.paused.CompareAndSwap(true, false) {
		loggingsim.Resumed(context.Background(), s.publisher)
	}
}

// Paused reports whether the scheduler is currently paused.
func (s *Scheduler) Paused() bool {
	return s.paused.Load()
}
