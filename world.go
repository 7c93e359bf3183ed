package server

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"
	"sync/atomic"

	"courtworks/server/logging"
)

// World owns the authoritative facility state: the court and robot
// registries, the cleaning job queue, and the pathfinder. Entries are
// mutated in place; observers watch the version counter instead of diffing
// collections.
type World struct {
	courts map[string]*courtState
	robots map[string]*robotState
	jobs   []*CleaningJob

	courtIDs []string // stable iteration order for the registries
	robotIDs []string

	planner   Pathfinder
	depot     vec2
	config    FacilityConfig
	tiersSq   []float64
	viewpoint vec2

	rng       *rand.Rand
	seed      string
	publisher logging.Publisher
	nextJobID uint64

	version atomic.Uint64
}

// newDeterministicRNG derives a seeded RNG from the world seed plus a
// subsystem label, so subsystems draw independent reproducible streams.
func newDeterministicRNG(seed, label string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(seed))
	h.Write([]byte(":"))
	h.Write([]byte(label))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// newWorld lays out the configured courts on the facility floor, parks the
// fleet at the depot, and builds the default pathfinder over the layout.
func newWorld(cfg FacilityConfig, publisher logging.Publisher) *World {
	normalized := cfg.normalized()
	if publisher == nil {
		publisher = logging.NopPublisher()
	}

	w := &World{
		courts:    make(map[string]*courtState, normalized.Courts),
		robots:    make(map[string]*robotState, normalized.Robots),
		config:    normalized,
		tiersSq:   normalized.tierThresholdsSquared(),
		rng:       newDeterministicRNG(normalized.Seed, "world"),
		seed:      normalized.Seed,
		publisher: publisher,
	}

	layout := planFacilityLayout(normalized.Courts, normalized.CourtsPerRow)
	w.depot = layout.depot
	w.viewpoint = layout.depot

	for i := 0; i < normalized.Courts; i++ {
		id := fmt.Sprintf("court-%d", i+1)
		court := &courtState{CourtMatch: CourtMatch{
			ID:          id,
			Status:      MatchWaiting,
			ServingTeam: 0,
			ServerSlot:  1,
			Origin:      layout.placements[i].center,
			Cleanliness: 100,
		}}
		court.Ball.LastHitBy = -1
		resetSlots(court)
		w.courts[id] = court
		w.courtIDs = append(w.courtIDs, id)
	}

	for i := 0; i < normalized.Robots; i++ {
		id := fmt.Sprintf("robot-%d", i+1)
		w.robots[id] = &robotState{RobotAgent: RobotAgent{
			ID:      id,
			Status:  RobotIdle,
			Battery: 100,
			Pos:     layout.depot,
		}}
		w.robotIDs = append(w.robotIDs, id)
	}

	sort.Strings(w.courtIDs)
	sort.Strings(w.robotIDs)

	w.planner = newFacilityPlanner(layout)
	return w
}

// Version returns the snapshot counter. It is bumped exactly once per batch
// update regardless of how many entities changed.
func (w *World) Version() uint64 {
	return w.version.Load()
}

func (w *World) bumpVersion() {
	w.version.Add(1)
}

// Snapshot copies courts, robots, and jobs into broadcast-friendly structs.
func (w *World) Snapshot() ([]CourtMatch, []RobotAgent, []CleaningJob) {
	courts := make([]CourtMatch, 0, len(w.courts))
	for _, id := range w.courtIDs {
		courts = append(courts, w.courts[id].snapshot())
	}
	robots := make([]RobotAgent, 0, len(w.robots))
	for _, id := range w.robotIDs {
		robots = append(robots, w.robots[id].snapshot())
	}
	jobs := make([]CleaningJob, 0, len(w.jobs))
	for _, job := range w.jobs {
		jobs = append(jobs, *job)
	}
	return courts, robots, jobs
}

// Court returns the broadcast view of a single court.
func (w *World) Court(id string) (CourtMatch, bool) {
	court, ok := w.courts[id]
	if !ok {
		return CourtMatch{}, false
	}
	return court.snapshot(), true
}

// Robot returns the broadcast view of a single robot.
func (w *World) Robot(id string) (RobotAgent, bool) {
	robot, ok := w.robots[id]
	if !ok {
		return RobotAgent{}, false
	}
	return robot.snapshot(), true
}

// SetViewpoint moves the reference point used for detail-tier classification.
func (w *World) SetViewpoint(x, y float64) {
	w.viewpoint = vec2{X: x, Y: y}
}

// ResetMatch reinitializes a finished court so a new game can start. Courts
// mid-game and unknown ids are left untouched.
func (w *World) ResetMatch(id string) bool {
	court, ok := w.courts[id]
	if !ok {
		return false
	}
	if court.Status != MatchGameOver {
		return false
	}
	court.Status = MatchWaiting
	court.Score = [2]int{}
	court.ServingTeam = 0
	court.ServerSlot = 1
	court.Rally = 0
	court.clock = 0
	court.Ball = Ball{LastHitBy: -1}
	resetSlots(court)
	w.bumpVersion()
	return true
}

// courtOccupied reports whether a court is still hosting a live match. A
// court freed by the match engine is immediately eligible for cleaning jobs.
func (w *World) courtOccupied(id string) bool {
	court, ok := w.courts[id]
	if !ok {
		return false
	}
	return court.Status != MatchGameOver
}
