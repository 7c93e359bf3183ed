package server

import "time"

type vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// MatchStatus enumerates the court state machine phases.
type MatchStatus string

const (
	MatchWaiting     MatchStatus = "waiting"
	MatchServing     MatchStatus = "serving"
	MatchRally       MatchStatus = "rally"
	MatchPointScored MatchStatus = "pointScored"
	MatchGameOver    MatchStatus = "gameOver"
)

// ShotType tags the stroke that last touched the ball.
type ShotType string

const (
	ShotNone  ShotType = ""
	ShotServe ShotType = "serve"
	ShotDrive ShotType = "drive"
	ShotLob   ShotType = "lob"
)

// SwingType tags the animation a player slot is currently playing.
type SwingType string

const (
	SwingNone     SwingType = ""
	SwingServe    SwingType = "serve"
	SwingForehand SwingType = "forehand"
)

// RobotStatus enumerates the fleet state machine phases.
type RobotStatus string

const (
	RobotIdle       RobotStatus = "idle"
	RobotNavigating RobotStatus = "navigating"
	RobotCleaning   RobotStatus = "cleaning"
	RobotReturning  RobotStatus = "returning"
	RobotCharging   RobotStatus = "charging"
)

// JobPriority tags a cleaning job for the assignment policy.
type JobPriority string

const (
	PriorityRoutine JobPriority = "routine"
	PriorityUrgent  JobPriority = "urgent"
)

// Ball is the broadcast view of a court's ball. Positions are court-local.
type Ball struct {
	Pos       vec3     `json:"pos"`
	Vel       vec3     `json:"vel"`
	Visible   bool     `json:"visible"`
	LastHitBy int      `json:"lastHitBy"` // slot index, -1 when untouched
	Shot      ShotType `json:"shot,omitempty"`
}

// PlayerSlot is the broadcast view of one of a court's four players.
// Slots 0-1 are team A, slots 2-3 are team B.
type PlayerSlot struct {
	Pos        vec2      `json:"pos"`
	Target     vec2      `json:"target"`
	Facing     float64   `json:"facing"`
	SwingPhase float64   `json:"swingPhase"`
	Swing      SwingType `json:"swing,omitempty"`
	Team       int       `json:"team"`
	Index      int       `json:"index"`
}

// CourtMatch is the broadcast view of one court. Origin places the court's
// local frame on the facility floor so renderers can offset positions.
type CourtMatch struct {
	ID          string        `json:"id"`
	Status      MatchStatus   `json:"status"`
	Score       [2]int        `json:"score"`
	ServingTeam int           `json:"servingTeam"`
	ServerSlot  int           `json:"serverSlot"` // 1 or 2
	Rally       int           `json:"rally"`
	Ball        Ball          `json:"ball"`
	Players     [4]PlayerSlot `json:"players"`
	Origin      vec2          `json:"origin"`
	Cleanliness float64       `json:"cleanliness"`
	Tier        int           `json:"tier"`
}

// RobotAgent is the broadcast view of one cleaning robot.
type RobotAgent struct {
	ID          string      `json:"id"`
	Status      RobotStatus `json:"status"`
	Battery     float64     `json:"battery"`
	Pos         vec2        `json:"pos"`
	Facing      float64     `json:"facing"`
	TargetCourt string      `json:"targetCourt,omitempty"`
	JobID       string      `json:"jobId,omitempty"`
	Progress    float64     `json:"progress"`
}

// CleaningJob is a queued request to sweep a court.
type CleaningJob struct {
	ID         string      `json:"id"`
	CourtID    string      `json:"courtId"`
	Priority   JobPriority `json:"priority"`
	CreatedAt  time.Time   `json:"createdAt"`
	AssignedTo string      `json:"assignedTo,omitempty"`
}

// courtState is the in-place mutated registry entry for one court.
type courtState struct {
	CourtMatch
	clock float64 // seconds spent in the current status
}

// robotState is the in-place mutated registry entry for one robot.
type robotState struct {
	RobotAgent
	path      []vec2
	pathTotal float64
}

func (c *courtState) snapshot() CourtMatch {
	return c.CourtMatch
}

func (r *robotState) snapshot() RobotAgent {
	return r.RobotAgent
}
