package server

import "time"

// ProtocolVersion tags every message the server emits so clients can reject
// snapshots from an incompatible build.
const ProtocolVersion = 1

// FrameRate returns the target frames per second of the simulation loop.
func FrameRate() int {
	return frameRate
}

// HeartbeatInterval returns the cadence clients are expected to ping at.
func HeartbeatInterval() time.Duration {
	return heartbeatInterval
}

type joinResponse struct {
	Ver     int            `json:"ver"`
	ID      string         `json:"id"`
	Courts  []CourtMatch   `json:"courts"`
	Robots  []RobotAgent   `json:"robots"`
	Jobs    []CleaningJob  `json:"jobs,omitempty"`
	Config  FacilityConfig `json:"config"`
	Version uint64         `json:"version"`
}

type stateMessage struct {
	Ver        int           `json:"ver"`
	Type       string        `json:"type"`
	Courts     []CourtMatch  `json:"courts"`
	Robots     []RobotAgent  `json:"robots"`
	Jobs       []CleaningJob `json:"jobs,omitempty"`
	Version    uint64        `json:"version"`
	Frame      uint64        `json:"frame"`
	ServerTime int64         `json:"serverTime"`
}

type keyframeSnapshot struct {
	Ver     int            `json:"ver"`
	Type    string         `json:"type"`
	Courts  []CourtMatch   `json:"courts"`
	Robots  []RobotAgent   `json:"robots"`
	Jobs    []CleaningJob  `json:"jobs"`
	Config  FacilityConfig `json:"config"`
	Version uint64         `json:"version"`
	Frame   uint64         `json:"frame"`
}

type diagnosticsObserver struct {
	ID            string `json:"id"`
	LastHeartbeat int64  `json:"lastHeartbeat"`
	RTTMillis     int64  `json:"rttMillis"`
}

type diagnosticsResponse struct {
	Ver       int                   `json:"ver"`
	Frame     uint64                `json:"frame"`
	Version   uint64                `json:"version"`
	Paused    bool                  `json:"paused"`
	Telemetry TelemetrySnapshot     `json:"telemetry"`
	Observers []diagnosticsObserver `json:"observers"`
}
