package server

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"courtworks/server/internal/telemetry"
	"courtworks/server/logging"
)

// Hub owns the world, the scheduler, and the observer registry. The hub
// mutex is the only lock guarding world state; the scheduler only ever runs
// inside RunSimulation while the mutex is held.
type Hub struct {
	mu        sync.Mutex
	world     *World
	scheduler *Scheduler
	telemetry *frameTelemetry
	logger    telemetry.Logger

	observers map[string]*observerSession
	nextID    atomic.Uint64

	lastBroadcast uint64
}

type observerSession struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex

	lastHeartbeat time.Time
	lastRTT       time.Duration
}

// ID returns the observer id the session was registered under.
func (s *observerSession) ID() string {
	return s.id
}

// WriteMessage serializes writes to the underlying connection and applies
// the write deadline.
func (s *observerSession) WriteMessage(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(messageType, data)
}

// NewHub builds the world from the config and wires the scheduler over it.
func NewHub(cfg FacilityConfig, publisher logging.Publisher, logger telemetry.Logger) *Hub {
	if logger == nil {
		logger = telemetry.NopLogger()
	}
	tel := newFrameTelemetry()
	world := newWorld(cfg, publisher)
	return &Hub{
		world:     world,
		scheduler: newScheduler(world, tel, publisher),
		telemetry: tel,
		logger:    logger,
		observers: make(map[string]*observerSession),
	}
}

// World exposes the underlying registries for tests and the HTTP layer.
func (h *Hub) World() *World {
	return h.world
}

// Join registers a new observer and returns the current facility snapshot.
func (h *Hub) Join() joinResponse {
	id := fmt.Sprintf("observer-%d", h.nextID.Add(1))

	h.mu.Lock()
	h.observers[id] = &observerSession{id: id, lastHeartbeat: time.Now()}
	courts, robots, jobs := h.world.Snapshot()
	version := h.world.Version()
	cfg := h.world.config
	h.mu.Unlock()

	return joinResponse{
		Ver:     ProtocolVersion,
		ID:      id,
		Courts:  courts,
		Robots:  robots,
		Jobs:    jobs,
		Config:  cfg,
		Version: version,
	}
}

// Subscribe attaches a WebSocket connection to an existing observer. A second
// subscription for the same observer replaces the first.
func (h *Hub) Subscribe(observerID string, conn *websocket.Conn) (*observerSession, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	session, ok := h.observers[observerID]
	if !ok {
		return nil, false
	}
	if session.conn != nil {
		session.conn.Close()
	}
	session.conn = conn
	session.lastHeartbeat = time.Now()
	return session, true
}

// Disconnect removes an observer and closes its connection if present.
func (h *Hub) Disconnect(observerID string) {
	h.mu.Lock()
	session, ok := h.observers[observerID]
	if ok {
		delete(h.observers, observerID)
	}
	h.mu.Unlock()

	if ok && session.conn != nil {
		session.conn.Close()
	}
}

// UpdateHeartbeat records the latest heartbeat and derives the RTT from the
// client-reported send time.
func (h *Hub) UpdateHeartbeat(observerID string, receivedAt time.Time, clientSent int64) (time.Duration, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	session, ok := h.observers[observerID]
	if !ok {
		return 0, false
	}
	session.lastHeartbeat = receivedAt

	if clientSent > 0 {
		clientTime := time.UnixMilli(clientSent)
		if clientTime.Before(receivedAt.Add(5 * time.Second)) {
			rtt := receivedAt.Sub(clientTime)
			if rtt < 0 {
				rtt = 0
			}
			session.lastRTT = rtt
		}
	}
	return session.lastRTT, true
}

// SetViewpoint moves the detail-tier reference point. Tiers re-classify on
// the next facility tick rather than immediately.
func (h *Hub) SetViewpoint(x, y float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.world.SetViewpoint(x, y)
}

// ResetMatch restarts a finished court match.
func (h *Hub) ResetMatch(courtID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.world.ResetMatch(courtID)
}

// EnqueueJob queues a cleaning job for a court.
func (h *Hub) EnqueueJob(courtID string, priority JobPriority) (CleaningJob, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.world.EnqueueJob(courtID, priority)
}

// AssignJob forces a specific robot onto a specific queued job.
func (h *Hub) AssignJob(robotID, jobID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.world.AssignJob(robotID, jobID)
}

// Pause halts the scheduler; the facility freezes in place.
func (h *Hub) Pause() {
	h.scheduler.Pause()
}

// Resume restarts a paused scheduler.
func (h *Hub) Resume() {
	h.scheduler.Resume()
}

// Paused reports the scheduler's pause state.
func (h *Hub) Paused() bool {
	return h.scheduler.Paused()
}

// Advance runs one scheduler frame under the hub lock. Exposed for tests and
// for hosts that drive their own loop instead of RunSimulation.
func (h *Hub) Advance(dt float64) {
	h.mu.Lock()
	h.scheduler.Advance(dt)
	h.mu.Unlock()
}

// RunSimulation drives the fixed-rate frame loop until the stop channel
// closes. Each tick advances the scheduler, drops observers whose heartbeats
// went stale, and broadcasts when the world version moved.
func (h *Hub) RunSimulation(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second / frameRate)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			if dt <= 0 {
				dt = 1.0 / float64(frameRate)
			}
			last = now

			h.mu.Lock()
			h.scheduler.Advance(dt)
			toClose := h.pruneObserversLocked(now)
			h.mu.Unlock()

			for _, session := range toClose {
				if session.conn != nil {
					session.conn.Close()
				}
				h.logger.Printf("disconnecting %s due to heartbeat timeout", session.id)
			}

			h.broadcastState(now)
		}
	}
}

// pruneObserversLocked removes observers whose last heartbeat is older than
// the disconnect window. Callers close the returned connections outside the
// lock.
func (h *Hub) pruneObserversLocked(now time.Time) []*observerSession {
	var stale []*observerSession
	for id, session := range h.observers {
		if now.Sub(session.lastHeartbeat) > disconnectAfter {
			stale = append(stale, session)
			delete(h.observers, id)
		}
	}
	return stale
}

// broadcastState sends the latest snapshot to every subscribed observer, but
// only when the world version has moved since the last broadcast.
func (h *Hub) broadcastState(now time.Time) {
	h.mu.Lock()
	version := h.world.Version()
	if version == h.lastBroadcast {
		h.mu.Unlock()
		return
	}
	h.lastBroadcast = version
	courts, robots, jobs := h.world.Snapshot()
	frame := h.scheduler.Frame()
	sessions := make([]*observerSession, 0, len(h.observers))
	for _, session := range h.observers {
		if session.conn != nil {
			sessions = append(sessions, session)
		}
	}
	h.mu.Unlock()

	if len(sessions) == 0 {
		return
	}

	msg := stateMessage{
		Ver:        ProtocolVersion,
		Type:       "state",
		Courts:     courts,
		Robots:     robots,
		Jobs:       jobs,
		Version:    version,
		Frame:      frame,
		ServerTime: now.UnixMilli(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Printf("failed to marshal state message: %v", err)
		return
	}

	for _, session := range sessions {
		if err := session.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Printf("failed to send update to %s: %v", session.id, err)
			h.Disconnect(session.id)
		}
	}
}

// DiagnosticsSnapshot collects frame telemetry plus per-observer heartbeat
// data for the diagnostics endpoint.
func (h *Hub) DiagnosticsSnapshot() diagnosticsResponse {
	h.mu.Lock()
	observers := make([]diagnosticsObserver, 0, len(h.observers))
	for _, session := range h.observers {
		observers = append(observers, diagnosticsObserver{
			ID:            session.id,
			LastHeartbeat: session.lastHeartbeat.UnixMilli(),
			RTTMillis:     session.lastRTT.Milliseconds(),
		})
	}
	frame := h.scheduler.Frame()
	version := h.world.Version()
	h.mu.Unlock()

	return diagnosticsResponse{
		Ver:       ProtocolVersion,
		Frame:     frame,
		Version:   version,
		Paused:    h.scheduler.Paused(),
		Telemetry: h.telemetry.Snapshot(),
		Observers: observers,
	}
}

// KeyframeSnapshot returns the full facility state for snapshot export.
func (h *Hub) KeyframeSnapshot() keyframeSnapshot {
	h.mu.Lock()
	courts, robots, jobs := h.world.Snapshot()
	version := h.world.Version()
	frame := h.scheduler.Frame()
	cfg := h.world.config
	h.mu.Unlock()

	return keyframeSnapshot{
		Ver:     ProtocolVersion,
		Type:    "keyframe",
		Courts:  courts,
		Robots:  robots,
		Jobs:    jobs,
		Config:  cfg,
		Version: version,
		Frame:   frame,
	}
}
