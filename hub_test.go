package server

import (
	"testing"
	"time"

	"courtworks/server/logging"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	cfg := FacilityConfig{Seed: "test", Courts: 2, CourtsPerRow: 2, Robots: 1}
	return NewHub(cfg, logging.NopPublisher(), nil)
}

func TestHubJoinReturnsSnapshot(t *testing.T) {
	hub := newTestHub(t)

	join := hub.Join()
	if join.ID != "observer-1" {
		t.Fatalf("expected observer-1, got %s", join.ID)
	}
	if join.Ver != ProtocolVersion {
		t.Fatalf("expected protocol version %d, got %d", ProtocolVersion, join.Ver)
	}
	if len(join.Courts) != 2 || len(join.Robots) != 1 {
		t.Fatalf("unexpected snapshot sizes: %d courts, %d robots", len(join.Courts), len(join.Robots))
	}

	second := hub.Join()
	if second.ID != "observer-2" {
		t.Fatalf("expected observer-2, got %s", second.ID)
	}
}

func TestHubHeartbeatTracking(t *testing.T) {
	hub := newTestHub(t)
	join := hub.Join()

	now := time.Now()
	rtt, ok := hub.UpdateHeartbeat(join.ID, now, now.Add(-40*time.Millisecond).UnixMilli())
	if !ok {
		t.Fatalf("expected heartbeat accepted")
	}
	if rtt < 30*time.Millisecond || rtt > 50*time.Millisecond {
		t.Fatalf("expected rtt near 40ms, got %v", rtt)
	}

	if _, ok := hub.UpdateHeartbeat("observer-404", now, 0); ok {
		t.Fatalf("expected unknown observer rejected")
	}
}

func TestHubPrunesStaleObservers(t *testing.T) {
	hub := newTestHub(t)
	join := hub.Join()

	hub.mu.Lock()
	stale := hub.pruneObserversLocked(time.Now().Add(disconnectAfter + time.Second))
	hub.mu.Unlock()

	if len(stale) != 1 || stale[0].id != join.ID {
		t.Fatalf("expected %s pruned, got %v", join.ID, stale)
	}
	if _, ok := hub.UpdateHeartbeat(join.ID, time.Now(), 0); ok {
		t.Fatalf("expected pruned observer gone")
	}
}

func TestHubAdvanceDrivesSimulation(t *testing.T) {
	hub := newTestHub(t)

	before := hub.World().Version()
	hub.Advance(1.0 / 60)
	if hub.World().Version() == before {
		t.Fatalf("expected a frame to move the world version")
	}

	hub.Pause()
	paused := hub.World().Version()
	hub.Advance(1.0 / 60)
	if hub.World().Version() != paused {
		t.Fatalf("expected no mutation while paused")
	}
	if !hub.Paused() {
		t.Fatalf("expected paused state reported")
	}
	hub.Resume()
	hub.Advance(1.0 / 60)
	if hub.World().Version() == paused {
		t.Fatalf("expected mutation after resume")
	}
}

func TestHubBroadcastGatesOnVersion(t *testing.T) {
	hub := newTestHub(t)

	hub.Advance(1.0 / 60)
	hub.broadcastState(time.Now())
	sent := hub.lastBroadcast
	if sent != hub.World().Version() {
		t.Fatalf("expected broadcast to track the world version")
	}

	// Without a new frame the version is unchanged and the broadcast is
	// skipped; the gate value stays put.
	hub.broadcastState(time.Now())
	if hub.lastBroadcast != sent {
		t.Fatalf("expected no re-broadcast for an unchanged version")
	}
}

func TestHubDiagnosticsSnapshot(t *testing.T) {
	hub := newTestHub(t)
	hub.Join()
	hub.Advance(1.0 / 60)
	hub.Advance(1.0 / 60)

	diag := hub.DiagnosticsSnapshot()
	if diag.Frame != 2 {
		t.Fatalf("expected frame 2, got %d", diag.Frame)
	}
	if diag.Telemetry.Frames != 2 {
		t.Fatalf("expected 2 telemetry frames, got %d", diag.Telemetry.Frames)
	}
	if len(diag.Observers) != 1 {
		t.Fatalf("expected one observer, got %d", len(diag.Observers))
	}
	if diag.Paused {
		t.Fatalf("expected running state")
	}
}

func TestHubKeyframeSnapshot(t *testing.T) {
	hub := newTestHub(t)
	hub.Advance(1.0 / 60)

	frame := hub.KeyframeSnapshot()
	if frame.Type != "keyframe" {
		t.Fatalf("expected keyframe type, got %q", frame.Type)
	}
	if len(frame.Courts) != 2 || len(frame.Robots) != 1 {
		t.Fatalf("unexpected snapshot sizes")
	}
	if frame.Version != hub.World().Version() {
		t.Fatalf("expected snapshot pinned to the current version")
	}
	if frame.Config.Courts != 2 {
		t.Fatalf("expected config echoed in the keyframe")
	}
}

func TestHubResetAndJobPassThrough(t *testing.T) {
	hub := newTestHub(t)
	world := hub.World()
	world.courts["court-1"].Status = MatchGameOver

	if !hub.ResetMatch("court-1") {
		t.Fatalf("expected reset pass-through to succeed")
	}

	world.courts["court-1"].Status = MatchGameOver
	job, ok := hub.EnqueueJob("court-1", PriorityUrgent)
	if !ok {
		t.Fatalf("expected enqueue pass-through to succeed")
	}
	if !hub.AssignJob("robot-1", job.ID) {
		t.Fatalf("expected assign pass-through to succeed")
	}
}
