package server

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
)

const telemetryWindowSize = 240 // four seconds of frames at the target rate

// frameTelemetry records one scalar per frame (the wall-clock delta in
// milliseconds) and answers aggregate queries over a rolling window. The
// simulation core only ever calls RecordFrame; the query side serves the
// diagnostics endpoint.
type frameTelemetry struct {
	frames        atomic.Uint64
	droppedFrames atomic.Uint64
	faults        atomic.Uint64
	lastMillis    atomic.Uint64 // float64 bits

	mu     sync.Mutex
	window []float64
	next   int
	filled int
}

// TelemetrySnapshot is the diagnostics view of the frame telemetry.
type TelemetrySnapshot struct {
	Frames               uint64  `json:"frames"`
	DroppedFrames        uint64  `json:"droppedFrames"`
	Faults               uint64  `json:"faults"`
	LastFrameMillis      float64 `json:"lastFrameMillis"`
	RollingAverageMillis float64 `json:"rollingAverageMillis"`
	P95Millis            float64 `json:"p95Millis"`
}

func newFrameTelemetry() *frameTelemetry {
	return &frameTelemetry{window: make([]float64, telemetryWindowSize)}
}

// RecordFrame stores one frame delta. Negative or NaN input clamps to zero;
// a delta over the physics cap counts as a dropped frame.
func (t *frameTelemetry) RecordFrame(millis float64) {
	if math.IsNaN(millis) || millis < 0 {
		millis = 0
	}
	t.frames.Add(1)
	if millis > maxFrameDelta*1000 {
		t.droppedFrames.Add(1)
	}
	t.lastMillis.Store(math.Float64bits(millis))

	t.mu.Lock()
	t.window[t.next] = millis
	t.next = (t.next + 1) % len(t.window)
	if t.filled < len(t.window) {
		t.filled++
	}
	t.mu.Unlock()
}

func (t *frameTelemetry) RecordFault() {
	t.faults.Add(1)
}

// RollingAverage returns the mean frame delta over the window, in ms.
func (t *frameTelemetry) RollingAverage() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.filled == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < t.filled; i++ {
		sum += t.window[i]
	}
	return sum / float64(t.filled)
}

// Percentile returns the p-th percentile frame delta over the window, in ms.
// p is clamped into [0, 100].
func (t *frameTelemetry) Percentile(p float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.filled == 0 {
		return 0
	}
	if math.IsNaN(p) || p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	sorted := make([]float64, t.filled)
	copy(sorted, t.window[:t.filled])
	sort.Float64s(sorted)
	idx := int(math.Ceil(p/100*float64(t.filled))) - 1
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}

// DropCount returns the number of frames whose delta exceeded the cap.
func (t *frameTelemetry) DropCount() uint64 {
	return t.droppedFrames.Load()
}

func (t *frameTelemetry) Snapshot() TelemetrySnapshot {
	return TelemetrySnapshot{
		Frames:               t.frames.Load(),
		DroppedFrames:        t.droppedFrames.Load(),
		Faults:               t.faults.Load(),
		LastFrameMillis:      math.Float64frombits(t.lastMillis.Load()),
		RollingAverageMillis: t.RollingAverage(),
		P95Millis:            t.Percentile(95),
	}
}
