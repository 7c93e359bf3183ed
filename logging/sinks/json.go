package sinks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"courtworks/server/logging"
)

// JSONSink appends newline-delimited JSON events to a file, batching writes
// to cut fsync pressure. Events are flushed when the batch fills or when the
// flush interval elapses, whichever comes first.
type JSONSink struct {
	mu       sync.Mutex
	file     *os.File
	pending  []logging.Event
	maxBatch int
	interval time.Duration
	timer    *time.Timer
	closed   bool
}

func NewJSONSink(cfg logging.JSONConfig) (*JSONSink, error) {
	if cfg.FilePath == "" {
		return nil, fmt.Errorf("json sink requires a file path")
	}
	file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open json sink file: %w", err)
	}
	maxBatch := cfg.MaxBatch
	if maxBatch <= 0 {
		maxBatch = 32
	}
	interval := cfg.FlushInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &JSONSink{
		file:     file,
		pending:  make([]logging.Event, 0, maxBatch),
		maxBatch: maxBatch,
		interval: interval,
	}, nil
}

func (s *JSONSink) Write(event logging.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("json sink closed")
	}
	s.pending = append(s.pending, event)
	if len(s.pending) >= s.maxBatch {
		return s.flushLocked()
	}
	if s.timer == nil {
		s.timer = time.AfterFunc(s.interval, s.flushTimer)
	}
	return nil
}

func (s *JSONSink) flushTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer = nil
	if s.closed {
		return
	}
	_ = s.flushLocked()
}

func (s *JSONSink) flushLocked() error {
	if len(s.pending) == 0 {
		return nil
	}
	var firstErr error
	for _, event := range s.pending {
		data, err := json.Marshal(event)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		data = append(data, '\n')
		if _, err := s.file.Write(data); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.pending = s.pending[:0]
	return firstErr
}

func (s *JSONSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	flushErr := s.flushLocked()
	closeErr := s.file.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
