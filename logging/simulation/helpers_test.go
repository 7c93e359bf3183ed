package simulation

import (
	"context"
	"testing"

	"courtworks/server/logging"
)

func TestSubsystemFaultFormatsRecoveredValue(t *testing.T) {
	var captured logging.Event
	pub := logging.PublisherFunc(func(ctx context.Context, event logging.Event) {
		captured = event
	})

	SubsystemFault(context.Background(), pub, "fleet", "index out of range")

	if captured.Type != EventSubsystemFault {
		t.Fatalf("unexpected event type %q", captured.Type)
	}
	if captured.Severity != logging.SeverityError {
		t.Fatalf("expected error severity, got %d", captured.Severity)
	}
	payload, ok := captured.Payload.(SubsystemFaultPayload)
	if !ok {
		t.Fatalf("unexpected payload %T", captured.Payload)
	}
	if payload.Subsystem != "fleet" || payload.Reason != "index out of range" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestPauseResumeEvents(t *testing.T) {
	var events []logging.Event
	pub := logging.PublisherFunc(func(ctx context.Context, event logging.Event) {
		events = append(events, event)
	})

	Paused(context.Background(), pub)
	Resumed(context.Background(), pub)

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != EventPaused || events[1].Type != EventResumed {
		t.Fatalf("unexpected sequence %v, %v", events[0].Type, events[1].Type)
	}
}

func TestHelpersTolerateNilPublisher(t *testing.T) {
	SubsystemFault(context.Background(), nil, "match", "boom")
	Paused(context.Background(), nil)
	Resumed(context.Background(), nil)
}
