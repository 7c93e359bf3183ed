package fleet

import (
	"context"
	"testing"

	"courtworks/server/logging"
)

func TestJobAssignedEventTargetsJob(t *testing.T) {
	var captured logging.Event
	pub := logging.PublisherFunc(func(ctx context.Context, event logging.Event) {
		captured = event
	})

	JobAssigned(context.Background(), pub, logging.EntityRef{ID: "robot-2", Kind: logging.EntityKindRobot}, JobAssignedPayload{
		JobID:   "job-5",
		CourtID: "court-3",
	})

	if captured.Type != EventJobAssigned {
		t.Fatalf("unexpected event type %q", captured.Type)
	}
	if captured.Category != logging.CategoryFleet {
		t.Fatalf("unexpected category %q", captured.Category)
	}
	if len(captured.Targets) != 1 || captured.Targets[0].ID != "job-5" {
		t.Fatalf("expected the job targeted, got %v", captured.Targets)
	}
}

func TestJobCompletedEvent(t *testing.T) {
	var captured logging.Event
	pub := logging.PublisherFunc(func(ctx context.Context, event logging.Event) {
		captured = event
	})

	JobCompleted(context.Background(), pub, logging.EntityRef{ID: "robot-1", Kind: logging.EntityKindRobot}, JobCompletedPayload{
		JobID:   "job-9",
		Battery: 61.5,
	})

	payload, ok := captured.Payload.(JobCompletedPayload)
	if !ok {
		t.Fatalf("unexpected payload %T", captured.Payload)
	}
	if payload.Battery != 61.5 {
		t.Fatalf("unexpected battery %f", payload.Battery)
	}
}

func TestHelpersTolerateNilPublisher(t *testing.T) {
	JobAssigned(context.Background(), nil, logging.EntityRef{}, JobAssignedPayload{})
	JobCompleted(context.Background(), nil, logging.EntityRef{}, JobCompletedPayload{})
	RobotCharged(context.Background(), nil, logging.EntityRef{}, RobotChargedPayload{})
}
