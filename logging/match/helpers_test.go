package match

import (
	"context"
	"testing"

	"courtworks/server/logging"
)

func TestPointScoredEvent(t *testing.T) {
	var captured logging.Event
	pub := logging.PublisherFunc(func(ctx context.Context, event logging.Event) {
		captured = event
	})

	PointScored(context.Background(), pub, logging.EntityRef{ID: "court-3", Kind: logging.EntityKindCourt}, PointScoredPayload{
		Winner: 1,
		Score:  [2]int{4, 7},
		Rally:  12,
	})

	if captured.Type != EventPointScored {
		t.Fatalf("unexpected event type %q", captured.Type)
	}
	if captured.Category != logging.CategoryMatch {
		t.Fatalf("unexpected category %q", captured.Category)
	}
	payload, ok := captured.Payload.(PointScoredPayload)
	if !ok {
		t.Fatalf("unexpected payload %T", captured.Payload)
	}
	if payload.Winner != 1 || payload.Rally != 12 {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestGameOverEvent(t *testing.T) {
	var captured logging.Event
	pub := logging.PublisherFunc(func(ctx context.Context, event logging.Event) {
		captured = event
	})

	GameOver(context.Background(), pub, logging.EntityRef{ID: "court-1", Kind: logging.EntityKindCourt}, GameOverPayload{
		Winner: 0,
		Score:  [2]int{11, 9},
	})

	if captured.Type != EventGameOver {
		t.Fatalf("unexpected event type %q", captured.Type)
	}
	if captured.Actor.ID != "court-1" {
		t.Fatalf("unexpected actor %+v", captured.Actor)
	}
}

func TestHelpersTolerateNilPublisher(t *testing.T) {
	PointScored(context.Background(), nil, logging.EntityRef{}, PointScoredPayload{})
	GameOver(context.Background(), nil, logging.EntityRef{}, GameOverPayload{})
}
