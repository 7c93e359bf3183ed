// Package match emits the structured events for court match scoring.
package match

import (
	"context"

	"courtworks/server/logging"
)

const (
	EventPointScored logging.EventType = "match.point_scored"
	EventGameOver    logging.EventType = "match.game_over"
)

type PointScoredPayload struct {
	Winner int    `json:"winner"`
	Score  [2]int `json:"score"`
	Rally  int    `json:"rally"`
}

type GameOverPayload struct {
	Winner int    `json:"winner"`
	Score  [2]int `json:"score"`
}

// PointScored records one rally resolving into a point or a side-out.
func PointScored(ctx context.Context, publisher logging.Publisher, court logging.EntityRef, payload PointScoredPayload) {
	if publisher == nil {
		return
	}
	publisher.Publish(ctx, logging.Event{
		Type:     EventPointScored,
		Actor:    court,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryMatch,
		Payload:  payload,
	})
}

// GameOver records a match reaching its winning score.
func GameOver(ctx context.Context, publisher logging.Publisher, court logging.EntityRef, payload GameOverPayload) {
	if publisher == nil {
		return
	}
	publisher.Publish(ctx, logging.Event{
		Type:     EventGameOver,
		Actor:    court,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryMatch,
		Payload:  payload,
	})
}
