// Package simulation emits the structured events for the frame scheduler.
package simulation

import (
	"context"
	"fmt"

	"courtworks/server/logging"
)

const (
	EventSubsystemFault logging.EventType = "simulation.subsystem_fault"
	EventPaused         logging.EventType = "simulation.paused"
	EventResumed        logging.EventType = "simulation.resumed"
)

type SubsystemFaultPayload struct {
	Subsystem string `json:"subsystem"`
	Reason    string `json:"reason"`
}

// SubsystemFault records a recovered panic inside one subsystem step.
func SubsystemFault(ctx context.Context, publisher logging.Publisher, subsystem string, recovered any) {
	if publisher == nil {
		return
	}
	publisher.Publish(ctx, logging.Event{
		Type:     EventSubsystemFault,
		Actor:    logging.EntityRef{ID: subsystem, Kind: logging.EntityKindScheduler},
		Severity: logging.SeverityError,
		Category: logging.CategorySystem,
		Payload: SubsystemFaultPayload{
			Subsystem: subsystem,
			Reason:    fmt.Sprint(recovered),
		},
	})
}

// Paused records the scheduler entering the paused state.
func Paused(ctx context.Context, publisher logging.Publisher) {
	if publisher == nil {
		return
	}
	publisher.Publish(ctx, logging.Event{
		Type:     EventPaused,
		Actor:    logging.EntityRef{Kind: logging.EntityKindScheduler},
		Severity: logging.SeverityInfo,
		Category: logging.CategorySystem,
	})
}

// Resumed records the scheduler leaving the paused state.
func Resumed(ctx context.Context, publisher logging.Publisher) {
	if publisher == nil {
		return
	}
	publisher.Publish(ctx, logging.Event{
		Type:     EventResumed,
		Actor:    logging.EntityRef{Kind: logging.EntityKindScheduler},
		Severity: logging.SeverityInfo,
		Category: logging.CategorySystem,
	})
}
