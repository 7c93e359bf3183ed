// Package fleet emits the structured events for the cleaning robot fleet.
package fleet

import (
	"context"

	"courtworks/server/logging"
)

const (
	EventJobAssigned  logging.EventType = "fleet.job_assigned"
	EventJobCompleted logging.EventType = "fleet.job_completed"
	EventRobotCharged logging.EventType = "fleet.robot_charged"
)

type JobAssignedPayload struct {
	JobID   string `json:"jobId"`
	CourtID string `json:"courtId"`
}

type JobCompletedPayload struct {
	JobID   string  `json:"jobId"`
	Battery float64 `json:"battery"`
}

type RobotChargedPayload struct {
	Battery float64 `json:"battery"`
}

// JobAssigned records a robot accepting a cleaning job.
func JobAssigned(ctx context.Context, publisher logging.Publisher, robot logging.EntityRef, payload JobAssignedPayload) {
	if publisher == nil {
		return
	}
	publisher.Publish(ctx, logging.Event{
		Type:     EventJobAssigned,
		Actor:    robot,
		Targets:  []logging.EntityRef{{ID: payload.JobID, Kind: logging.EntityKindJob}},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryFleet,
		Payload:  payload,
	})
}

// JobCompleted records a robot finishing its sweep of a court.
func JobCompleted(ctx context.Context, publisher logging.Publisher, robot logging.EntityRef, payload JobCompletedPayload) {
	if publisher == nil {
		return
	}
	publisher.Publish(ctx, logging.Event{
		Type:     EventJobCompleted,
		Actor:    robot,
		Targets:  []logging.EntityRef{{ID: payload.JobID, Kind: logging.EntityKindJob}},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryFleet,
		Payload:  payload,
	})
}

// RobotCharged records a robot's battery reaching the high-water mark.
func RobotCharged(ctx context.Context, publisher logging.Publisher, robot logging.EntityRef, payload RobotChargedPayload) {
	if publisher == nil {
		return
	}
	publisher.Publish(ctx, logging.Event{
		Type:     EventRobotCharged,
		Actor:    robot,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryFleet,
		Payload:  payload,
	})
}
