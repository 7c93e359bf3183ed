package server

import (
	"fmt"
	"time"
)

// EnqueueJob appends a cleaning job for a court unless one is already
// pending for it. Unknown courts are rejected.
func (w *World) EnqueueJob(courtID string, priority JobPriority) (CleaningJob, bool) {
	if _, ok := w.courts[courtID]; !ok {
		return CleaningJob{}, false
	}
	for _, job := range w.jobs {
		if job.CourtID == courtID {
			return *job, false
		}
	}
	if priority == "" {
		priority = PriorityRoutine
	}
	w.nextJobID++
	job := &CleaningJob{
		ID:        fmt.Sprintf("job-%d", w.nextJobID),
		CourtID:   courtID,
		Priority:  priority,
		CreatedAt: time.Now(),
	}
	w.jobs = append(w.jobs, job)
	return *job, true
}

// nextAssignableJob scans the queue FIFO for an unassigned job whose court is
// not currently occupied. Urgent jobs win ties within the scan.
func (w *World) nextAssignableJob() *CleaningJob {
	var fallback *CleaningJob
	for _, job := range w.jobs {
		if job.AssignedTo != "" {
			continue
		}
		if w.courtOccupied(job.CourtID) {
			continue
		}
		if job.Priority == PriorityUrgent {
			return job
		}
		if fallback == nil {
			fallback = job
		}
	}
	return fallback
}

// completeJob removes a job from the queue. Unknown ids leave the queue
// unchanged.
func (w *World) completeJob(id string) {
	for i, job := range w.jobs {
		if job.ID == id {
			w.jobs = append(w.jobs[:i], w.jobs[i+1:]...)
			return
		}
	}
}

// releaseJob detaches a job from its robot so it can be reassigned. A no-op
// for unknown ids.
func (w *World) releaseJob(id string) {
	for _, job := range w.jobs {
		if job.ID == id {
			job.AssignedTo = ""
			return
		}
	}
}

func (w *World) jobByID(id string) *CleaningJob {
	for _, job := range w.jobs {
		if job.ID == id {
			return job
		}
	}
	return nil
}
