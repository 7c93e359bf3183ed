package server

// StepFacility runs the coarse facility-level tick: courts soil over time,
// dirty free courts get cleaning jobs queued, and detail tiers are
// re-classified against the current viewpoint. It runs on a reduced cadence
// with accumulated time, so dt may span several frames.
func (w *World) StepFacility(dt float64) {
	if dt <= 0 || dt != dt {
		return
	}
	for _, id := range w.courtIDs {
		court := w.courts[id]

		rate := idleSoilRate
		if court.Status == MatchRally || court.Status == MatchServing {
			rate = occupiedSoilRate
		}
		court.Cleanliness -= rate * dt
		if court.Cleanliness < 0 {
			court.Cleanliness = 0
		}

		if court.Cleanliness < cleanlinessFloor && !w.courtOccupied(id) {
			priority := PriorityRoutine
			if court.Cleanliness < cleanlinessFloor/2 {
				priority = PriorityUrgent
			}
			w.EnqueueJob(id, priority)
		}

		dx := court.Origin.X - w.viewpoint.X
		dy := court.Origin.Y - w.viewpoint.Y
		court.Tier = ClassifyTier(dx*dx+dy*dy, w.tiersSq, court.Tier)
	}
	w.bumpVersion()
}
