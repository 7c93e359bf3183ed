package server

import (
	"context"

	"courtworks/server/logging"
	loggingmatch "courtworks/server/logging/match"
)

// StepMatches advances every active court by dt seconds. The delta is capped
// so one slow host frame cannot cause an unstable physics jump. All mutation
// is in place and the version counter is bumped exactly once per batch.
func (w *World) StepMatches(dt float64) {
	if dt <= 0 || dt != dt {
		return
	}
	if dt > maxFrameDelta {
		dt = maxFrameDelta
	}
	for _, id := range w.courtIDs {
		w.stepCourt(w.courts[id], dt)
	}
	w.bumpVersion()
}

func (w *World) stepCourt(c *courtState, dt float64) {
	switch c.Status {
	case MatchWaiting:
		c.clock += dt
		if c.clock >= waitingDwell {
			w.beginServe(c)
		}
	case MatchServing:
		w.stepServe(c, dt)
	case MatchRally:
		w.stepRally(c, dt)
	case MatchPointScored:
		c.clock += dt
		if c.clock >= pointDwell {
			c.Status = MatchWaiting
			c.clock = 0
			c.Ball.Visible = false
			for i := range c.Players {
				c.Players[i].Swing = SwingNone
				c.Players[i].SwingPhase = 0
			}
		}
	case MatchGameOver:
		// Terminal until the match is reinitialized externally.
	}
}

func servingSlot(c *courtState) int {
	return c.ServingTeam*2 + (c.ServerSlot - 1)
}

// beginServe parks the ball on the server's paddle and starts the windup.
func (w *World) beginServe(c *courtState) {
	c.Status = MatchServing
	c.clock = 0
	server := servingSlot(c)
	slot := &c.Players[server]
	slot.Swing = SwingServe
	slot.SwingPhase = 0
	c.Ball.Pos = vec3{X: slot.Pos.X, Y: slot.Pos.Y, Z: serveHeight}
	c.Ball.Vel = vec3{}
	c.Ball.Visible = true
	c.Ball.Shot = ShotNone
	c.Ball.LastHitBy = -1
}

// stepServe advances the server's windup; when the swing completes the ball
// is launched at a randomized spot in the receiving half and the rally opens.
func (w *World) stepServe(c *courtState, dt float64) {
	server := servingSlot(c)
	slot := &c.Players[server]
	slot.SwingPhase += dt / swingDuration
	if slot.SwingPhase < 1 {
		return
	}
	slot.SwingPhase = 0
	slot.Swing = SwingNone

	target := w.randomCourtTarget(1 - c.ServingTeam)
	w.launchShot(c, server, target, ShotServe)
	c.Status = MatchRally
	c.clock = 0
	c.Rally = 1
}

// stepRally runs one integration step of live play: ball flight, the bounce
// and rally-end check, return-hit predicates, then player slot movement.
func (w *World) stepRally(c *courtState, dt float64) {
	integrateBall(&c.Ball, dt)

	if bounced, dead := bounceBall(&c.Ball); bounced && dead {
		// Travel direction at rest decides the rally. A ball dying while
		// moving toward team B's side was put there by team A.
		winner := 1
		if c.Ball.Vel.X >= 0 {
			winner = 0
		}
		w.applyPoint(c, winner)
		return
	}

	if w.tryReturns(c) {
		return
	}

	advanceSlots(c, dt)
}

// tryReturns tests every non-last-hitter slot against the ball. The first
// slot in reach either misses (ending the rally) or sends a return shot.
// Reports whether the rally ended.
func (w *World) tryReturns(c *courtState) bool {
	for i := range c.Players {
		if i == c.Ball.LastHitBy {
			continue
		}
		slot := &c.Players[i]
		dx := c.Ball.Pos.X - slot.Pos.X
		dy := c.Ball.Pos.Y - slot.Pos.Y
		if dx*dx+dy*dy > hitRadiusSq {
			continue
		}
		if c.Ball.Pos.Z > hitHeightBand {
			continue
		}

		if w.rng.Float64() < returnMissChance {
			w.applyPoint(c, 1-slot.Team)
			return true
		}

		shot := ShotDrive
		if w.rng.Float64() < 0.25 {
			shot = ShotLob
		}
		target := w.randomCourtTarget(1 - slot.Team)
		w.launchShot(c, i, target, shot)
		slot.Swing = SwingForehand
		slot.SwingPhase = 0
		c.Rally++
		return false
	}
	return false
}

// applyPoint applies the scoring rule. Only a rally can produce a point, and
// only the serving team can score; the receiving team earns a side-out.
func (w *World) applyPoint(c *courtState, winner int) {
	if c.Status != MatchRally {
		return
	}
	c.clock = 0
	c.Ball.Vel = vec3{}

	if winner == c.ServingTeam {
		c.Score[winner]++
		c.ServerSlot = 3 - c.ServerSlot
		if c.Score[winner] >= winningScore && c.Score[winner]-c.Score[1-winner] >= winMargin {
			c.Status = MatchGameOver
			c.Ball.Visible = false
			for i := range c.Players {
				c.Players[i].Swing = SwingNone
				c.Players[i].SwingPhase = 0
			}
			loggingmatch.GameOver(context.Background(), w.publisher, logging.EntityRef{ID: c.ID, Kind: logging.EntityKindCourt}, loggingmatch.GameOverPayload{
				Winner: winner,
				Score:  c.Score,
			})
			return
		}
	} else {
		if c.ServerSlot == 2 {
			c.ServingTeam = winner
			c.ServerSlot = 1
		} else {
			c.ServerSlot = 2
		}
	}

	c.Status = MatchPointScored
	loggingmatch.PointScored(context.Background(), w.publisher, logging.EntityRef{ID: c.ID, Kind: logging.EntityKindCourt}, loggingmatch.PointScoredPayload{
		Winner: winner,
		Score:  c.Score,
		Rally:  c.Rally,
	})
}

// randomCourtTarget picks a landing point inside the given team's half,
// inset from the lines.
func (w *World) randomCourtTarget(team int) vec2 {
	side := -1.0
	if team == 1 {
		side = 1.0
	}
	minX := targetMargin
	maxX := courtLength/2 - targetMargin
	x := side * (minX + w.rng.Float64()*(maxX-minX))
	halfW := courtWidth/2 - targetMargin
	y := -halfW + w.rng.Float64()*2*halfW
	return vec2{X: x, Y: y}
}
