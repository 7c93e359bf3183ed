package server

import "math"

// integrateBall applies gravity to the velocity and velocity to the
// position. One call consumes exactly one caller-supplied delta.
func integrateBall(b *Ball, dt float64) {
	b.Vel.Z += gravity * dt
	b.Pos.X += b.Vel.X * dt
	b.Pos.Y += b.Vel.Y * dt
	b.Pos.Z += b.Vel.Z * dt
}

// bounceBall reflects the ball off the floor plane, damping the vertical
// component and scrubbing horizontal speed. dead reports that the post-bounce
// vertical speed dropped below the rally-end threshold.
func bounceBall(b *Ball) (bounced, dead bool) {
	if b.Pos.Z > ballRadius || b.Vel.Z >= 0 {
		return false, false
	}
	b.Pos.Z = ballRadius
	b.Vel.Z = -b.Vel.Z * ballRestitution
	b.Vel.X *= bounceFriction
	b.Vel.Y *= bounceFriction
	return true, b.Vel.Z < rallyEndSpeed
}

// launchShot aims the ball at a court-local landing point, retags ownership,
// and repositions the receiving side. The arc is arcade ballistics: pick a
// flight time from horizontal distance, then solve the vertical launch speed
// that lands the ball at floor height in that time.
func (w *World) launchShot(c *courtState, hitter int, target vec2, shot ShotType) {
	b := &c.Ball
	dx := target.X - b.Pos.X
	dy := target.Y - b.Pos.Y
	distSq := dx*dx + dy*dy

	flight := minShotTime
	if distSq > 0 {
		flight = math.Sqrt(distSq) / shotSpeed
		if flight < minShotTime {
			flight = minShotTime
		}
	}
	if shot == ShotLob {
		flight *= 1.6
	}

	b.Vel.X = dx / flight
	b.Vel.Y = dy / flight
	b.Vel.Z = (ballRadius-b.Pos.Z)/flight - 0.5*gravity*flight
	b.Shot = shot
	b.LastHitBy = hitter

	retargetReceivers(c, hitter, target)
}

// retargetReceivers sends the nearest opposing slot toward the predicted
// landing point and everyone else back to their station.
func retargetReceivers(c *courtState, hitter int, landing vec2) {
	receiving := 1 - c.Players[hitter].Team
	best := -1
	bestSq := 0.0
	for i := range c.Players {
		slot := &c.Players[i]
		if slot.Team != receiving {
			slot.Target = slotHome(i)
			continue
		}
		dx := landing.X - slot.Pos.X
		dy := landing.Y - slot.Pos.Y
		dSq := dx*dx + dy*dy
		if best < 0 || dSq < bestSq {
			best = i
			bestSq = dSq
		}
		slot.Target = slotHome(i)
	}
	if best >= 0 {
		c.Players[best].Target = landing
	}
}
