package server

import "math"

// slotHome returns the neutral station for a slot in court-local coordinates.
// Slots 0-1 defend the negative-x half, slots 2-3 the positive-x half.
func slotHome(index int) vec2 {
	side := -1.0
	if index >= 2 {
		side = 1.0
	}
	y := -slotHomeHalfWidth
	if index%2 == 1 {
		y = slotHomeHalfWidth
	}
	return vec2{X: side * slotHomeFromNet, Y: y}
}

func resetSlots(c *courtState) {
	for i := range c.Players {
		home := slotHome(i)
		c.Players[i] = PlayerSlot{
			Pos:    home,
			Target: home,
			Team:   i / 2,
			Index:  i,
		}
	}
}

// advanceSlots moves every non-swinging slot toward its target, clamped so a
// slot cannot overshoot within one step. The square root is only taken once
// the squared distance clears the stopping threshold.
func advanceSlots(c *courtState, dt float64) {
	for i := range c.Players {
		slot := &c.Players[i]
		if slot.Swing != SwingNone {
			slot.SwingPhase += dt / swingDuration
			if slot.SwingPhase >= 1 {
				slot.SwingPhase = 0
				slot.Swing = SwingNone
			}
			continue
		}

		dx := slot.Target.X - slot.Pos.X
		dy := slot.Target.Y - slot.Pos.Y
		distSq := dx*dx + dy*dy
		if distSq <= playerStopDistSq {
			continue
		}
		dist := math.Sqrt(distSq)
		step := playerMoveSpeed * dt
		if step >= dist {
			slot.Pos = slot.Target
		} else {
			slot.Pos.X += dx / dist * step
			slot.Pos.Y += dy / dist * step
		}
		slot.Facing = math.Atan2(dy, dx)
	}
}
