package server

import "math"

// advanceAlongPath moves pos along an ordered waypoint list by up to budget
// meters, consuming waypoints as they are reached. It returns the new
// position, the facing angle toward the next unreached waypoint, the
// remaining waypoints (a sub-slice of the input), the distance actually
// traveled, and whether the path is exhausted. Handing back the returned
// remainder on the next tick is the expected usage; no geometry is
// re-derived and nothing beyond the remainder sub-slice is allocated.
func advanceAlongPath(pos vec2, facing float64, waypoints []vec2, budget float64) (vec2, float64, []vec2, float64, bool) {
	traveled := 0.0
	for budget > 0 && len(waypoints) > 0 {
		next := waypoints[0]
		dx := next.X - pos.X
		dy := next.Y - pos.Y
		distSq := dx*dx + dy*dy
		if distSq == 0 {
			waypoints = waypoints[1:]
			continue
		}
		facing = math.Atan2(dy, dx)
		dist := math.Sqrt(distSq)
		if dist <= budget {
			pos = next
			budget -= dist
			traveled += dist
			waypoints = waypoints[1:]
			continue
		}
		pos.X += dx / dist * budget
		pos.Y += dy / dist * budget
		traveled += budget
		budget = 0
	}
	return pos, facing, waypoints, traveled, len(waypoints) == 0
}
