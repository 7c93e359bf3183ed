package server

import "math"

// ClassifyTier maps a squared distance onto a discrete detail tier.
//
// thresholds is an ascending list of squared distances; index 0 is the finest
// tier. Moving coarser requires reaching the raw threshold, moving finer
// requires dropping below the current tier's threshold shrunk by the
// hysteresis band, so an object parked on a boundary cannot flap between
// tiers. Degenerate input resolves to the finest tier rather than failing.
//
// The classifier is a pure function; callers rate-limit how often they invoke
// it (the facility tick re-classifies courts every few frames).
func ClassifyTier(distSq float64, thresholds []float64, current int) int {
	if len(thresholds) == 0 {
		return 0
	}
	if math.IsNaN(distSq) || distSq < 0 {
		return 0
	}
	if current < 0 {
		current = 0
	}
	if current >= len(thresholds) {
		current = len(thresholds) - 1
	}

	target := 0
	for i := len(thresholds) - 1; i >= 0; i-- {
		if distSq >= thresholds[i] {
			target = i
			break
		}
	}

	if target >= current {
		return target
	}

	shrink := (1 - lodHysteresis) * (1 - lodHysteresis)
	if distSq < thresholds[current]*shrink {
		return target
	}
	return current
}
