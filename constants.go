package server

import "time"

const (
	writeWait         = 10 * time.Second
	heartbeatInterval = 2 * time.Second
	disconnectAfter   = 3 * heartbeatInterval

	// frameRate is the cadence the host loop targets; the scheduler itself is
	// driven by whatever deltas the loop hands it.
	frameRate     = 60
	maxFrameDelta = 0.050 // seconds, cap applied before the match batch step
)

// Court geometry, meters. Matches are simulated in court-local coordinates
// with x along the length, y along the width, z up, origin at the net post.
const (
	courtLength = 13.41
	courtWidth  = 6.10

	gravity         = -9.8
	ballRadius      = 0.037
	ballRestitution = 0.65
	bounceFriction  = 0.8
	rallyEndSpeed   = 0.5 // post-bounce vertical speed under which the rally is over
	serveHeight     = 1.2
	shotSpeed       = 9.0
	minShotTime     = 0.4
	targetMargin    = 0.6

	playerMoveSpeed   = 3.0
	playerStopDistSq  = 0.01 // squared meters; closer than this counts as arrived
	swingDuration     = 0.35
	hitRadiusSq       = 0.81 // 0.9m reach, squared
	hitHeightBand     = 1.8
	returnMissChance  = 0.12
	slotHomeFromNet   = 4.5
	slotHomeHalfWidth = 1.5
)

const (
	winningScore = 11
	winMargin    = 2

	waitingDwell = 1.5 // seconds between a point and the next serve windup
	pointDwell   = 2.0 // celebration dwell before the court resets
)

// Fleet tuning. Battery is a 0-100 percentage, cleanliness likewise.
const (
	robotSpeed           = 1.4
	batteryDrainPerMeter = 0.08
	batteryPerJob        = 2.0
	batteryLowWater      = 20.0
	batteryHighWater     = 95.0
	batteryChargeRate    = 4.5 // percent per second while docked

	cleanRatePerMeter = 0.9  // exponential approach factor while sweeping
	cleanlinessFloor  = 40.0 // below this a free court gets a job queued
	occupiedSoilRate  = 0.35 // percent per second while a match is running
	idleSoilRate      = 0.05
)

const (
	defaultFacilityInterval = 4
	defaultFleetInterval    = 8

	lodHysteresis = 0.15
)
