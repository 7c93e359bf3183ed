package server

import (
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// FacilityConfig describes the simulated facility. It is loaded from YAML;
// cmd/schema emits a JSON schema for editor validation of the same file.
type FacilityConfig struct {
	Seed         string `yaml:"seed" json:"seed" jsonschema:"description=Deterministic RNG seed; empty selects a fixed default"`
	Courts       int    `yaml:"courts" json:"courts" jsonschema:"description=Number of simulated courts"`
	CourtsPerRow int    `yaml:"courtsPerRow" json:"courtsPerRow"`
	Robots       int    `yaml:"robots" json:"robots" jsonschema:"description=Cleaning fleet size"`

	// TierThresholds are detail-tier boundaries in meters, ascending. They
	// are squared once at load; the classifier never sees raw distances.
	TierThresholds []float64 `yaml:"tierThresholds" json:"tierThresholds"`

	// FacilityInterval and FleetInterval are frame-skip factors for the two
	// reduced-cadence subsystems. FleetInterval must exceed FacilityInterval.
	FacilityInterval int `yaml:"facilityInterval" json:"facilityInterval"`
	FleetInterval    int `yaml:"fleetInterval" json:"fleetInterval"`
}

func defaultFacilityConfig() FacilityConfig {
	return FacilityConfig{
		Seed:             "courtworks",
		Courts:           8,
		CourtsPerRow:     4,
		Robots:           2,
		TierThresholds:   []float64{0, 35, 80, 180},
		FacilityInterval: defaultFacilityInterval,
		FleetInterval:    defaultFleetInterval,
	}
}

// normalized clamps every field into a usable range, filling defaults for
// anything unset. Invalid configuration degrades rather than erroring.
func (c FacilityConfig) normalized() FacilityConfig {
	def := defaultFacilityConfig()
	if c.Seed == "" {
		c.Seed = def.Seed
	}
	if c.Courts <= 0 {
		c.Courts = def.Courts
	}
	if c.CourtsPerRow <= 0 {
		c.CourtsPerRow = def.CourtsPerRow
	}
	if c.Robots < 0 {
		c.Robots = def.Robots
	}
	if len(c.TierThresholds) == 0 {
		c.TierThresholds = append([]float64(nil), def.TierThresholds...)
	} else {
		cleaned := make([]float64, 0, len(c.TierThresholds))
		for _, t := range c.TierThresholds {
			if t >= 0 && !math.IsNaN(t) {
				cleaned = append(cleaned, t)
			}
		}
		if len(cleaned) == 0 {
			cleaned = append(cleaned, def.TierThresholds...)
		}
		sort.Float64s(cleaned)
		c.TierThresholds = cleaned
	}
	if c.FacilityInterval <= 0 {
		c.FacilityInterval = def.FacilityInterval
	}
	if c.FleetInterval <= c.FacilityInterval {
		c.FleetInterval = c.FacilityInterval * 2
	}
	return c
}

// tierThresholdsSquared returns the configured boundaries as squared meters.
func (c FacilityConfig) tierThresholdsSquared() []float64 {
	squared := make([]float64, len(c.TierThresholds))
	for i, t := range c.TierThresholds {
		squared[i] = t * t
	}
	return squared
}

// LoadFacilityConfig reads a YAML config file and applies defaults. A missing
// path returns the defaults untouched.
func LoadFacilityConfig(path string) (FacilityConfig, error) {
	cfg := defaultFacilityConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read facility config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return defaultFacilityConfig(), fmt.Errorf("parse facility config: %w", err)
	}
	return cfg.normalized(), nil
}
