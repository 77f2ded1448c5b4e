package engine

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// Speed and distance unit identifiers accepted for raw input.
const (
	SpeedUnitMPS = "ms"
	SpeedUnitKMH = "kmh"
	SpeedUnitMPH = "mph"

	DistanceUnitM  = "m"
	DistanceUnitKM = "km"
	DistanceUnitMI = "mi"
)

// Gap fill policies for small timestamp gaps.
const (
	GapFillInterpolate = "interpolate"
	GapFillCarry       = "carry"
	GapFillNone        = "none"
)

// UnitConfig declares the units of the raw input fields. Canonical output
// units are fixed (km/h, meters) regardless of this setting.
type UnitConfig struct {
	Speed    string `yaml:"speed" default:"ms"`
	Distance string `yaml:"distance" default:"m"`
}

// ZoneConfig holds the boundary sets for each classified dimension. Each set
// must be strictly increasing; n boundaries produce n+1 zones.
type ZoneConfig struct {
	HeartRate []float64 `yaml:"heart_rate" default:"[120,140,155,170]"`
	Pace      []float64 `yaml:"pace" default:"[4.5,5.5,6.5,8]"`
	Grade     []float64 `yaml:"grade" default:"[-15,-5,5,15]"`
}

// Config is the full option surface of the pipeline. Every option has a
// default; an absent value falls back to it, never to an error.
type Config struct {
	Units UnitConfig `yaml:"units"`

	// MaxGapSeconds separates small gaps (interpolated) from
	// discontinuities (segment boundaries).
	MaxGapSeconds float64 `yaml:"max_gap_seconds" default:"5"`

	// ElevationNoiseThreshold is the minimum altitude delta, in meters,
	// credited to cumulative gain or loss.
	ElevationNoiseThreshold float64 `yaml:"elevation_noise_threshold" default:"1.0"`

	// SmoothingWindowSeconds is the trailing wall-clock window used for
	// speed and grade smoothing.
	SmoothingWindowSeconds float64 `yaml:"smoothing_window_seconds" default:"30"`

	// GapFill picks how missing scalar values inside a small gap are
	// produced: interpolate|carry|none.
	GapFill string `yaml:"gap_fill" default:"interpolate"`

	Zones ZoneConfig `yaml:"zones"`
}

// DefaultConfig returns a Config with every option at its documented default.
func DefaultConfig() Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		// Tags are static; a failure here is a programming error.
		panic(fmt.Sprintf("engine: default config: %v", err))
	}
	return c
}

// LoadConfig reads a YAML config file, filling absent options with defaults.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Validate checks the configuration before any sample processing.
func (c Config) Validate() error {
	switch c.Units.Speed {
	case SpeedUnitMPS, SpeedUnitKMH, SpeedUnitMPH:
	default:
		return configErrorf("units.speed", "unknown unit %q (expected ms|kmh|mph)", c.Units.Speed)
	}
	switch c.Units.Distance {
	case DistanceUnitM, DistanceUnitKM, DistanceUnitMI:
	default:
		return configErrorf("units.distance", "unknown unit %q (expected m|km|mi)", c.Units.Distance)
	}
	if c.MaxGapSeconds < 0 {
		return configErrorf("max_gap_seconds", "must not be negative, got %g", c.MaxGapSeconds)
	}
	if c.SmoothingWindowSeconds < 0 {
		return configErrorf("smoothing_window_seconds", "must not be negative, got %g", c.SmoothingWindowSeconds)
	}
	if c.ElevationNoiseThreshold <= 0 {
		return configErrorf("elevation_noise_threshold", "must be positive, got %g", c.ElevationNoiseThreshold)
	}
	switch c.GapFill {
	case GapFillInterpolate, GapFillCarry, GapFillNone:
	default:
		return configErrorf("gap_fill", "unknown policy %q (expected interpolate|carry|none)", c.GapFill)
	}
	if err := checkBoundaries("zones.heart_rate", c.Zones.HeartRate); err != nil {
		return err
	}
	if err := checkBoundaries("zones.pace", c.Zones.Pace); err != nil {
		return err
	}
	return checkBoundaries("zones.grade", c.Zones.Grade)
}

func checkBoundaries(option string, boundaries []float64) error {
	for i := 1; i < len(boundaries); i++ {
		if boundaries[i] <= boundaries[i-1] {
			return configErrorf(option, "boundaries must be strictly increasing, got %g after %g at index %d",
				boundaries[i], boundaries[i-1], i)
		}
	}
	return nil
}
