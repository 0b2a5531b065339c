// Package tracker derives depth, velocity and punch events from per-frame
// hand landmarks.
package tracker

import (
	"fmt"
	"time"
)

// Config holds the tunable constants of the depth tracker. The depth-formula
// weights are empirically chosen; they are exposed here for recalibration
// rather than baked into the update path.
type Config struct {
	// ReferenceScale is the wrist-to-middle-knuckle distance of a hand held
	// at neutral distance, used to turn apparent-size change into depth.
	ReferenceScale float64

	// SmoothingAlpha is the EMA weight applied to each new depth sample.
	// High values favour punch-detection latency over jitter suppression.
	SmoothingAlpha float64

	// PalmWeight and ScaleWeight blend the sensor-reported palm depth with
	// the size-derived depth estimate.
	PalmWeight  float64
	ScaleWeight float64

	// DepthGain amplifies the blended depth so downstream thresholds are
	// meaningful.
	DepthGain float64

	// PunchVelocityThreshold is the minimum forward velocity magnitude that
	// starts a punch.
	PunchVelocityThreshold float64

	// PunchCooldown is the minimum time after a punch ends before a new
	// punch may start on the same side.
	PunchCooldown time.Duration

	// ReleaseRatio scales the threshold for punch release: a punch ends
	// once velocity rises above -ReleaseRatio*PunchVelocityThreshold.
	ReleaseRatio float64

	// DepthHistorySize bounds the smoothed-depth history used for the
	// velocity estimate.
	DepthHistorySize int

	// VelocityHistorySize bounds the velocity history kept for graphing
	// consumers. It has no algorithmic role.
	VelocityHistorySize int

	// FistCurlRatio is the tip-to-wrist vs knuckle-to-wrist distance ratio
	// below which a finger counts as curled.
	FistCurlRatio float64

	// MissDepthDecay and MissVelocityDecay are applied per tick while a
	// hand is out of view, converging the state toward neutral without a
	// discontinuous snap.
	MissDepthDecay    float64
	MissVelocityDecay float64
}

// DefaultConfig returns the calibration used by the stock pipeline.
func DefaultConfig() Config {
	return Config{
		ReferenceScale:         0.12,
		SmoothingAlpha:         0.7,
		PalmWeight:             0.6,
		ScaleWeight:            0.4,
		DepthGain:              1.5,
		PunchVelocityThreshold: 0.006,
		PunchCooldown:          80 * time.Millisecond,
		ReleaseRatio:           0.3,
		DepthHistorySize:       5,
		VelocityHistorySize:    50,
		FistCurlRatio:          1.3,
		MissDepthDecay:         0.9,
		MissVelocityDecay:      0.8,
	}
}

// Validate reports configuration values that would break the tracker.
// These are programmer errors and should fail at construction, not at tick
// time.
func (c Config) Validate() error {
	if c.ReferenceScale <= 0 {
		return fmt.Errorf("reference scale must be positive, got %g", c.ReferenceScale)
	}
	if c.SmoothingAlpha <= 0 || c.SmoothingAlpha > 1 {
		return fmt.Errorf("smoothing alpha must be in (0,1], got %g", c.SmoothingAlpha)
	}
	if c.DepthGain <= 0 {
		return fmt.Errorf("depth gain must be positive, got %g", c.DepthGain)
	}
	if c.PunchVelocityThreshold <= 0 {
		return fmt.Errorf("punch velocity threshold must be positive, got %g", c.PunchVelocityThreshold)
	}
	if c.PunchCooldown <= 0 {
		return fmt.Errorf("punch cooldown must be positive, got %s", c.PunchCooldown)
	}
	if c.ReleaseRatio <= 0 {
		return fmt.Errorf("release ratio must be positive, got %g", c.ReleaseRatio)
	}
	if c.DepthHistorySize < 2 {
		return fmt.Errorf("depth history size must be at least 2, got %d", c.DepthHistorySize)
	}
	if c.VelocityHistorySize <= 0 {
		return fmt.Errorf("velocity history size must be positive, got %d", c.VelocityHistorySize)
	}
	if c.FistCurlRatio <= 0 {
		return fmt.Errorf("fist curl ratio must be positive, got %g", c.FistCurlRatio)
	}
	if c.MissDepthDecay <= 0 || c.MissDepthDecay >= 1 {
		return fmt.Errorf("miss depth decay must be in (0,1), got %g", c.MissDepthDecay)
	}
	if c.MissVelocityDecay <= 0 || c.MissVelocityDecay >= 1 {
		return fmt.Errorf("miss velocity decay must be in (0,1), got %g", c.MissVelocityDecay)
	}
	return nil
}
