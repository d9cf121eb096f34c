// Package shaper turns raw stick and trigger readings into display state:
// per-axis deadzone remapping, one-pole smoothing of the sticks and trigger
// thresholds.
package shaper

import (
	"math"

	"github.com/soar/padoverlay/backend/internal/gamepad"
)

const (
	MaxDeadzone  = 0.95
	MaxSmoothing = 0.98
)

// Config is the per-frame shaping configuration. Values are clamped where
// they are used.
type Config struct {
	Deadzone         float64 // fraction of the axis treated as neutral
	Smoothing        float64 // 0 = follow raw input, 0.98 = heaviest filtering
	StickRange       float64 // pixels a stick layer moves at full deflection
	TriggerThreshold float64
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Shape applies the deadzone d to a single axis value v. Values inside the
// deadzone become 0; the rest is rescaled so the output starts at 0 on the
// deadzone edge and reaches ±1 at full deflection.
func Shape(v, d float64) float64 {
	d = clamp(d, 0, MaxDeadzone)
	a := math.Abs(v)
	if a < d {
		return 0
	}
	t := clamp((a-d)/(1-d), 0, 1)
	if v < 0 {
		return -t
	}
	return t
}

// Smooth moves prev toward raw by (1 - factor) of the distance.
func Smooth(prev, raw, factor float64) float64 {
	k := 1 - clamp(factor, 0, MaxSmoothing)
	return prev + (raw-prev)*k
}

// TriggerActive reports whether a trigger magnitude is past threshold.
func TriggerActive(value, threshold float64) bool {
	return value > threshold
}

// Shaper holds the smoothed stick positions carried from frame to frame.
// The zero value is centered sticks.
type Shaper struct {
	Left  gamepad.Vector
	Right gamepad.Vector
}

func smoothVector(prev, raw gamepad.Vector, factor float64) gamepad.Vector {
	return gamepad.Vector{
		X: Smooth(prev.X, clamp(raw.X, -1, 1), factor),
		Y: Smooth(prev.Y, clamp(raw.Y, -1, 1), factor),
	}
}

// Update filters one frame of raw stick input into the shaper. Pass
// gamepad.Neutral() for frames where the controller could not be read so
// the sticks settle back to center.
func (s *Shaper) Update(raw gamepad.RawSample, cfg Config) {
	s.Left = smoothVector(s.Left, raw.Sticks.Left, cfg.Smoothing)
	s.Right = smoothVector(s.Right, raw.Sticks.Right, cfg.Smoothing)
}

// Deflection returns the deadzone-shaped smoothed stick in [-1, 1] per axis.
func Deflection(v gamepad.Vector, deadzone float64) gamepad.Vector {
	return gamepad.Vector{
		X: Shape(v.X, deadzone),
		Y: Shape(v.Y, deadzone),
	}
}

// Offset returns the pixel displacement for a smoothed stick.
func Offset(v gamepad.Vector, cfg Config) (dx, dy float64) {
	d := Deflection(v, cfg.Deadzone)
	return d.X * cfg.StickRange, d.Y * cfg.StickRange
}
