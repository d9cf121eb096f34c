// Package overlay turns one frame of controller input, game context and
// settings into a RenderPlan.
package overlay

import (
	"github.com/soar/padoverlay/backend/internal/config"
	"github.com/soar/padoverlay/backend/internal/gamepad"
	"github.com/soar/padoverlay/backend/internal/shaper"
	"github.com/soar/padoverlay/backend/internal/skin"
	"github.com/soar/padoverlay/backend/internal/visibility"
)

const (
	minScale = 0.05
	maxScale = 5.0
)

// FrameInput is everything Update needs for one frame.
type FrameInput struct {
	Sample    gamepad.RawSample
	Connected bool // false when the controller could not be read
	Context   visibility.Context
	Settings  config.Settings
	Skin      *skin.Skin // nil when the skin could not be loaded
}

// Overlay carries the state that lives across frames: the smoothed sticks
// and the controller-menu latch.
//
// Update must be called once per frame and never concurrently.
type Overlay struct {
	shaper shaper.Shaper
	latch  visibility.Latch
}

func New() *Overlay {
	return &Overlay{}
}

// Sticks returns the smoothed stick positions.
func (o *Overlay) Sticks() (left, right gamepad.Vector) {
	return o.shaper.Left, o.shaper.Right
}

// MenuLatched reports whether the controller menu latch is set.
func (o *Overlay) MenuLatched() bool {
	return o.latch.MenuLatched()
}

// Update advances one frame.
func (o *Overlay) Update(in FrameInput) RenderPlan {
	st := in.Settings
	sample := in.Sample
	if !in.Connected {
		sample = gamepad.Neutral()
	}

	o.shaper.Update(sample, st.Shaper)
	visible, reason := o.latch.Evaluate(in.Context, sample.Buttons.Start, sample.Buttons.B, st.Visibility)

	if !st.Enabled {
		return RenderPlan{Reason: ReasonDisabled}
	}
	if !visible {
		return hidden(reason)
	}
	if !in.Skin.Ready() {
		return RenderPlan{Reason: ReasonNoSkin}
	}
	return o.layout(sample, st, in.Skin)
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

func (o *Overlay) layout(s gamepad.RawSample, st config.Settings, sk *skin.Skin) RenderPlan {
	bx := st.X + st.LayerShift.X
	by := st.Y + st.LayerShift.Y

	plan := RenderPlan{
		Visible: true,
		Skin:    sk.Name,
		Scale:   clamp(st.Scale, minScale, maxScale),
		Sprites: []Sprite{{Key: "BASE", Image: sk.Base, X: bx, Y: by}},
	}

	add := func(key string, on bool, dx, dy float64) {
		if !on {
			return
		}
		img, ok := sk.Layers[key]
		if !ok {
			return
		}
		off := st.Offsets[key]
		plan.Sprites = append(plan.Sprites, Sprite{
			Key:   key,
			Image: img,
			X:     bx + off.X + dx,
			Y:     by + off.Y + dy,
		})
	}

	cfg := st.Shaper
	add("A", s.Buttons.A, 0, 0)
	add("B", s.Buttons.B, 0, 0)
	add("X", s.Buttons.X, 0, 0)
	add("Y", s.Buttons.Y, 0, 0)
	add("DU", s.Dpad.Up, 0, 0)
	add("DD", s.Dpad.Down, 0, 0)
	add("DL", s.Dpad.Left, 0, 0)
	add("DR", s.Dpad.Right, 0, 0)
	add("LB", s.Buttons.LB, 0, 0)
	add("RB", s.Buttons.RB, 0, 0)
	add("LT", shaper.TriggerActive(s.Triggers.LT, clamp(cfg.TriggerThreshold, 0, 1)), 0, 0)
	add("RT", shaper.TriggerActive(s.Triggers.RT, clamp(cfg.TriggerThreshold, 0, 1)), 0, 0)

	stick := func(key string, v gamepad.Vector, pressed bool) {
		d := shaper.Deflection(v, cfg.Deadzone)
		dx, dy := shaper.Offset(v, cfg)
		add(key, st.SticksAlways || pressed || d.X != 0 || d.Y != 0, dx, dy)
	}
	stick("L3", o.shaper.Left, s.Buttons.L3)
	stick("R3", o.shaper.Right, s.Buttons.R3)

	return plan
}
