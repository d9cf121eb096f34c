// Package gamepad holds the controller sample types and the device
// mappings that fill them. It has no SDL dependency; see sdlreader.
package gamepad

// AutoPad selects the first connected controller.
const AutoPad = -1

// Vector is a 2-axis analog reading. Raw stick components are in [-1, 1]
// with Y growing downwards (screen space).
type Vector struct {
	X float64
	Y float64
}

type ButtonState struct {
	A     bool
	B     bool
	X     bool
	Y     bool
	LB    bool
	RB    bool
	L3    bool
	R3    bool
	Start bool
}

type DpadState struct {
	Up    bool
	Down  bool
	Left  bool
	Right bool
}

type SticksState struct {
	Left  Vector
	Right Vector
}

type TriggersState struct {
	LT float64
	RT float64
}

// RawSample is one frame's unprocessed reading of the active controller.
// It is produced fresh every frame and never retained.
type RawSample struct {
	Buttons  ButtonState
	Dpad     DpadState
	Sticks   SticksState
	Triggers TriggersState
}

// Neutral is the sample used when no controller could be read: nothing
// held, sticks centered, triggers released.
func Neutral() RawSample {
	return RawSample{}
}
