package gamepad

import "math"

// AxisMapping defines how a raw axis index maps to a sample field.
type AxisMapping struct {
	Index     int32
	Target    string // "left_x", "left_y", "right_x", "right_y", "lt", "rt"
	IsTrigger bool
	// For triggers: raw range. Some devices use -32768..32767, others 0..32767.
	RawMin int16
	RawMax int16
}

// ButtonMapping defines how a raw button index maps to a sample button.
type ButtonMapping struct {
	Index  int32
	Target string // "a", "b", "x", "y", "lb", "rb", "start", "l3", "r3"
}

// DeviceMapping holds the complete mapping for a specific device type.
type DeviceMapping struct {
	Name    string
	Axes    []AxisMapping
	Buttons []ButtonMapping
	HasHat  bool
}

// NormalizeAxis converts a raw 16-bit axis value to -1.0..1.0.
// The positive half divides by 32767 and the negative half by 32768, so
// both ends reach exactly ±1 and the two halves keep their own step size.
func NormalizeAxis(raw int16) float64 {
	if raw >= 0 {
		return float64(raw) / math.MaxInt16
	}
	return float64(raw) / -math.MinInt16
}

// NormalizeTrigger converts a raw trigger value to 0.0..1.0.
func NormalizeTrigger(raw int16, rawMin, rawMax int16) float64 {
	if rawMax == rawMin {
		return 0
	}
	v := (float64(raw) - float64(rawMin)) / (float64(rawMax) - float64(rawMin))
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v
}

// Built-in mappings for common controllers. SDL reports stick Y growing
// downwards, which is already screen space, so no axis is inverted.

var standardAxes = []AxisMapping{
	{Index: 0, Target: "left_x"},
	{Index: 1, Target: "left_y"},
	{Index: 2, Target: "right_x"},
	{Index: 3, Target: "right_y"},
	{Index: 4, Target: "lt", IsTrigger: true, RawMin: -32768, RawMax: 32767},
	{Index: 5, Target: "rt", IsTrigger: true, RawMin: -32768, RawMax: 32767},
}

var xboxMapping = &DeviceMapping{
	Name: "xbox",
	Axes: standardAxes,
	Buttons: []ButtonMapping{
		{Index: 0, Target: "a"},
		{Index: 1, Target: "b"},
		{Index: 2, Target: "x"},
		{Index: 3, Target: "y"},
		{Index: 4, Target: "lb"},
		{Index: 5, Target: "rb"},
		{Index: 7, Target: "start"},
		{Index: 8, Target: "l3"},
		{Index: 9, Target: "r3"},
	},
	HasHat: true,
}

var playstationMapping = &DeviceMapping{
	Name: "playstation",
	Axes: standardAxes,
	Buttons: []ButtonMapping{
		{Index: 0, Target: "a"},     // Cross
		{Index: 1, Target: "b"},     // Circle
		{Index: 2, Target: "x"},     // Square
		{Index: 3, Target: "y"},     // Triangle
		{Index: 6, Target: "start"}, // Options
		{Index: 7, Target: "l3"},
		{Index: 8, Target: "r3"},
		{Index: 9, Target: "lb"},  // L1
		{Index: 10, Target: "rb"}, // R1
	},
	HasHat: true,
}

var switchProMapping = &DeviceMapping{
	Name: "switch_pro",
	Axes: standardAxes[:4],
	Buttons: []ButtonMapping{
		{Index: 0, Target: "a"},
		{Index: 1, Target: "b"},
		{Index: 2, Target: "x"},
		{Index: 3, Target: "y"},
		{Index: 4, Target: "lb"},
		{Index: 5, Target: "rb"},
		{Index: 7, Target: "start"},
		{Index: 8, Target: "l3"},
		{Index: 9, Target: "r3"},
	},
	HasHat: true,
}

var genericMapping = &DeviceMapping{
	Name:    "generic",
	Axes:    standardAxes,
	Buttons: xboxMapping.Buttons,
	HasHat:  true,
}

// Known vendor/product IDs.
type deviceKey struct {
	VendorID  uint16
	ProductID uint16
}

var knownDevices = map[deviceKey]*DeviceMapping{
	// Microsoft Xbox controllers
	{0x045E, 0x028E}: xboxMapping, // Xbox 360
	{0x045E, 0x02FF}: xboxMapping, // Xbox One
	{0x045E, 0x0B12}: xboxMapping, // Xbox Series X|S
	{0x045E, 0x0B13}: xboxMapping, // Xbox Series X|S (wireless)
	// Sony PlayStation controllers
	{0x054C, 0x0CE6}: playstationMapping, // DualSense
	{0x054C, 0x09CC}: playstationMapping, // DualShock 4 v2
	{0x054C, 0x05C4}: playstationMapping, // DualShock 4 v1
	// Nintendo Switch Pro Controller
	{0x057E, 0x2009}: switchProMapping,
}

// GetMapping returns the appropriate mapping for a device identified by vendor/product ID.
// Falls back to generic mapping if no specific mapping is found.
func GetMapping(vendorID, productID uint16) *DeviceMapping {
	key := deviceKey{VendorID: vendorID, ProductID: productID}
	if m, ok := knownDevices[key]; ok {
		return m
	}
	return genericMapping
}

// SetButton stores one mapped button into the sample. Unknown targets
// are ignored.
func (s *RawSample) SetButton(target string, pressed bool) {
	switch target {
	case "a":
		s.Buttons.A = pressed
	case "b":
		s.Buttons.B = pressed
	case "x":
		s.Buttons.X = pressed
	case "y":
		s.Buttons.Y = pressed
	case "lb":
		s.Buttons.LB = pressed
	case "rb":
		s.Buttons.RB = pressed
	case "start":
		s.Buttons.Start = pressed
	case "l3":
		s.Buttons.L3 = pressed
	case "r3":
		s.Buttons.R3 = pressed
	}
}

// SetAxis stores one normalized axis value into the sample.
func (s *RawSample) SetAxis(target string, v float64) {
	switch target {
	case "left_x":
		s.Sticks.Left.X = v
	case "left_y":
		s.Sticks.Left.Y = v
	case "right_x":
		s.Sticks.Right.X = v
	case "right_y":
		s.Sticks.Right.Y = v
	case "lt":
		s.Triggers.LT = v
	case "rt":
		s.Triggers.RT = v
	}
}

const (
	hatUp    uint8 = 0x01
	hatRight uint8 = 0x02
	hatDown  uint8 = 0x04
	hatLeft  uint8 = 0x08
)

// SetHat decodes an SDL hat bitmask into the D-pad.
func (s *RawSample) SetHat(hat uint8) {
	s.Dpad.Up = hat&hatUp != 0
	s.Dpad.Right = hat&hatRight != 0
	s.Dpad.Down = hat&hatDown != 0
	s.Dpad.Left = hat&hatLeft != 0
}
