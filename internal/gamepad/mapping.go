package gamepad

import "math"

// Frame slots of the motion-controller layout.
const (
	SlotThumbstick = iota
	SlotTrigger
	SlotGrip
	SlotMenu
	SlotTrackpad
	NumButtonSlots
)

const (
	SlotThumbstickX = iota
	SlotThumbstickY
	SlotTrackpadX
	SlotTrackpadY
	NumAxisSlots
)

// AxisMapping defines how a raw axis index feeds a frame slot.
type AxisMapping struct {
	Index int32
	// Axis is the frame axis slot, or -1 when the axis drives a button.
	Axis int
	// Button is the frame button slot an analog trigger drives, or -1.
	Button    int
	IsTrigger bool
	Invert    bool
	// For triggers: raw range. Some devices use -32768..32767, others 0..32767.
	RawMin int16
	RawMax int16
}

// ButtonMapping defines how a raw button index feeds a frame button slot.
type ButtonMapping struct {
	Index  int32
	Button int
	// Touch marks a capacitive sensor that only sets Touched.
	Touch bool
}

// DeviceMapping holds the complete mapping for a specific device type.
type DeviceMapping struct {
	Name    string
	Axes    []AxisMapping
	Buttons []ButtonMapping
}

// NormalizeAxis converts a raw axis value (-32768..32767) to -1.0..1.0.
func NormalizeAxis(raw int16) float64 {
	v := float64(raw) / math.MaxInt16
	if v < -1.0 {
		v = -1.0
	}
	return v
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

// ApplyDeadzone returns 0 if the value is within the deadzone threshold.
func ApplyDeadzone(v float64, threshold float64) float64 {
	if math.Abs(v) < threshold {
		return 0
	}
	return v
}

var motionControllerMapping = &DeviceMapping{
	Name: "wmr",
	Axes: []AxisMapping{
		{Index: 0, Axis: SlotThumbstickX, Button: -1},
		{Index: 1, Axis: SlotThumbstickY, Button: -1},
		{Index: 2, Axis: SlotTrackpadX, Button: -1},
		{Index: 3, Axis: SlotTrackpadY, Button: -1},
		{Index: 4, Axis: -1, Button: SlotTrigger, IsTrigger: true, RawMin: 0, RawMax: 32767},
	},
	Buttons: []ButtonMapping{
		{Index: 0, Button: SlotThumbstick},
		{Index: 1, Button: SlotTrigger},
		{Index: 2, Button: SlotGrip},
		{Index: 3, Button: SlotMenu},
		{Index: 4, Button: SlotTrackpad},
		{Index: 5, Button: SlotTrackpad, Touch: true},
	},
}

// Regular gamepads drive the motion-controller layout too: left stick is the
// thumbstick, right stick the trackpad, RT the trigger.
var genericMapping = &DeviceMapping{
	Name: "generic",
	Axes: []AxisMapping{
		{Index: 0, Axis: SlotThumbstickX, Button: -1},
		{Index: 1, Axis: SlotThumbstickY, Button: -1},
		{Index: 2, Axis: SlotTrackpadX, Button: -1},
		{Index: 3, Axis: SlotTrackpadY, Button: -1},
		{Index: 5, Axis: -1, Button: SlotTrigger, IsTrigger: true, RawMin: -32768, RawMax: 32767},
	},
	Buttons: []ButtonMapping{
		{Index: 8, Button: SlotThumbstick}, // L3
		{Index: 5, Button: SlotGrip},       // RB
		{Index: 7, Button: SlotMenu},       // Start
		{Index: 9, Button: SlotTrackpad},   // R3
	},
}

type deviceKey struct {
	VendorID  uint16
	ProductID uint16
}

var knownDevices = map[deviceKey]*DeviceMapping{
	// Windows Mixed Reality motion controllers
	{0x045E, 0x065B}: motionControllerMapping,
	{0x045E, 0x065D}: motionControllerMapping,
	{0x045E, 0x066A}: motionControllerMapping,
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

// RawReader exposes the raw inputs of one open device.
type RawReader interface {
	Axis(index int32) int16
	Button(index int32) bool
	NumButtons() int32
	NumAxes() int32
}

// Sample reads one frame's slots through m.
func (m *DeviceMapping) Sample(r RawReader, deadzone float64) ([]Button, []float64) {
	buttons := make([]Button, NumButtonSlots)
	axes := make([]float64, NumAxisSlots)

	numAxes := r.NumAxes()
	for _, am := range m.Axes {
		if am.Index >= numAxes {
			continue
		}
		raw := r.Axis(am.Index)
		if am.IsTrigger {
			val := ApplyDeadzone(NormalizeTrigger(raw, am.RawMin, am.RawMax), deadzone)
			if am.Button >= 0 {
				b := &buttons[am.Button]
				b.Value = max(b.Value, val)
				b.Touched = b.Touched || val > 0
			}
			continue
		}
		val := NormalizeAxis(raw)
		if am.Invert {
			val = -val
		}
		if am.Axis >= 0 {
			axes[am.Axis] = ApplyDeadzone(val, deadzone)
		}
	}

	numButtons := r.NumButtons()
	for _, bm := range m.Buttons {
		if bm.Index >= numButtons || !r.Button(bm.Index) {
			continue
		}
		b := &buttons[bm.Button]
		b.Touched = true
		if bm.Touch {
			continue
		}
		b.Pressed = true
		b.Value = 1
	}
	return buttons, axes
}
