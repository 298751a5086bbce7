// Package motion binds a motion controller's live input to the landmark nodes of
// its 3D model and republishes raw button changes under semantic names.
package motion

// Control is a semantic input, independent of the raw button index.
type Control string

const (
	Thumbstick Control = "thumbstick"
	Trigger    Control = "trigger"
	Grip       Control = "grip"
	Menu       Control = "menu"
	Trackpad   Control = "trackpad"
)

// Channel names a subscriber-facing notification stream.
type Channel string

const (
	TriggerStateChanged          Channel = "trigger_state_changed"
	SecondaryButtonStateChanged  Channel = "secondary_button_state_changed"
	MainButtonStateChanged       Channel = "main_button_state_changed"
	PadStateChanged              Channel = "pad_state_changed"
	TrackpadChanged              Channel = "trackpad_changed"
	SecondaryTriggerStateChanged Channel = "secondary_trigger_state_changed"
)

// Channels lists every channel a Controller exposes.
var Channels = []Channel{
	TriggerStateChanged,
	SecondaryButtonStateChanged,
	MainButtonStateChanged,
	PadStateChanged,
	TrackpadChanged,
	SecondaryTriggerStateChanged,
}

// Landmark child names inside a control's container node.
const (
	NodeValue     = "VALUE"
	NodePressed   = "PRESSED"
	NodeUnpressed = "UNPRESSED"
	NodeMin       = "MIN"
	NodeMax       = "MAX"
)

// Mapping describes how one controller family lays out its inputs and model.
// Treat it as immutable once handed to a Controller.
type Mapping struct {
	// Buttons is indexed by raw button index.
	Buttons []Control
	// ButtonNodes maps a control to its landmark container node name.
	ButtonNodes map[Control]string
	// Channels maps a control to the channel notified when it changes.
	Channels map[Control]Channel
	// AxisNodes is indexed by raw axis index.
	AxisNodes []string

	PointingPoseNode string
	HoldingPoseNode  string
}

// WindowsMixedReality is the mapping for Windows Mixed Reality motion controllers.
func WindowsMixedReality() Mapping {
	return Mapping{
		Buttons: []Control{Thumbstick, Trigger, Grip, Menu, Trackpad},
		ButtonNodes: map[Control]string{
			Trigger:    "SELECT",
			Menu:       "MENU",
			Grip:       "GRASP",
			Thumbstick: "THUMBSTICK_PRESS",
			Trackpad:   "TOUCHPAD_PRESS",
		},
		Channels: map[Control]Channel{
			Trigger:    TriggerStateChanged,
			Menu:       SecondaryButtonStateChanged,
			Grip:       MainButtonStateChanged,
			Thumbstick: PadStateChanged,
			Trackpad:   TrackpadChanged,
		},
		AxisNodes: []string{
			"THUMBSTICK_X",
			"THUMBSTICK_Y",
			"TOUCHPAD_TOUCH_X",
			"TOUCHPAD_TOUCH_Y",
		},
		PointingPoseNode: "CrystalKey_6DOF_Pointing_Pose",
		HoldingPoseNode:  "CrystalKey_6DOF_Holding_Pose",
	}
}

// ControlAt returns the control for a raw button index.
func (m Mapping) ControlAt(index int) (Control, bool) {
	if index < 0 || index >= len(m.Buttons) {
		return "", false
	}
	c := m.Buttons[index]
	return c, c != ""
}

// ButtonIndex returns the raw index of c, or -1.
func (m Mapping) ButtonIndex(c Control) int {
	for i, b := range m.Buttons {
		if b == c {
			return i
		}
	}
	return -1
}
