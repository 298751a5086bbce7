package gamepad

import (
	"fmt"
	"math"
	"strings"
)

// Hand is the side a motion controller is held in.
type Hand string

const (
	HandLeft  Hand = "left"
	HandRight Hand = "right"
)

// Button is the sampled state of one button slot.
type Button struct {
	Value   float64 `json:"value"`
	Pressed bool    `json:"pressed"`
	Touched bool    `json:"touched"`
}

// Frame is one poll of one controller. Button and axis slots follow the
// motion-controller layout of the device mapping, not raw SDL indices.
type Frame struct {
	JoystickID uint32    `json:"joystickId"`
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Hand       Hand      `json:"hand"`
	Connected  bool      `json:"connected"`
	Buttons    []Button  `json:"buttons"`
	Axes       []float64 `json:"axes"`
}

// Key identifies a controller model: one per (id, hand).
func (f Frame) Key() string {
	return ControllerKey(f.ID, f.Hand)
}

// ControllerKey joins id and hand the way scene parent nodes are named.
func ControllerKey(id string, hand Hand) string {
	return id + " " + string(hand)
}

// ControllerID builds the id string the asset loader extracts the vendor key from.
func ControllerID(name string, vendorID, productID uint16) string {
	return fmt.Sprintf("%s %04X-%04X", strings.TrimSpace(name), vendorID, productID)
}

// DetectHand guesses the hand from a device name, defaulting to right.
func DetectHand(name string) Hand {
	lower := strings.ToLower(name)
	if strings.Contains(lower, "left") || strings.HasSuffix(lower, " l") {
		return HandLeft
	}
	return HandRight
}

// ButtonChange flags what changed for one button slot between two frames.
type ButtonChange struct {
	Index   int
	Pressed bool
	Touched bool
	Value   bool
}

const analogThreshold = 0.01

func floatEqual(a, b float64) bool {
	return math.Abs(a-b) < analogThreshold
}

// ButtonChanges compares two button slices slot by slot. Slots missing from
// prev are compared against a released button.
func ButtonChanges(prev, cur []Button) []ButtonChange {
	var changes []ButtonChange
	for i, b := range cur {
		var old Button
		if i < len(prev) {
			old = prev[i]
		}
		c := ButtonChange{
			Index:   i,
			Pressed: old.Pressed != b.Pressed,
			Touched: old.Touched != b.Touched,
			Value:   !floatEqual(old.Value, b.Value),
		}
		if c.Pressed || c.Touched || c.Value {
			changes = append(changes, c)
		}
	}
	return changes
}
