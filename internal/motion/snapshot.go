package motion

import (
	"github.com/soar/MotionControllerView/internal/gamepad"
	"github.com/soar/MotionControllerView/internal/scene"
)

// Snapshot is the current pose of a controller's value nodes.
type Snapshot struct {
	Key     string                      `json:"key"`
	ID      string                      `json:"id"`
	Hand    gamepad.Hand                `json:"hand"`
	Bound   bool                        `json:"bound"`
	Buttons map[Control]scene.Transform `json:"buttons,omitempty"`
	Axes    map[string]scene.Transform  `json:"axes,omitempty"`
}

// Snapshot copies the value-node transforms under the scene's read lock.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{Key: c.key, ID: c.id, Hand: c.hand}
	model := c.model.Load()
	if model == nil {
		return s
	}
	s.Bound = true
	s.Buttons = make(map[Control]scene.Transform, len(model.Buttons))
	s.Axes = make(map[string]scene.Transform, len(model.Axes))
	c.scene.View(func() {
		for ctl, lm := range model.Buttons {
			s.Buttons[ctl] = lm.Value.Transform
		}
		for axis, lm := range model.Axes {
			name := c.mapping.AxisNodes[axis]
			s.Axes[name] = lm.Value.Transform
		}
	})
	return s
}
