package motion

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/soar/MotionControllerView/internal/scene"
)

// Landmarks are the calibration nodes of one control or axis. Low is the
// unpressed or MIN pose, High the pressed or MAX pose, Value the node that
// follows the input.
type Landmarks struct {
	Index int
	Value *scene.Node
	Low   *scene.Node
	High  *scene.Node
}

// Model is a controller model bound to a mapping. It is built once by Resolve
// and never restructured afterwards.
type Model struct {
	Root         *scene.Node
	Buttons      map[Control]*Landmarks
	Axes         map[int]*Landmarks
	PointingPose *scene.Node
	HoldingPose  *scene.Node
}

// Resolve locates the landmark nodes of every control and axis in m under root.
// Controls missing any of their three nodes are left out. A nil root yields nil.
func Resolve(root *scene.Node, m Mapping) *Model {
	if root == nil {
		return nil
	}
	model := &Model{
		Root:    root,
		Buttons: make(map[Control]*Landmarks),
		Axes:    make(map[int]*Landmarks),
	}

	for i, c := range m.Buttons {
		name := m.ButtonNodes[c]
		if name == "" {
			continue
		}
		if lm := landmarks(root, name, i, NodeUnpressed, NodePressed); lm != nil {
			model.Buttons[c] = lm
		}
	}

	for axis, name := range m.AxisNodes {
		if name == "" {
			continue
		}
		if lm := landmarks(root, name, axis, NodeMin, NodeMax); lm != nil {
			model.Axes[axis] = lm
		}
	}

	if m.PointingPoseNode != "" {
		model.PointingPose = root.FindDescendant(m.PointingPoseNode)
	}
	if m.HoldingPoseNode != "" {
		model.HoldingPose = root.FindDescendant(m.HoldingPoseNode)
	}
	return model
}

// landmarks only looks one level below the container, so that VALUE/MIN/MAX
// nodes of nested containers are never picked up.
func landmarks(root *scene.Node, container string, index int, low, high string) *Landmarks {
	node := root.FindDescendant(container)
	if node == nil {
		return nil
	}
	lm := &Landmarks{
		Index: index,
		Value: node.FindChild(NodeValue),
		Low:   node.FindChild(low),
		High:  node.FindChild(high),
	}
	if lm.Value == nil || lm.Low == nil || lm.High == nil {
		return nil
	}
	return lm
}

// ApplyButton poses the control's value node for a button value in [0,1].
func (m *Model) ApplyButton(c Control, value float64) {
	if m == nil {
		return
	}
	m.Buttons[c].apply(value)
}

// ApplyAxis poses the axis value node for a raw axis value in [-1,1].
func (m *Model) ApplyAxis(axis int, value float64) {
	if m == nil {
		return
	}
	m.Axes[axis].apply(value*0.5 + 0.5)
}

func (lm *Landmarks) apply(t float64) {
	if lm == nil {
		return
	}
	low, high := lm.Low.Transform, lm.High.Transform
	switch {
	case t <= 0:
		lm.Value.Transform.Rotation = low.Rotation
		lm.Value.Transform.Position = low.Position
	case t >= 1:
		lm.Value.Transform.Rotation = high.Rotation
		lm.Value.Transform.Position = high.Position
	default:
		lm.Value.Transform.Rotation = Slerp(low.Rotation, high.Rotation, t)
		lm.Value.Transform.Position = Lerp(low.Position, high.Position, t)
	}
}

// Slerp interpolates along the shortest arc between a and b. QuatSlerp
// negates b itself when the two lie in opposite hemispheres.
func Slerp(a, b mgl64.Quat, t float64) mgl64.Quat {
	return mgl64.QuatSlerp(a, b, t)
}

// Lerp interpolates linearly between a and b.
func Lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
