package motion

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soar/MotionControllerView/internal/scene"
)

var (
	pressedRot   = mgl64.QuatRotate(math.Pi/6, mgl64.Vec3{1, 0, 0})
	pressedPos   = mgl64.Vec3{0, -0.004, 0.002}
	axisMinRot   = mgl64.QuatRotate(-math.Pi/8, mgl64.Vec3{0, 0, 1})
	axisMaxRot   = mgl64.QuatRotate(math.Pi/8, mgl64.Vec3{0, 0, 1})
	axisMinPos   = mgl64.Vec3{-0.01, 0, 0}
	axisMaxPos   = mgl64.Vec3{0.01, 0, 0}
	unpressedPos = mgl64.Vec3{0, 0, 0.002}
)

func node(name string, children ...*scene.Node) *scene.Node {
	n := scene.NewNode(name)
	for _, c := range children {
		n.AddChild(c)
	}
	return n
}

func posed(name string, pos mgl64.Vec3, rot mgl64.Quat) *scene.Node {
	n := scene.NewNode(name)
	n.Transform.Position = pos
	n.Transform.Rotation = rot
	return n
}

func buttonContainer(name string) *scene.Node {
	return node(name,
		posed(NodePressed, pressedPos, pressedRot),
		posed(NodeUnpressed, unpressedPos, mgl64.QuatIdent()),
		node(NodeValue),
	)
}

func axisContainer(name string, valueChildren ...*scene.Node) *scene.Node {
	return node(name,
		posed(NodeMin, axisMinPos, axisMinRot),
		posed(NodeMax, axisMaxPos, axisMaxRot),
		node(NodeValue, valueChildren...),
	)
}

// controllerTree mirrors the layout of the Windows Mixed Reality models,
// including the nesting of axis containers under VALUE nodes and the
// trackpad press whose VALUE sits under UNPRESSED.
func controllerTree() *scene.Node {
	thumbPress := buttonContainer("THUMBSTICK_PRESS")
	thumbPress.FindChild(NodeValue).AddChild(axisContainer("THUMBSTICK_X", axisContainer("THUMBSTICK_Y")))

	touchpad := node("TOUCHPAD_PRESS",
		node(NodePressed),
		node(NodeUnpressed,
			node(NodeValue, axisContainer("TOUCHPAD_TOUCH_X", axisContainer("TOUCHPAD_TOUCH_Y", node("TOUCH")))),
		),
	)

	return node("RootNode",
		node("Controller"),
		buttonContainer("MENU"),
		buttonContainer("GRASP"),
		thumbPress,
		buttonContainer("SELECT"),
		touchpad,
		node("CrystalKey_6DOF_Pointing_Pose"),
		node("CrystalKey_6DOF_Holding_Pose"),
	)
}

func TestResolveNilRoot(t *testing.T) {
	assert.Nil(t, Resolve(nil, WindowsMixedReality()))
}

func TestResolveControllerTree(t *testing.T) {
	root := controllerTree()
	m := Resolve(root, WindowsMixedReality())
	require.NotNil(t, m)

	assert.Same(t, root, m.Root)
	for _, c := range []Control{Trigger, Menu, Grip, Thumbstick} {
		assert.Contains(t, m.Buttons, c)
	}
	assert.NotContains(t, m.Buttons, Trackpad)
	assert.Equal(t, 1, m.Buttons[Trigger].Index)
	assert.Equal(t, 0, m.Buttons[Thumbstick].Index)

	require.Len(t, m.Axes, 4)
	assert.Equal(t, "THUMBSTICK_X", m.Axes[0].Value.Parent().Name)
	assert.Equal(t, "THUMBSTICK_Y", m.Axes[1].Value.Parent().Name)
	assert.Equal(t, "TOUCHPAD_TOUCH_Y", m.Axes[3].Value.Parent().Name)

	require.NotNil(t, m.PointingPose)
	require.NotNil(t, m.HoldingPose)
}

func TestResolveImmediateChildrenOnly(t *testing.T) {
	// MENU has no landmarks of its own; the nested ones must not be bound.
	root := node("RootNode",
		buttonContainer("SELECT"),
		node("MENU", node("Wrapper", node(NodeValue), node(NodePressed), node(NodeUnpressed))),
	)
	m := Resolve(root, WindowsMixedReality())
	assert.Contains(t, m.Buttons, Trigger)
	assert.NotContains(t, m.Buttons, Menu)
}

func TestResolveSelectWithoutMenu(t *testing.T) {
	root := node("RootNode", buttonContainer("SELECT"), node("MENU"))
	m := Resolve(root, WindowsMixedReality())
	assert.Contains(t, m.Buttons, Trigger)
	assert.NotContains(t, m.Buttons, Menu)
	assert.Empty(t, m.Axes)
	assert.Nil(t, m.PointingPose)
}

func TestResolveDropsIncompleteLandmarks(t *testing.T) {
	for _, missing := range []string{NodeValue, NodePressed, NodeUnpressed} {
		t.Run(missing, func(t *testing.T) {
			sel := buttonContainer("SELECT")
			sel.FindChild(missing).SetParent(nil)
			m := Resolve(node("RootNode", sel), WindowsMixedReality())
			assert.NotContains(t, m.Buttons, Trigger)

			assert.NotPanics(t, func() { m.ApplyButton(Trigger, 1) })
		})
	}
}

func TestResolveIdempotent(t *testing.T) {
	root := controllerTree()
	a := Resolve(root, WindowsMixedReality())
	b := Resolve(root, WindowsMixedReality())

	require.Equal(t, len(a.Buttons), len(b.Buttons))
	for c, lm := range a.Buttons {
		other := b.Buttons[c]
		require.NotNil(t, other)
		assert.Equal(t, lm.Index, other.Index)
		assert.Same(t, lm.Value, other.Value)
		assert.Same(t, lm.Low, other.Low)
		assert.Same(t, lm.High, other.High)
	}
	require.Equal(t, len(a.Axes), len(b.Axes))
	for i, lm := range a.Axes {
		assert.Same(t, lm.Value, b.Axes[i].Value)
	}
}

func TestApplyButtonBoundaries(t *testing.T) {
	m := Resolve(controllerTree(), WindowsMixedReality())
	lm := m.Buttons[Trigger]

	m.ApplyButton(Trigger, 0)
	assert.Equal(t, lm.Low.Transform.Rotation, lm.Value.Transform.Rotation)
	assert.Equal(t, lm.Low.Transform.Position, lm.Value.Transform.Position)

	m.ApplyButton(Trigger, 1)
	assert.Equal(t, lm.High.Transform.Rotation, lm.Value.Transform.Rotation)
	assert.Equal(t, lm.High.Transform.Position, lm.Value.Transform.Position)
}

func TestApplyButtonMidway(t *testing.T) {
	m := Resolve(controllerTree(), WindowsMixedReality())
	lm := m.Buttons[Grip]

	m.ApplyButton(Grip, 0.5)
	want := mgl64.QuatRotate(math.Pi/12, mgl64.Vec3{1, 0, 0})
	assert.True(t, lm.Value.Transform.Rotation.ApproxEqualThreshold(want, 1e-9))
	assert.True(t, lm.Value.Transform.Position.ApproxEqual(mgl64.Vec3{0, -0.002, 0.002}))

	// Same input, same pose.
	first := lm.Value.Transform
	m.ApplyButton(Grip, 0.5)
	assert.Equal(t, first, lm.Value.Transform)
}

func TestApplyAxis(t *testing.T) {
	m := Resolve(controllerTree(), WindowsMixedReality())
	lm := m.Axes[0]

	m.ApplyAxis(0, -1)
	assert.Equal(t, axisMinRot, lm.Value.Transform.Rotation)
	assert.Equal(t, axisMinPos, lm.Value.Transform.Position)

	m.ApplyAxis(0, 1)
	assert.Equal(t, axisMaxRot, lm.Value.Transform.Rotation)
	assert.Equal(t, axisMaxPos, lm.Value.Transform.Position)

	m.ApplyAxis(0, 0)
	// The midpoint of a symmetric pair is the identity, up to rounding.
	assert.True(t, lm.Value.Transform.Rotation.OrientationEqualThreshold(mgl64.QuatIdent(), 1e-9))
	for i := range 3 {
		assert.InDelta(t, 0, lm.Value.Transform.Position[i], 1e-12)
		assert.InDelta(t, 0, lm.Value.Transform.Rotation.V[i], 1e-12)
	}
}

func TestApplyMissingIsNoop(t *testing.T) {
	m := Resolve(controllerTree(), WindowsMixedReality())
	assert.NotPanics(t, func() {
		m.ApplyButton(Trackpad, 1)
		m.ApplyButton(Control("unknown"), 1)
		m.ApplyAxis(7, 1)
	})

	var nilModel *Model
	assert.NotPanics(t, func() {
		nilModel.ApplyButton(Trigger, 1)
		nilModel.ApplyAxis(0, 1)
	})
}

func TestSlerpShortestArc(t *testing.T) {
	a := mgl64.QuatIdent()
	b := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0}).Scale(-1)

	mid := Slerp(a, b, 0.5)
	want := mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 1, 0})
	assert.True(t, mid.OrientationEqualThreshold(want, 1e-9))
}

func TestLerp(t *testing.T) {
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, Lerp(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 4, 6}, 0.5))
}
