package scene

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tree() *Node {
	root := NewNode("RootNode")
	a := NewNode("A")
	b := NewNode("B")
	a1 := NewNode("VALUE")
	a1v := NewNode("X")
	b1 := NewNode("VALUE")
	root.AddChild(a)
	root.AddChild(b)
	a.AddChild(a1)
	a1.AddChild(a1v)
	b.AddChild(b1)
	return root
}

func TestDescendantsPreOrder(t *testing.T) {
	root := tree()
	var names []string
	for _, d := range root.Descendants() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"A", "VALUE", "X", "B", "VALUE"}, names)
}

func TestFindDescendantFirstMatchWins(t *testing.T) {
	root := tree()
	v := root.FindDescendant("VALUE")
	require.NotNil(t, v)
	assert.Equal(t, "A", v.Parent().Name)
	assert.Nil(t, root.FindDescendant("missing"))
}

func TestFindChildIsShallow(t *testing.T) {
	root := tree()
	a := root.FindChild("A")
	require.NotNil(t, a)
	assert.Nil(t, a.FindChild("X"))
	assert.NotNil(t, a.FindChild("VALUE"))
	assert.Nil(t, root.FindChild("VALUE"))
}

func TestSetParentMovesNode(t *testing.T) {
	root := tree()
	a := root.FindChild("A")
	b := root.FindChild("B")
	v := a.FindChild("VALUE")

	v.SetParent(b)
	assert.Same(t, b, v.Parent())
	assert.Nil(t, a.FindChild("VALUE"))
	assert.Len(t, b.Children(), 2)

	v.SetParent(nil)
	assert.Nil(t, v.Parent())
	assert.Len(t, b.Children(), 1)
}

func TestAddRotation(t *testing.T) {
	n := NewNode("n")
	n.AddRotation(math.Pi, 0, 0)
	want := mgl64.QuatRotate(math.Pi, mgl64.Vec3{1, 0, 0})
	assert.True(t, n.Transform.Rotation.OrientationEqualThreshold(want, 1e-9))
}

func TestSceneRegistry(t *testing.T) {
	s := New()
	root := tree()
	require.NoError(t, s.Add(root))
	assert.ErrorIs(t, s.Add(NewNode("RootNode")), ErrDuplicateName)

	assert.Same(t, root, s.NodeByName("RootNode"))
	assert.Equal(t, "X", s.NodeByName("X").Name)
	assert.Nil(t, s.NodeByName("nope"))
	assert.Equal(t, 1, s.Len())

	s.Remove(root)
	assert.Equal(t, 0, s.Len())
}
