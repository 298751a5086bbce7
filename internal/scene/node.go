// Package scene holds the node tree controller models live in: named nodes with a
// parent, ordered children and a local transform.
package scene

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Transform is a node's local position, orientation and scale.
type Transform struct {
	Position mgl64.Vec3 `json:"position"`
	Rotation mgl64.Quat `json:"rotation"`
	Scale    mgl64.Vec3 `json:"scale"`
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

// Node is a named element of the scene tree.
type Node struct {
	Name      string
	Transform Transform
	// Pickable mirrors the engine flag; imported controller parts are not pickable.
	Pickable bool

	parent   *Node
	children []*Node
}

// NewNode creates a detached node with an identity transform.
func NewNode(name string) *Node {
	return &Node{
		Name:      name,
		Transform: Identity(),
		Pickable:  true,
	}
}

// Parent returns the node's parent, or nil for a detached or top-level node.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the immediate children in insertion order.
func (n *Node) Children() []*Node {
	return n.children
}

// AddChild attaches c under n, detaching it from its previous parent first.
func (n *Node) AddChild(c *Node) {
	c.SetParent(n)
}

// SetParent moves n under p. A nil p detaches the node.
func (n *Node) SetParent(p *Node) {
	if n.parent == p {
		return
	}
	if n.parent != nil {
		n.parent.removeChild(n)
	}
	n.parent = p
	if p != nil {
		p.children = append(p.children, n)
	}
}

func (n *Node) removeChild(c *Node) {
	for i, child := range n.children {
		if child == c {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

// Descendants returns every node below n in depth-first pre-order.
func (n *Node) Descendants() []*Node {
	var out []*Node
	n.walk(func(d *Node) bool {
		out = append(out, d)
		return true
	})
	return out
}

// FindDescendant returns the first node below n, in depth-first pre-order,
// whose name is exactly name. Duplicate names are not detected: the first one wins.
func (n *Node) FindDescendant(name string) *Node {
	var found *Node
	n.walk(func(d *Node) bool {
		if d.Name == name {
			found = d
			return false
		}
		return true
	})
	return found
}

// FindChild looks at immediate children only.
func (n *Node) FindChild(name string) *Node {
	for _, c := range n.children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// walk visits descendants until fn returns false.
func (n *Node) walk(fn func(*Node) bool) bool {
	for _, c := range n.children {
		if !fn(c) {
			return false
		}
		if !c.walk(fn) {
			return false
		}
	}
	return true
}

// AddRotation post-multiplies the node's rotation by the Euler angles x, y, z (radians).
func (n *Node) AddRotation(x, y, z float64) {
	q := mgl64.AnglesToQuat(x, y, z, mgl64.XYZ)
	n.Transform.Rotation = n.Transform.Rotation.Mul(q).Normalize()
}
