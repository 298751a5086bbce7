package asset

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"

	"github.com/soar/MotionControllerView/internal/scene"
)

// Importer turns a model reference into detached scene nodes.
type Importer interface {
	Import(ctx context.Context, ref ModelRef) ([]*scene.Node, error)
}

// GLTFImporter decodes glTF and GLB files from a Source.
type GLTFImporter struct {
	Source Source
}

// Import returns the top-level nodes of the document's default scene, each
// carrying its subtree. Imported nodes are not pickable.
func (im *GLTFImporter) Import(ctx context.Context, ref ModelRef) ([]*scene.Node, error) {
	rc, err := im.Source.Open(ctx, ref.Path())
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("asset: read %s: %w", ref.Path(), err)
	}

	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("asset: decode %s: %w", ref.Path(), err)
	}
	return Nodes(doc)
}

// Nodes converts the default scene of doc (or its first scene) into scene nodes.
func Nodes(doc *gltf.Document) ([]*scene.Node, error) {
	nodes := make([]*scene.Node, len(doc.Nodes))
	for i, n := range doc.Nodes {
		sn := scene.NewNode(n.Name)
		sn.Transform = nodeTransform(n)
		sn.Pickable = false
		nodes[i] = sn
	}
	for i, n := range doc.Nodes {
		for _, c := range n.Children {
			if int(c) >= len(nodes) {
				return nil, fmt.Errorf("asset: node %d has invalid child %d", i, c)
			}
			nodes[i].AddChild(nodes[c])
		}
	}

	var roots []uint32
	switch {
	case doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes):
		roots = doc.Scenes[*doc.Scene].Nodes
	case len(doc.Scenes) > 0:
		roots = doc.Scenes[0].Nodes
	default:
		for i, n := range nodes {
			if n.Parent() == nil {
				roots = append(roots, uint32(i))
			}
		}
	}

	out := make([]*scene.Node, 0, len(roots))
	for _, r := range roots {
		if int(r) >= len(nodes) {
			return nil, fmt.Errorf("asset: scene references invalid node %d", r)
		}
		out = append(out, nodes[r])
	}
	return out, nil
}

var identityMatrix = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

func nodeTransform(n *gltf.Node) scene.Transform {
	t := scene.Identity()
	if n.Matrix != identityMatrix && n.Matrix != [16]float64{} {
		m := mgl64.Mat4(n.Matrix)
		t.Position = m.Col(3).Vec3()
		sx, sy, sz := m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len()
		t.Scale = mgl64.Vec3{sx, sy, sz}
		rot := mgl64.Mat3FromCols(m.Col(0).Vec3().Mul(1/sx), m.Col(1).Vec3().Mul(1/sy), m.Col(2).Vec3().Mul(1/sz))
		t.Rotation = mgl64.Mat4ToQuat(rot.Mat4()).Normalize()
		return t
	}
	t.Position = mgl64.Vec3(n.Translation)
	if n.Rotation != [4]float64{} {
		r := n.Rotation
		t.Rotation = mgl64.Quat{W: r[3], V: mgl64.Vec3{r[0], r[1], r[2]}}
	}
	if n.Scale != [3]float64{} {
		t.Scale = mgl64.Vec3(n.Scale)
	}
	return t
}
