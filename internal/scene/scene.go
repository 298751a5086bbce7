package scene

import (
	"errors"
	"fmt"
	"sync"
)

var ErrDuplicateName = errors.New("scene: top-level node name already in use")

// Scene owns the top-level nodes. Transform writes from the frame loop and
// reads from viewers are serialized through Update and View.
type Scene struct {
	mu    sync.RWMutex
	nodes []*Node
}

func New() *Scene {
	return &Scene{}
}

// Add registers a top-level node. Names must be unique among top-level nodes.
func (s *Scene) Add(n *Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.nodes {
		if existing.Name == n.Name {
			return fmt.Errorf("%w: %q", ErrDuplicateName, n.Name)
		}
	}
	n.SetParent(nil)
	s.nodes = append(s.nodes, n)
	return nil
}

// Remove drops a top-level node and its subtree.
func (s *Scene) Remove(n *Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.nodes {
		if existing == n {
			s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
			return
		}
	}
}

// NodeByName searches top-level nodes and then their subtrees.
func (s *Scene) NodeByName(name string) *Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.nodes {
		if n.Name == name {
			return n
		}
	}
	for _, n := range s.nodes {
		if d := n.FindDescendant(name); d != nil {
			return d
		}
	}
	return nil
}

// Len returns the number of top-level nodes.
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// Update runs fn with exclusive access to node transforms.
func (s *Scene) Update(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// View runs fn with shared access to node transforms.
func (s *Scene) View(fn func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}
