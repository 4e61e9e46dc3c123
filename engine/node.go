package engine

import (
	"github.com/google/uuid"
)

// Node is the transformable base shared by meshes, transform containers,
// cameras and lights.
type Node struct {
	Handle    string
	ID        string
	Name      string
	Transform *Transform
	Parent    *Node
	Enabled   bool
	Metadata  map[string]any
}

func NewNode(id, name string) *Node {
	return &Node{
		Handle:    uuid.NewString(),
		ID:        id,
		Name:      name,
		Transform: NewTransform(),
		Enabled:   true,
	}
}

func (n *Node) SetParent(parent *Node) {
	n.Parent = parent
	n.Transform.Dirty = true
}

func (n *Node) SetMetadata(key string, v any) {
	if n.Metadata == nil {
		n.Metadata = make(map[string]any)
	}
	n.Metadata[key] = v
}
