package engine

import (
	"sync/atomic"
)

var nextUniqueID atomic.Uint64

// Mesh is a renderable node. UniqueID is a transient handle assigned per
// process; StableToken is the durable identity stamped from a saved record.
type Mesh struct {
	Node

	UniqueID   uint64
	Synthetic  bool
	Primitive  string
	Material   *Material
	Visibility float32

	StableToken string

	disposed bool
}

func NewMesh(id, name string) *Mesh {
	return &Mesh{
		Node:       *NewNode(id, name),
		UniqueID:   nextUniqueID.Add(1),
		Visibility: 1,
	}
}

// Dispose releases the mesh. Its node stays in place so descendants keep
// their world transform.
func (m *Mesh) Dispose() {
	m.disposed = true
	m.Material = nil
}

func (m *Mesh) IsDisposed() bool {
	return m.disposed
}

// ModelResult is what an asset loader produces for one model file. Meshes are
// in load order; the first entry is usually the loader's synthetic root.
type ModelResult struct {
	Meshes          []*Mesh
	AnimationGroups []string
}
