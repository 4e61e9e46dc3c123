package engine

import (
	"context"
)

// Scene owns every runtime object of one load. It is mutated in place from a
// single goroutine; only readiness signals cross goroutines.
type Scene struct {
	Nodes     []*Node
	Meshes    []*Mesh
	Lights    []*Light
	Cameras   []*Camera
	Materials []*Material
	Textures  []*Texture

	ActiveCamera *Camera
	ActiveMeshes []*Mesh

	ClearColor           Color4
	AmbientColor         Color4
	EnvironmentTexture   *Texture
	EnvironmentIntensity float32
	Fog                  Fog
	ImageProcessing      ImageProcessing
	Skybox               *Skybox
}

func NewScene() *Scene {
	return &Scene{
		ClearColor:           Color4{R: 0.2, G: 0.2, B: 0.3, A: 1},
		EnvironmentIntensity: 1,
		ImageProcessing:      DefaultImageProcessing(),
	}
}

func (s *Scene) AddNode(n *Node) {
	s.Nodes = append(s.Nodes, n)
}

func (s *Scene) AddMesh(m *Mesh) {
	for _, existing := range s.Meshes {
		if existing == m {
			return
		}
	}
	s.Meshes = append(s.Meshes, m)
	if m.Material != nil {
		s.AddMaterial(m.Material)
	}
}

// RemoveMesh drops m from the scene, along with its material once no
// remaining mesh uses it.
func (s *Scene) RemoveMesh(m *Mesh) {
	for i, o := range s.Meshes {
		if o == m {
			s.Meshes = append(s.Meshes[:i], s.Meshes[i+1:]...)
			s.releaseMaterial(m.Material)
			return
		}
	}
}

func (s *Scene) releaseMaterial(mat *Material) {
	if mat == nil {
		return
	}
	for _, o := range s.Meshes {
		if o.Material == mat {
			return
		}
	}
	for i, o := range s.Materials {
		if o == mat {
			s.Materials = append(s.Materials[:i], s.Materials[i+1:]...)
			return
		}
	}
}

func (s *Scene) AddLight(l *Light) {
	s.Lights = append(s.Lights, l)
}

func (s *Scene) AddCamera(c *Camera) {
	s.Cameras = append(s.Cameras, c)
	if s.ActiveCamera == nil {
		s.ActiveCamera = c
	}
}

func (s *Scene) AddMaterial(m *Material) {
	for _, existing := range s.Materials {
		if existing == m {
			return
		}
	}
	s.Materials = append(s.Materials, m)
}

// AddTexture tracks tex so WhenReady waits for it.
func (s *Scene) AddTexture(tex *Texture) {
	for _, existing := range s.Textures {
		if existing == tex {
			return
		}
	}
	s.Textures = append(s.Textures, tex)
}

// MaterialByName returns the first material with exactly this name.
func (s *Scene) MaterialByName(name string) *Material {
	for _, m := range s.Materials {
		if m.Name == name {
			return m
		}
	}
	return nil
}

func (s *Scene) MeshByUniqueID(id uint64) *Mesh {
	for _, m := range s.Meshes {
		if m.UniqueID == id && !m.IsDisposed() {
			return m
		}
	}
	return nil
}

// CompileMaterials compiles every material whose shader variant is stale.
func (s *Scene) CompileMaterials() {
	for _, m := range s.Materials {
		m.Compile(s.EnvironmentTexture)
	}
	if s.Skybox != nil {
		s.Skybox.Mesh.Material.Compile(nil)
	}
}

// WhenReady blocks until every tracked texture is decoded, then compiles
// the materials and refreshes the active mesh set.
func (s *Scene) WhenReady(ctx context.Context) error {
	for _, tex := range s.Textures {
		if err := tex.Ready().Wait(ctx); err != nil {
			return err
		}
	}
	s.CompileMaterials()
	s.Commit()
	return nil
}

// Commit recomputes ActiveMeshes: visible, non-disposed meshes whose whole
// ancestor chain is enabled.
func (s *Scene) Commit() {
	s.ActiveMeshes = s.ActiveMeshes[:0]
	for _, m := range s.Meshes {
		if m.IsDisposed() || !IsEnabledInHierarchy(&m.Node) || m.Visibility <= 0 {
			continue
		}
		s.ActiveMeshes = append(s.ActiveMeshes, m)
	}
}
