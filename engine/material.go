package engine

import (
	"github.com/google/uuid"
)

// TextureSlot names a material sampler binding, e.g. "albedoTexture".
type TextureSlot string

// Material is a physically based material exposed as a mutable property bag.
// Texture slots are typed; every other property lives in the bag matching its
// value kind.
type Material struct {
	ID   string
	Name string

	Textures map[TextureSlot]*Texture
	Scalars  map[string]float64
	Colors   map[string]Color4
	Flags    map[string]bool
	Extra    map[string]any

	// EnvironmentTexture is the scene environment captured at the last
	// compile. It goes stale when the scene environment changes afterwards.
	EnvironmentTexture *Texture

	finalizers []func(*Material)
	compiled   *Signal
}

func NewMaterial(name string) *Material {
	m := &Material{
		ID:       uuid.NewString(),
		Name:     name,
		Textures: make(map[TextureSlot]*Texture),
		Scalars:  make(map[string]float64),
		Colors:   make(map[string]Color4),
		Flags:    make(map[string]bool),
		Extra:    make(map[string]any),
		compiled: NewSignal(),
	}
	m.Colors["albedoColor"] = RGB(1, 1, 1)
	m.Scalars["roughness"] = 1.0
	m.Scalars["metallic"] = 0.0
	m.Scalars["alpha"] = 1.0
	m.Scalars["indexOfRefraction"] = 1.5
	return m
}

func (m *Material) Texture(slot TextureSlot) *Texture {
	return m.Textures[slot]
}

func (m *Material) SetTexture(slot TextureSlot, tex *Texture) {
	if tex == nil {
		delete(m.Textures, slot)
	} else {
		m.Textures[slot] = tex
	}
	m.MarkDirty()
}

func (m *Material) SetScalar(name string, v float64) { m.Scalars[name] = v }
func (m *Material) SetColor(name string, c Color4)   { m.Colors[name] = c }
func (m *Material) SetExtra(name string, v any)      { m.Extra[name] = v }

// SetFlag writes a boolean define. Flags change the shader variant, so the
// material has to recompile when the value changes.
func (m *Material) SetFlag(name string, v bool) {
	if old, ok := m.Flags[name]; ok && old == v {
		return
	}
	m.Flags[name] = v
	m.MarkDirty()
}

// Finalize registers a setup step run on the next compile, before the
// compiled signal fires. Asset loaders use it to finish material setup.
func (m *Material) Finalize(fn func(*Material)) {
	m.finalizers = append(m.finalizers, fn)
}

func (m *Material) IsCompiled() bool {
	return m.compiled.Fired()
}

// Compiled fires when the current shader variant is ready.
func (m *Material) Compiled() *Signal {
	return m.compiled
}

func (m *Material) MarkDirty() {
	if m.compiled.Fired() {
		m.compiled = NewSignal()
	}
}

// Compile runs pending finalizers, captures env as the environment texture and
// fires the compiled signal.
func (m *Material) Compile(env *Texture) {
	if m.compiled.Fired() {
		return
	}
	finalizers := m.finalizers
	m.finalizers = nil
	for _, fn := range finalizers {
		fn(m)
	}
	if m.EnvironmentTexture == nil {
		m.EnvironmentTexture = env
	}
	m.compiled.Fire()
}
