package engine

import (
	"github.com/google/uuid"
)

type WrapMode uint32

const (
	WrapClamp  WrapMode = 0
	WrapRepeat WrapMode = 1
	WrapMirror WrapMode = 2
)

type CoordinatesMode uint32

const (
	ExplicitMode  CoordinatesMode = 0
	SphericalMode CoordinatesMode = 1
	CubicMode     CoordinatesMode = 3
	SkyboxMode    CoordinatesMode = 5
	EquirectMode  CoordinatesMode = 7
)

type TextureKind uint32

const (
	Texture2D TextureKind = iota
	TextureCube
	TexturePrefilteredCube
	TextureEquirectangular
)

// Texture is a sampled image plus the UV metadata a material binds it with.
type Texture struct {
	Handle string
	// Name is the source identifier the texture was loaded from. Embedded
	// textures carry a '#' fragment.
	Name   string
	Kind   TextureKind
	Width  int
	Height int
	Level  float32

	CoordinatesIndex int
	CoordinatesMode  CoordinatesMode
	UOffset, VOffset float32
	UScale, VScale   float32
	UAng, VAng, WAng float32
	WrapU, WrapV     WrapMode

	ready *Signal
}

func NewTexture(name string, kind TextureKind) *Texture {
	return &Texture{
		Handle: uuid.NewString(),
		Name:   name,
		Kind:   kind,
		Level:  1,
		UScale: 1,
		VScale: 1,
		WrapU:  WrapRepeat,
		WrapV:  WrapRepeat,
		ready:  NewSignal(),
	}
}

// Ready fires once the texture data has been decoded and uploaded.
func (t *Texture) Ready() *Signal {
	return t.ready
}

func (t *Texture) MarkReady() {
	t.ready.Fire()
}

// Clone returns a copy with its own handle that shares the source data and
// readiness of t.
func (t *Texture) Clone() *Texture {
	c := *t
	c.Handle = uuid.NewString()
	return &c
}
