package engine

import (
	"github.com/go-gl/mathgl/mgl32"
)

type LightType uint32

const (
	LightTypePoint       LightType = 0
	LightTypeDirectional LightType = 1
	LightTypeSpot        LightType = 2
	LightTypeHemispheric LightType = 3
)

func (t LightType) String() string {
	switch t {
	case LightTypePoint:
		return "Point"
	case LightTypeDirectional:
		return "Directional"
	case LightTypeSpot:
		return "Spot"
	case LightTypeHemispheric:
		return "Hemispheric"
	}
	return "Unknown"
}

// Light is a punctual or hemispheric light. Diffuse is nil when the scene did
// not set a color, leaving the light's own default in effect.
type Light struct {
	Node

	Type        LightType
	Direction   mgl32.Vec3
	Intensity   float32
	Diffuse     *Color4
	GroundColor *Color4
	Range       float32 // point/spot, 0 = unbounded
	Angle       float32 // spot cone angle in radians
	Exponent    float32 // spot falloff
}

// DefaultLightColor is the diffuse color a light uses when none is set.
var DefaultLightColor = RGB(1, 1, 1)

func NewLight(id, name string, typ LightType) *Light {
	return &Light{
		Node:      *NewNode(id, name),
		Type:      typ,
		Direction: mgl32.Vec3{0, 0, 1},
		Intensity: 1,
	}
}

func (l *Light) Color() Color4 {
	if l.Diffuse != nil {
		return *l.Diffuse
	}
	return DefaultLightColor
}
