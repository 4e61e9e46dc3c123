package engine

import (
	"github.com/go-gl/mathgl/mgl32"
)

type CameraType uint32

const (
	CameraArcRotate CameraType = iota
	CameraUniversal
)

func (t CameraType) String() string {
	if t == CameraUniversal {
		return "Universal"
	}
	return "ArcRotate"
}

// Camera covers both orbit (ArcRotate) and free (Universal) cameras.
type Camera struct {
	Node

	Type   CameraType
	Alpha  float32
	Beta   float32
	Radius float32
	Target mgl32.Vec3

	ZNear float32
	ZFar  float32

	LowerRadiusLimit *float32
	UpperRadiusLimit *float32

	ControlsAttached bool
}

func NewCamera(id, name string, typ CameraType) *Camera {
	return &Camera{
		Node:   *NewNode(id, name),
		Type:   typ,
		Radius: 10,
		ZNear:  0.1,
		ZFar:   100,
	}
}

func (c *Camera) ClampRadius() {
	if c.LowerRadiusLimit != nil && c.Radius < *c.LowerRadiusLimit {
		c.Radius = *c.LowerRadiusLimit
	}
	if c.UpperRadiusLimit != nil && c.Radius > *c.UpperRadiusLimit {
		c.Radius = *c.UpperRadiusLimit
	}
}

func (c *Camera) AttachControl() { c.ControlsAttached = true }
func (c *Camera) DetachControl() { c.ControlsAttached = false }
