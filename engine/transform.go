package engine

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a node-local TRS. Rotation holds Euler angles (radians) unless
// RotationQuaternion is set, in which case the quaternion wins.
type Transform struct {
	Position           mgl32.Vec3
	Rotation           mgl32.Vec3
	RotationQuaternion *mgl32.Quat
	Scaling            mgl32.Vec3
	Dirty              bool
}

func NewTransform() *Transform {
	return &Transform{
		Position: mgl32.Vec3{0, 0, 0},
		Rotation: mgl32.Vec3{0, 0, 0},
		Scaling:  mgl32.Vec3{1, 1, 1},
		Dirty:    true,
	}
}

// EulerToQuat converts yaw (Y), pitch (X), roll (Z) Euler angles into a
// quaternion, matching the editor's rotation order.
func EulerToQuat(euler mgl32.Vec3) mgl32.Quat {
	return mgl32.AnglesToQuat(euler.Y(), euler.X(), euler.Z(), mgl32.YXZ)
}

// Orientation returns the effective rotation as a quaternion.
func (t *Transform) Orientation() mgl32.Quat {
	if t.RotationQuaternion != nil {
		return *t.RotationQuaternion
	}
	return EulerToQuat(t.Rotation)
}

func (t *Transform) SetPosition(p mgl32.Vec3) {
	t.Position = p
	t.Dirty = true
}

// SetRotation writes Euler angles, converting them when the transform is
// already quaternion-driven.
func (t *Transform) SetRotation(euler mgl32.Vec3) {
	if t.RotationQuaternion != nil {
		q := EulerToQuat(euler)
		t.RotationQuaternion = &q
	} else {
		t.Rotation = euler
	}
	t.Dirty = true
}

func (t *Transform) SetScaling(s mgl32.Vec3) {
	t.Scaling = s
	t.Dirty = true
}
