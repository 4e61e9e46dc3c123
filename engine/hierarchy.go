package engine

import (
	"github.com/go-gl/mathgl/mgl32"
)

// WorldTRS is a decomposed world transform.
type WorldTRS struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// WorldTransform composes n's local transform with every ancestor. Components
// are propagated directly rather than through matrices so negative scales
// survive.
func WorldTransform(n *Node) WorldTRS {
	local := WorldTRS{
		Position: n.Transform.Position,
		Rotation: n.Transform.Orientation(),
		Scale:    n.Transform.Scaling,
	}
	if n.Parent == nil {
		return local
	}
	parentWorld := WorldTransform(n.Parent)

	// WorldPos = ParentPos + ParentRot * (ParentScale * LocalPos)
	scaledLocalPos := mgl32.Vec3{
		local.Position.X() * parentWorld.Scale.X(),
		local.Position.Y() * parentWorld.Scale.Y(),
		local.Position.Z() * parentWorld.Scale.Z(),
	}
	return WorldTRS{
		Position: parentWorld.Position.Add(parentWorld.Rotation.Rotate(scaledLocalPos)),
		Rotation: parentWorld.Rotation.Mul(local.Rotation).Normalize(),
		Scale: mgl32.Vec3{
			parentWorld.Scale.X() * local.Scale.X(),
			parentWorld.Scale.Y() * local.Scale.Y(),
			parentWorld.Scale.Z() * local.Scale.Z(),
		},
	}
}

// IsEnabledInHierarchy reports whether n and all its ancestors are enabled.
func IsEnabledInHierarchy(n *Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if !cur.Enabled {
			return false
		}
	}
	return true
}
