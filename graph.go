package scenery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gekko3d/scenery/engine"
	"github.com/go-gl/mathgl/mgl32"
)

// SceneGraph is the saved, abstract description of a scene.
type SceneGraph struct {
	Nodes             []Node
	Settings          *SceneSettings
	MaterialOverrides MaterialOverrides

	// Warnings collects non-fatal decode problems in optional sections.
	Warnings []error
}

type NodeKind string

const (
	NodeCamera  NodeKind = "camera"
	NodeLight   NodeKind = "light"
	NodeMesh    NodeKind = "mesh"
	NodeModel   NodeKind = "model"
	NodeInvalid NodeKind = "invalid"
)

// childMeshDelimiter separates a model id from a sub-mesh token in saved ids.
const childMeshDelimiter = "::mesh::"

// ChildRef identifies a sub-mesh of a model. Token is unique only within
// ParentID.
type ChildRef struct {
	ParentID string
	Token    string
}

// IsLegacyHandle reports whether the token is a numeric runtime handle from
// older saves rather than a stable token.
func (c ChildRef) IsLegacyHandle() bool {
	if c.Token == "" {
		return false
	}
	for _, r := range c.Token {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (c ChildRef) LegacyHandle() (uint64, bool) {
	if !c.IsLegacyHandle() {
		return 0, false
	}
	v, err := strconv.ParseUint(c.Token, 10, 64)
	return v, err == nil
}

type NodeTransform struct {
	Position mgl32.Vec3
	Rotation *mgl32.Vec3
	Scaling  *mgl32.Vec3
}

// Node is one entry of the saved graph. Exactly one payload matching Kind is
// set; child meshes carry Child instead of a payload.
type Node struct {
	ID        string
	Name      string
	Kind      NodeKind
	Transform NodeTransform
	Enabled   *bool
	Visible   *bool
	ParentID  string

	Child  *ChildRef
	Camera *CameraDef
	Light  *LightDef
	Model  *ModelDef

	// DecodeErr is set for NodeInvalid entries.
	DecodeErr error
}

func (n *Node) IsChildMesh() bool {
	return n.Child != nil
}

// IsVisible merges the visible and enabled flags; both default to true.
func (n *Node) IsVisible() bool {
	return flagOrTrue(n.Visible) && flagOrTrue(n.Enabled)
}

func flagOrTrue(b *bool) bool {
	return b == nil || *b
}

type CameraDef struct {
	Type             string   `json:"type"`
	Alpha            *float32 `json:"alpha"`
	Beta             *float32 `json:"beta"`
	Radius           *float32 `json:"radius"`
	Target           *Vector3 `json:"target"`
	ZNear            *float32 `json:"zNear"`
	ZFar             *float32 `json:"zFar"`
	Active           bool     `json:"active"`
	LowerRadiusLimit *float32 `json:"lowerRadiusLimit"`
	UpperRadiusLimit *float32 `json:"upperRadiusLimit"`
}

type LightDef struct {
	Type        string   `json:"type"`
	Intensity   *float32 `json:"intensity"`
	Color       *Color   `json:"color"`
	Range       *float32 `json:"range"`
	Angle       *float32 `json:"angle"`
	Exponent    *float32 `json:"exponent"`
	GroundColor *Color   `json:"groundColor"`
}

type ModelDef struct {
	Src string `json:"src"`
}

// Vector3 decodes from [x, y, z] or {"x": .., "y": .., "z": ..}.
type Vector3 mgl32.Vec3

func (v *Vector3) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var arr []float32
		if err := json.Unmarshal(data, &arr); err != nil {
			return err
		}
		if len(arr) != 3 {
			return fmt.Errorf("vector3: want 3 components, got %d", len(arr))
		}
		*v = Vector3{arr[0], arr[1], arr[2]}
		return nil
	}
	var obj struct {
		X, Y, Z float32
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*v = Vector3{obj.X, obj.Y, obj.Z}
	return nil
}

func (v *Vector3) vec() mgl32.Vec3 {
	return mgl32.Vec3(*v)
}

// Color decodes from "#rrggbb", "#rrggbbaa", [r, g, b(, a)] or
// {"r", "g", "b"(, "a")}. Alpha defaults to 1.
type Color engine.Color4

func (c *Color) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("color: empty value")
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := parseHexColor(s)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	case '[':
		var arr []float32
		if err := json.Unmarshal(data, &arr); err != nil {
			return err
		}
		if len(arr) != 3 && len(arr) != 4 {
			return fmt.Errorf("color: want 3 or 4 components, got %d", len(arr))
		}
		*c = Color{R: arr[0], G: arr[1], B: arr[2], A: 1}
		if len(arr) == 4 {
			c.A = arr[3]
		}
		return nil
	}
	obj := struct {
		R, G, B float32
		A       *float32
	}{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*c = Color{R: obj.R, G: obj.G, B: obj.B, A: 1}
	if obj.A != nil {
		c.A = *obj.A
	}
	return nil
}

func (c *Color) Color4() engine.Color4 {
	return engine.Color4(*c)
}

func parseHexColor(s string) (Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("color: invalid hex %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("color: invalid hex %q: %w", s, err)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return Color{
		R: float32((v>>24)&0xff) / 255,
		G: float32((v>>16)&0xff) / 255,
		B: float32((v>>8)&0xff) / 255,
		A: float32(v&0xff) / 255,
	}, nil
}

type transformJSON struct {
	Position *Vector3 `json:"position"`
	Rotation *Vector3 `json:"rotation"`
	Scaling  *Vector3 `json:"scaling"`
}

type nodeJSON struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Type      string         `json:"type"`
	Transform *transformJSON `json:"transform"`
	Enabled   *bool          `json:"enabled"`
	Visible   *bool          `json:"visible"`
	ParentID  string         `json:"parentId"`
	Token     string         `json:"token"`
	Src       string         `json:"src"`
	Camera    *CameraDef     `json:"camera"`
	Light     *LightDef      `json:"light"`
	Model     *ModelDef      `json:"model"`
}

// decodeNode turns one raw node into a Node. String parsing of composite ids
// happens here and nowhere else.
func decodeNode(raw json.RawMessage) (Node, error) {
	var nj nodeJSON
	if err := json.Unmarshal(raw, &nj); err != nil {
		return Node{}, err
	}

	n := Node{
		ID:       nj.ID,
		Name:     nj.Name,
		Kind:     NodeKind(strings.ToLower(nj.Type)),
		Enabled:  nj.Enabled,
		Visible:  nj.Visible,
		ParentID: nj.ParentID,
	}
	if nj.Transform != nil {
		if nj.Transform.Position != nil {
			n.Transform.Position = nj.Transform.Position.vec()
		}
		if nj.Transform.Rotation != nil {
			r := nj.Transform.Rotation.vec()
			n.Transform.Rotation = &r
		}
		if nj.Transform.Scaling != nil {
			s := nj.Transform.Scaling.vec()
			n.Transform.Scaling = &s
		}
	}

	switch n.Kind {
	case NodeCamera:
		n.Camera = nj.Camera
		if n.Camera == nil {
			n.Camera = &CameraDef{}
		}
	case NodeLight:
		n.Light = nj.Light
		if n.Light == nil {
			n.Light = &LightDef{}
		}
	case NodeModel:
		n.Model = nj.Model
		if n.Model == nil {
			n.Model = &ModelDef{Src: nj.Src}
		}
	case NodeMesh:
		if nj.ParentID == "" {
			break
		}
		if nj.Token != "" {
			n.Child = &ChildRef{ParentID: nj.ParentID, Token: nj.Token}
		} else if _, token, ok := strings.Cut(nj.ID, childMeshDelimiter); ok {
			n.Child = &ChildRef{ParentID: nj.ParentID, Token: token}
		}
	default:
		return n, fmt.Errorf("%w %q", ErrUnknownNodeKind, nj.Type)
	}
	return n, nil
}
