package scenery

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/gekko3d/scenery/engine"
	"github.com/go-gl/mathgl/mgl32"
)

// primitiveIDs are the reserved node ids that spawn a built-in shape. Any
// other plain mesh node has nothing to load and is skipped.
var primitiveIDs = map[string]string{
	"default-cube":   "box",
	"default-ground": "ground",
	"default-sphere": "sphere",
}

const (
	defaultLightIntensity = 0.7
	defaultSpotAngle      = math.Pi / 3
	defaultSpotExponent   = 2
	defaultCameraAlpha    = -math.Pi / 2
	defaultCameraBeta     = math.Pi / 2.5
	defaultCameraRadius   = 10
)

var errSkipped = errors.New("nothing to spawn")

// ModelInstance is a model node after load and identity resolution.
type ModelInstance struct {
	NodeID    string
	Container *engine.Node
	Meshes    []*engine.Mesh
	byToken   map[string]*engine.Mesh

	AnimationGroups []string
	Identity        IdentityResult
}

// MeshByToken returns the retained mesh stamped with token.
func (m *ModelInstance) MeshByToken(token string) *engine.Mesh {
	return m.byToken[token]
}

func applyNodeTransform(t *engine.Transform, nt NodeTransform) {
	t.SetPosition(nt.Position)
	if nt.Rotation != nil {
		t.SetRotation(*nt.Rotation)
	}
	if nt.Scaling != nil {
		t.SetScaling(*nt.Scaling)
	}
}

func visibility(visible bool) float32 {
	if visible {
		return 1
	}
	return 0
}

func parseCameraType(s string) (engine.CameraType, error) {
	switch strings.ToLower(s) {
	case "", "arcrotate", "arcrotatecamera", "orbit":
		return engine.CameraArcRotate, nil
	case "universal", "universalcamera", "free", "freecamera":
		return engine.CameraUniversal, nil
	}
	return 0, fmt.Errorf("unknown camera type %q", s)
}

func (l *Loader) spawnCamera(node *Node) (*engine.Camera, error) {
	def := node.Camera
	typ, err := parseCameraType(def.Type)
	if err != nil {
		return nil, err
	}

	cam := engine.NewCamera(node.ID, node.Name, typ)
	applyNodeTransform(cam.Transform, node.Transform)
	cam.Enabled = flagOrTrue(node.Enabled)
	cam.Alpha = floatOr(def.Alpha, defaultCameraAlpha)
	cam.Beta = floatOr(def.Beta, defaultCameraBeta)
	cam.Radius = floatOr(def.Radius, defaultCameraRadius)
	if def.Target != nil {
		cam.Target = def.Target.vec()
	}
	cam.ZNear = floatOr(def.ZNear, cam.ZNear)
	cam.ZFar = floatOr(def.ZFar, cam.ZFar)
	cam.LowerRadiusLimit = def.LowerRadiusLimit
	cam.UpperRadiusLimit = def.UpperRadiusLimit
	cam.ClampRadius()

	scene := l.Scene()
	scene.AddCamera(cam)
	if def.Active {
		l.markActiveCamera(cam)
	}
	return cam, nil
}

// markActiveCamera makes cam the active camera. When several cameras claim to
// be active the last one wins.
func (l *Loader) markActiveCamera(cam *engine.Camera) {
	if prev := l.activeMarked; prev != nil && prev != cam {
		l.Logger().Warnf("camera %q replaces %q as active camera", cam.ID, prev.ID)
		prev.DetachControl()
	}
	l.activeMarked = cam
	l.Scene().ActiveCamera = cam
}

func parseLightType(s string) (engine.LightType, error) {
	switch strings.TrimSuffix(strings.ToLower(s), "light") {
	case "point":
		return engine.LightTypePoint, nil
	case "directional":
		return engine.LightTypeDirectional, nil
	case "spot":
		return engine.LightTypeSpot, nil
	case "hemispheric":
		return engine.LightTypeHemispheric, nil
	}
	return 0, fmt.Errorf("unknown light type %q", s)
}

// lightDirection rotates the forward axis by the node's Euler rotation.
func lightDirection(rotation *mgl32.Vec3) mgl32.Vec3 {
	forward := mgl32.Vec3{0, 0, 1}
	if rotation == nil {
		return forward
	}
	return engine.EulerToQuat(*rotation).Rotate(forward)
}

func (l *Loader) spawnLight(node *Node) (*engine.Light, error) {
	def := node.Light
	typ, err := parseLightType(def.Type)
	if err != nil {
		return nil, err
	}

	light := engine.NewLight(node.ID, node.Name, typ)
	light.Enabled = flagOrTrue(node.Enabled)
	light.Intensity = floatOr(def.Intensity, defaultLightIntensity)
	if def.Color != nil {
		c := def.Color.Color4()
		light.Diffuse = &c
	}
	if def.Range != nil {
		light.Range = *def.Range
	}

	switch typ {
	case engine.LightTypeHemispheric:
		light.Direction = mgl32.Vec3{0, 1, 0}
		if def.GroundColor != nil {
			c := def.GroundColor.Color4()
			light.GroundColor = &c
		}
	case engine.LightTypePoint:
		light.Transform.SetPosition(node.Transform.Position)
	case engine.LightTypeSpot:
		light.Transform.SetPosition(node.Transform.Position)
		light.Direction = lightDirection(node.Transform.Rotation)
		light.Angle = floatOr(def.Angle, defaultSpotAngle)
		light.Exponent = floatOr(def.Exponent, defaultSpotExponent)
	case engine.LightTypeDirectional:
		light.Transform.SetPosition(node.Transform.Position)
		light.Direction = lightDirection(node.Transform.Rotation)
	}

	l.Scene().AddLight(light)
	return light, nil
}

// spawnPrimitive creates a built-in shape for reserved ids. Other plain mesh
// nodes return errSkipped.
func (l *Loader) spawnPrimitive(node *Node) (*engine.Mesh, error) {
	shape, ok := primitiveIDs[node.ID]
	if !ok {
		return nil, errSkipped
	}

	mesh := engine.NewMesh(node.ID, node.Name)
	mesh.Primitive = shape
	mesh.Material = engine.NewMaterial(node.ID + "-material")
	applyNodeTransform(mesh.Transform, node.Transform)
	mesh.Enabled = flagOrTrue(node.Enabled)
	mesh.Visibility = visibility(node.IsVisible())

	l.Scene().AddMesh(mesh)
	return mesh, nil
}

// spawnModel loads the model file, places it under a container node and
// reconciles its meshes with the saved child records.
func (l *Loader) spawnModel(ctx context.Context, node *Node, children []Node) (*ModelInstance, error) {
	if node.Model == nil || node.Model.Src == "" {
		return nil, errors.New("model has no source path")
	}
	assets := l.Assets()
	if assets == nil {
		return nil, errors.New("no asset loader installed")
	}

	url := AssetURL(node.Model.Src)
	rootURL, filename := SplitModelURL(url)
	res, err := assets.LoadModel(ctx, rootURL, filename)
	if err != nil {
		return nil, &AssetLoadError{URL: url, Err: err}
	}

	scene := l.Scene()
	container := engine.NewNode(node.ID, node.Name)
	applyNodeTransform(container.Transform, node.Transform)
	container.Enabled = flagOrTrue(node.Enabled)
	container.SetMetadata("src", node.Model.Src)
	scene.AddNode(container)

	for _, m := range res.Meshes {
		if m.Synthetic {
			scene.AddNode(&m.Node)
		} else {
			scene.AddMesh(m)
		}
		if m.Parent == nil {
			m.SetParent(container)
		}
	}

	identity := ResolveIdentities(node, children, res.Meshes)
	for _, m := range identity.Disposed {
		scene.RemoveMesh(m)
	}

	inst := &ModelInstance{
		NodeID:          node.ID,
		Container:       container,
		Meshes:          identity.Retained,
		byToken:         make(map[string]*engine.Mesh, len(identity.Matched)),
		AnimationGroups: res.AnimationGroups,
		Identity:        identity,
	}
	for _, match := range identity.Matched {
		inst.byToken[match.Token] = match.Mesh
	}

	l.Logger().Debugf("model %q: %d meshes loaded, %d retained, %d disposed, %d records unmatched",
		node.ID, len(res.Meshes), len(identity.Retained), len(identity.Disposed), len(identity.Unmatched))
	return inst, nil
}

// applyChildTransform positions a sub-mesh that a previous pass created.
// Stable tokens resolve through the owning model; numeric tokens from older
// saves fall back to the runtime handle.
func (l *Loader) applyChildTransform(node *Node) error {
	ref := node.Child
	var mesh *engine.Mesh
	if inst, ok := l.models[ref.ParentID]; ok {
		mesh = inst.MeshByToken(ref.Token)
	}
	if mesh == nil {
		if handle, ok := ref.LegacyHandle(); ok {
			mesh = l.Scene().MeshByUniqueID(handle)
		}
	}
	if mesh == nil {
		return ErrNoMatch
	}

	applyNodeTransform(mesh.Transform, node.Transform)
	return nil
}

func floatOr(v *float32, def float32) float32 {
	if v == nil {
		return def
	}
	return *v
}
