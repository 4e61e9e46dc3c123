package assets

import (
	"context"
	"encoding/binary"
	"testing"
	"testing/fstest"

	"github.com/gekko3d/scenery/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const carGLTF = `{
  "asset": {"version": "2.0"},
  "scene": 0,
  "scenes": [{"nodes": [0]}],
  "nodes": [
    {"name": "Body", "mesh": 0, "children": [1, 2, 3], "rotation": [0, 0.7071068, 0, 0.7071068]},
    {"name": "Wheel", "mesh": 1, "translation": [1, 0, 1]},
    {"name": "wheel", "mesh": 1, "translation": [-1, 0, 1]},
    {"name": "Pivot", "children": [4]},
    {"name": "Door", "mesh": 2}
  ],
  "meshes": [
    {"name": "BodyMesh", "primitives": [{"material": 0}, {"material": 1}]},
    {"name": "WheelMesh", "primitives": [{"material": 1}]},
    {"name": "DoorMesh", "primitives": [{"material": 0}]}
  ],
  "materials": [
    {"name": "CarPaint", "doubleSided": true,
     "pbrMetallicRoughness": {"baseColorFactor": [1, 0, 0, 1], "baseColorTexture": {"index": 0},
       "metallicRoughnessTexture": {"index": 1}}},
    {"name": "Rubber", "extensions": {"KHR_materials_unlit": {}},
     "occlusionTexture": {"index": 1, "texCoord": 1}}
  ],
  "textures": [{"source": 0, "sampler": 0}, {"source": 1}],
  "images": [{"uri": "paint.png"}, {"bufferView": 0, "mimeType": "image/png"}],
  "samplers": [{"wrapS": 33071, "wrapT": 33648}],
  "animations": [{"name": "OpenDoor"}]
}`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return NewServerFS(fstest.MapFS{
		"models/car.gltf":  {Data: []byte(carGLTF)},
		"models/paint.png": {Data: pngBytes(t, 4, 2)},
		"env/studio.env":   {Data: []byte("env")},
		"env/sky.hdr":      {Data: []byte("#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n-Y 256 +X 512\n")},
		"sky/px.png":       {Data: pngBytes(t, 8, 8)},
		"sky/py.png":       {Data: pngBytes(t, 8, 8)},
		"sky/pz.png":       {Data: pngBytes(t, 8, 8)},
		"sky/nx.png":       {Data: pngBytes(t, 8, 8)},
		"sky/ny.png":       {Data: pngBytes(t, 8, 8)},
		"sky/nz.png":       {Data: pngBytes(t, 4, 4)},
	})
}

func TestServerLoadModel_GLTF(t *testing.T) {
	s := newTestServer(t)

	res, err := s.LoadModel(context.Background(), "assets/models/", "car.gltf")
	require.NoError(t, err)

	var names []string
	for _, m := range res.Meshes {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"__root__", "Body", "Body_primitive1", "Wheel", "wheel", "Door"}, names)
	assert.True(t, res.Meshes[0].Synthetic)
	assert.Equal(t, []string{"OpenDoor"}, res.AnimationGroups)

	body := res.Meshes[1]
	require.NotNil(t, body.Transform.RotationQuaternion, "imported meshes are quaternion-driven")
	assert.Same(t, &res.Meshes[0].Node, body.Parent)
	assert.Same(t, &body.Node, res.Meshes[3].Parent)

	door := res.Meshes[5]
	require.NotNil(t, door.Parent)
	assert.Equal(t, "Pivot", door.Parent.Name)

	paint := body.Material
	require.NotNil(t, paint)
	assert.Equal(t, "CarPaint", paint.Name)
	assert.Same(t, paint, door.Material, "materials are shared per glTF index")
	assert.Equal(t, engine.Color4{R: 1, A: 1}, paint.Colors["albedoColor"])

	albedo := paint.Texture("albedoTexture")
	require.NotNil(t, albedo)
	assert.Equal(t, "assets/models/paint.png", albedo.Name)
	assert.Equal(t, 4, albedo.Width)
	assert.Equal(t, 2, albedo.Height)
	assert.Equal(t, engine.WrapClamp, albedo.WrapU)
	assert.Equal(t, engine.WrapMirror, albedo.WrapV)

	mr := paint.Texture("metallicTexture")
	require.NotNil(t, mr)
	assert.Equal(t, "assets/models/car.gltf#image1", mr.Name)

	rubber := res.Meshes[2].Material
	assert.Equal(t, "Rubber", rubber.Name)
	assert.Equal(t, 1, rubber.Texture("ambientTexture").CoordinatesIndex)
}

func TestServerLoadModel_FinalizersRunOnCompile(t *testing.T) {
	s := newTestServer(t)
	res, err := s.LoadModel(context.Background(), "assets/models/", "car.gltf")
	require.NoError(t, err)

	paint := res.Meshes[1].Material
	rubber := res.Meshes[2].Material
	assert.False(t, paint.IsCompiled())

	paint.Compile(nil)
	rubber.Compile(nil)
	assert.False(t, paint.Flags["backFaceCulling"])
	assert.True(t, paint.Flags["useRoughnessFromMetallicTextureGreen"])
	assert.True(t, rubber.Flags["unlit"])
	assert.True(t, rubber.Flags["backFaceCulling"])
}

func TestServerLoadModel_MaterialExtras(t *testing.T) {
	doc := `{
	  "asset": {"version": "2.0"},
	  "nodes": [{"name": "Leaf", "mesh": 0, "translation": [0, 3, 0], "scale": [2, 2, 2]}],
	  "meshes": [{"primitives": [{"material": 0}]}],
	  "materials": [{"name": "Foliage", "alphaMode": "MASK", "alphaCutoff": 0.25,
	    "emissiveFactor": [0, 0.5, 0],
	    "normalTexture": {"index": 0},
	    "emissiveTexture": {"index": 0, "extensions": {"KHR_texture_transform":
	      {"offset": [0.5, 0.25], "scale": [2, 4], "rotation": 1.5, "texCoord": 1}}}}],
	  "textures": [{"source": 0}],
	  "images": [{"uri": "leaf.png"}]
	}`
	s := NewServerFS(fstest.MapFS{
		"plants/leaf.gltf": {Data: []byte(doc)},
		"plants/leaf.png":  {Data: pngBytes(t, 2, 2)},
	})
	res, err := s.LoadModel(context.Background(), "assets/plants/", "leaf.gltf")
	require.NoError(t, err)
	require.Len(t, res.Meshes, 2)

	leaf := res.Meshes[1]
	assert.Equal(t, float32(3), leaf.Transform.Position.Y())
	assert.Equal(t, float32(2), leaf.Transform.Scaling.X())
	assert.Same(t, &res.Meshes[0].Node, leaf.Parent, "parentless nodes hang off the root")

	m := leaf.Material
	assert.Equal(t, float64(1), m.Scalars["transparencyMode"])
	assert.InDelta(t, 0.25, m.Scalars["alphaCutOff"], 1e-6)
	assert.Equal(t, engine.RGB(0, 0.5, 0), m.Colors["emissiveColor"])

	bump := m.Texture("bumpTexture")
	require.NotNil(t, bump)
	assert.Equal(t, engine.WrapRepeat, bump.WrapU)
	assert.Equal(t, 0, bump.CoordinatesIndex)

	em := m.Texture("emissiveTexture")
	require.NotNil(t, em)
	assert.NotSame(t, bump, em, "each slot owns its texture")
	assert.Equal(t, float32(0.5), em.UOffset)
	assert.Equal(t, float32(0.25), em.VOffset)
	assert.Equal(t, float32(2), em.UScale)
	assert.Equal(t, float32(4), em.VScale)
	assert.Equal(t, float32(-1.5), em.WAng)
	assert.Equal(t, 1, em.CoordinatesIndex)
}

const (
	glbMagic     = 0x46546c67 // "glTF"
	glbChunkJSON = 0x4e4f534a // "JSON"
)

func TestServerLoadModel_GLB(t *testing.T) {
	doc := []byte(`{"asset":{"version":"2.0"},"nodes":[{"name":"Cube","mesh":0}],"meshes":[{"primitives":[{}]}]}`)
	for len(doc)%4 != 0 {
		doc = append(doc, ' ')
	}
	glb := make([]byte, 20, 20+len(doc))
	binary.LittleEndian.PutUint32(glb[0:4], glbMagic)
	binary.LittleEndian.PutUint32(glb[4:8], 2)
	binary.LittleEndian.PutUint32(glb[8:12], uint32(20+len(doc)))
	binary.LittleEndian.PutUint32(glb[12:16], uint32(len(doc)))
	binary.LittleEndian.PutUint32(glb[16:20], glbChunkJSON)
	glb = append(glb, doc...)

	s := NewServerFS(fstest.MapFS{"cube.glb": {Data: glb}})
	res, err := s.LoadModel(context.Background(), "assets/", "cube.glb")
	require.NoError(t, err)
	require.Len(t, res.Meshes, 2)
	assert.Equal(t, "Cube", res.Meshes[1].Name)
	assert.Nil(t, res.Meshes[1].Material)
}

func TestServerLoadModel_Errors(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.LoadModel(ctx, "assets/models/", "missing.gltf")
	assert.Error(t, err)

	_, err = s.LoadModel(ctx, "assets/models/", "paint.png")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = s.LoadModel(ctx, "assets/../", "car.gltf")
	assert.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = s.LoadModel(cancelled, "assets/models/", "car.gltf")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestServerLoadTexture(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	a, err := s.LoadTexture(ctx, "assets/models/paint.png")
	require.NoError(t, err)
	b, err := s.LoadTexture(ctx, "assets/models/paint.png")
	require.NoError(t, err)

	assert.NotSame(t, a, b, "each call returns its own texture")
	assert.NotEqual(t, a.Handle, b.Handle)
	assert.Equal(t, 4, a.Width)
	assert.True(t, a.Ready().Fired())
	assert.Equal(t, 1, s.cache.Len())

	_, err = s.LoadTexture(ctx, "assets/models/nope.png")
	assert.Error(t, err)
}

func TestServerLoadEnvironment(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	env, err := s.LoadEnvironment(ctx, "assets/env/studio.env", true)
	require.NoError(t, err)
	assert.Equal(t, engine.TexturePrefilteredCube, env.Kind)
	assert.True(t, env.Ready().Fired())

	hdr, err := s.LoadEnvironment(ctx, "assets/env/sky.hdr", false)
	require.NoError(t, err)
	assert.Equal(t, engine.TextureCube, hdr.Kind)
	assert.Equal(t, 512, hdr.Width)
	assert.Equal(t, 256, hdr.Height)

	_, err = s.LoadEnvironment(ctx, "assets/env/studio.env", false)
	assert.Error(t, err, "not a radiance file")

	before := s.cache.Len()
	again, err := s.LoadEnvironment(ctx, "assets/env/sky.hdr", false)
	require.NoError(t, err)
	assert.NotSame(t, hdr, again)
	assert.Equal(t, 512, again.Width)
	assert.Equal(t, before, s.cache.Len(), "panorama headers are cached")

	_, err = s.LoadEnvironment(ctx, "assets/env/missing.env", true)
	assert.Error(t, err)
}

func TestServerLoadCubeMap(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	faces := [6]string{"assets/sky/px.png", "assets/sky/py.png", "assets/sky/pz.png",
		"assets/sky/nx.png", "assets/sky/ny.png", "assets/sky/px.png"}
	tex, err := s.LoadCubeMap(ctx, faces)
	require.NoError(t, err)
	assert.Equal(t, engine.TextureCube, tex.Kind)
	assert.Equal(t, 8, tex.Width)

	faces[5] = "assets/sky/nz.png"
	_, err = s.LoadCubeMap(ctx, faces)
	assert.Error(t, err, "mismatched face size")
}
