package scenery

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync"
	"testing"

	"github.com/gekko3d/scenery/engine"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

// fakeAssets is an in-memory AssetLoader. Models are built fresh on every
// load; textures resolve for any URL not listed in failing.
type fakeAssets struct {
	mu sync.Mutex

	models  map[string]func() *engine.ModelResult
	failing map[string]error
	// pending leaves loaded textures unready until released.
	pending bool

	modelCalls   []string
	textureCalls []string
	envCalls     []envCall
	cubeCalls    [][6]string
	issued       []*engine.Texture
}

type envCall struct {
	URL         string
	Prefiltered bool
}

func newFakeAssets() *fakeAssets {
	return &fakeAssets{
		models:  make(map[string]func() *engine.ModelResult),
		failing: make(map[string]error),
	}
}

func (f *fakeAssets) texture(url string, kind engine.TextureKind) *engine.Texture {
	tex := engine.NewTexture(url, kind)
	if !f.pending {
		tex.MarkReady()
	}
	f.issued = append(f.issued, tex)
	return tex
}

// release marks every issued texture ready.
func (f *fakeAssets) release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tex := range f.issued {
		tex.MarkReady()
	}
}

func (f *fakeAssets) LoadModel(ctx context.Context, rootURL, filename string) (*engine.ModelResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	url := rootURL + filename
	f.modelCalls = append(f.modelCalls, url)
	if err := f.failing[url]; err != nil {
		return nil, err
	}
	build, ok := f.models[url]
	if !ok {
		return nil, fmt.Errorf("no model at %s", url)
	}
	return build(), nil
}

func (f *fakeAssets) LoadTexture(ctx context.Context, url string) (*engine.Texture, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.textureCalls = append(f.textureCalls, url)
	if err := f.failing[url]; err != nil {
		return nil, err
	}
	return f.texture(url, engine.Texture2D), nil
}

func (f *fakeAssets) LoadEnvironment(ctx context.Context, url string, prefiltered bool) (*engine.Texture, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.envCalls = append(f.envCalls, envCall{URL: url, Prefiltered: prefiltered})
	if err := f.failing[url]; err != nil {
		return nil, err
	}
	kind := engine.TextureCube
	if prefiltered {
		kind = engine.TexturePrefilteredCube
	}
	tex := f.texture(url, kind)
	tex.CoordinatesMode = engine.CubicMode
	return tex, nil
}

func (f *fakeAssets) LoadCubeMap(ctx context.Context, faces [6]string) (*engine.Texture, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cubeCalls = append(f.cubeCalls, faces)
	for _, face := range faces {
		if err := f.failing[face]; err != nil {
			return nil, err
		}
	}
	return f.texture(faces[0], engine.TextureCube), nil
}

// carModel mimics an imported car: a synthetic root, then Body, two wheels
// with the same name in different case, a door and a spoiler.
func carModel() *engine.ModelResult {
	root := engine.NewMesh("__root__", "__root__")
	root.Synthetic = true

	paint := engine.NewMaterial("CarPaint")
	albedo := engine.NewTexture("assets/textures/red.png", engine.Texture2D)
	albedo.CoordinatesIndex = 1
	albedo.UOffset = 0.5
	albedo.UScale = 2
	albedo.WrapU = engine.WrapClamp
	albedo.MarkReady()
	paint.SetTexture("albedoTexture", albedo)
	paint.Finalize(func(m *engine.Material) {
		m.SetFlag("unlit", false)
	})
	rubber := engine.NewMaterial("Rubber")

	res := &engine.ModelResult{Meshes: []*engine.Mesh{root}}
	for _, spec := range []struct {
		name string
		mat  *engine.Material
	}{
		{"Body", paint},
		{"Wheel", rubber},
		{"wheel", rubber},
		{"Door", paint},
		{"Spoiler", paint},
	} {
		m := engine.NewMesh(spec.name, spec.name)
		m.Material = spec.mat
		q := mgl32.QuatIdent()
		m.Transform.RotationQuaternion = &q
		m.SetParent(&root.Node)
		res.Meshes = append(res.Meshes, m)
	}
	return res
}

func newTestLoader(assets AssetLoader) *Loader {
	b := NewLoaderBuilder()
	if assets != nil {
		b.UseModule(AssetsModule{Loader: assets})
	}
	return b.Build()
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}
