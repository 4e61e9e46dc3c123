package scenery

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/gekko3d/scenery/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float32Ptr(v float32) *float32 { return &v }
func boolPtr(v bool) *bool          { return &v }

func TestParseFogMode(t *testing.T) {
	assert.Equal(t, engine.FogModeNone, ParseFogMode("none"))
	assert.Equal(t, engine.FogModeExp, ParseFogMode("exp"))
	assert.Equal(t, engine.FogModeExp2, ParseFogMode("EXP2"))
	assert.Equal(t, engine.FogModeLinear, ParseFogMode("linear"))
	assert.Equal(t, engine.FogModeNone, ParseFogMode("volumetric"))
	assert.Equal(t, engine.FogModeNone, ParseFogMode(""))
}

func TestParseToneMappingType(t *testing.T) {
	assert.Equal(t, engine.ToneMappingACES, ParseToneMappingType("ACES"))
	assert.Equal(t, engine.ToneMappingNeutral, ParseToneMappingType("neutral"))
	assert.Equal(t, engine.ToneMappingStandard, ParseToneMappingType("filmic"))
}

func TestConfigureEnvironment_Fog(t *testing.T) {
	l := newTestLoader(newFakeAssets())
	l.ConfigureEnvironment(context.Background(), &SceneSettings{Environment: EnvironmentSettings{
		FogMode:    "exp2",
		FogDensity: float32Ptr(0.02),
		FogColor:   &Color{R: 0.5, G: 0.5, B: 0.5, A: 1},
	}})

	fog := l.Scene().Fog
	assert.Equal(t, engine.FogModeExp2, fog.Mode)
	assert.Equal(t, float32(0.02), fog.Density)
	assert.Equal(t, engine.Color4{R: 0.5, G: 0.5, B: 0.5, A: 1}, fog.Color)

	l.ConfigureEnvironment(context.Background(), &SceneSettings{Environment: EnvironmentSettings{FogMode: "mist"}})
	assert.Equal(t, engine.FogModeNone, l.Scene().Fog.Mode)
}

func TestConfigureEnvironment_ColorsAndImageProcessing(t *testing.T) {
	l := newTestLoader(newFakeAssets())
	l.ConfigureEnvironment(context.Background(), &SceneSettings{
		Environment: EnvironmentSettings{
			ClearColor:   &Color{R: 1, A: 1},
			AmbientColor: &Color{G: 1, A: 1},
		},
		ImageProcessing: &ImageProcessingSettings{
			Exposure:           float32Ptr(1.5),
			ToneMappingEnabled: boolPtr(true),
			ToneMappingType:    "aces",
			VignetteEnabled:    boolPtr(true),
		},
	})

	scene := l.Scene()
	assert.Equal(t, engine.Color4{R: 1, A: 1}, scene.ClearColor)
	assert.Equal(t, engine.Color4{G: 1, A: 1}, scene.AmbientColor)
	ip := scene.ImageProcessing
	assert.Equal(t, float32(1.5), ip.Exposure)
	assert.Equal(t, float32(1), ip.Contrast, "unset values keep their defaults")
	assert.True(t, ip.ToneMappingEnabled)
	assert.Equal(t, engine.ToneMappingACES, ip.ToneMappingType)
	assert.True(t, ip.VignetteEnabled)
}

func TestConfigureEnvironment_IBLKindByExtension(t *testing.T) {
	fake := newFakeAssets()
	l := newTestLoader(fake)
	l.ConfigureEnvironment(context.Background(), &SceneSettings{Environment: EnvironmentSettings{
		UseIBL:       true,
		IBLPath:      "u1/projects/p1/env/studio.ENV",
		IBLIntensity: float32Ptr(0.8),
	}})
	l.ConfigureEnvironment(context.Background(), &SceneSettings{Environment: EnvironmentSettings{
		UseIBL:  true,
		IBLPath: "sky.hdr",
	}})

	require.Len(t, fake.envCalls, 2)
	assert.Equal(t, envCall{URL: "assets/env/studio.ENV", Prefiltered: true}, fake.envCalls[0])
	assert.Equal(t, envCall{URL: "assets/sky.hdr", Prefiltered: false}, fake.envCalls[1])
	assert.Equal(t, float32(0.8), l.Scene().EnvironmentIntensity)
	require.NotNil(t, l.Scene().EnvironmentTexture)
	assert.Equal(t, "assets/sky.hdr", l.Scene().EnvironmentTexture.Name)
}

func TestConfigureEnvironment_IBLFailureLeavesFeatureOff(t *testing.T) {
	fake := newFakeAssets()
	fake.failing["assets/studio.env"] = errors.New("corrupt")
	l := newTestLoader(fake)

	l.ConfigureEnvironment(context.Background(), &SceneSettings{Environment: EnvironmentSettings{
		UseIBL: true, IBLPath: "studio.env",
	}})

	assert.Nil(t, l.Scene().EnvironmentTexture)
	assert.Nil(t, l.Scene().Skybox)
}

func TestConfigureSkybox_IncompleteCubeFallsBackToIBL(t *testing.T) {
	fake := newFakeAssets()
	l := newTestLoader(fake)

	l.ConfigureEnvironment(context.Background(), &SceneSettings{Environment: EnvironmentSettings{
		UseIBL:         true,
		IBLPath:        "studio.env",
		SkyboxTextures: map[string]string{"px": "px.png", "py": "py.png", "pz": "pz.png", "nx": "nx.png", "ny": "ny.png"},
	}})

	scene := l.Scene()
	assert.Empty(t, fake.cubeCalls, "incomplete faces are never loaded")
	require.NotNil(t, scene.Skybox)
	assert.True(t, scene.Skybox.Visible())

	backdrop := scene.Skybox.Texture()
	require.NotNil(t, backdrop)
	assert.Equal(t, scene.EnvironmentTexture.Name, backdrop.Name)
	assert.NotSame(t, scene.EnvironmentTexture, backdrop)
	assert.Equal(t, engine.SkyboxMode, backdrop.CoordinatesMode)
	assert.Equal(t, engine.CubicMode, scene.EnvironmentTexture.CoordinatesMode, "lighting texture keeps its mode")
	assert.True(t, scene.Skybox.Mesh.Material.Flags["disableLighting"])
}

func TestConfigureSkybox_CubeFaces(t *testing.T) {
	fake := newFakeAssets()
	l := newTestLoader(fake)

	l.ConfigureEnvironment(context.Background(), &SceneSettings{Environment: EnvironmentSettings{
		SkyboxTextures: map[string]string{
			"nz": "sky/nz.png", "ny": "sky/ny.png", "nx": "sky/nx.png",
			"pz": "sky/pz.png", "py": "sky/py.png", "px": "sky/px.png",
		},
		SkyboxSize: float32Ptr(500),
	}})

	require.Len(t, fake.cubeCalls, 1)
	assert.Equal(t, [6]string{
		"assets/px.png", "assets/py.png", "assets/pz.png",
		"assets/nx.png", "assets/ny.png", "assets/nz.png",
	}, fake.cubeCalls[0])
	require.NotNil(t, l.Scene().Skybox)
	assert.Equal(t, float32(500), l.Scene().Skybox.Size)
	assert.Equal(t, engine.SkyboxMode, l.Scene().Skybox.Texture().CoordinatesMode)
}

func TestConfigureSkybox_TypeNone(t *testing.T) {
	for _, typ := range []string{"none", "None"} {
		var buf bytes.Buffer
		fake := newFakeAssets()
		l := NewLoaderBuilder().
			UseModule(LoggingModule{Output: &buf}).
			UseModule(AssetsModule{Loader: fake}).
			Build()

		l.ConfigureEnvironment(context.Background(), &SceneSettings{Environment: EnvironmentSettings{
			SkyboxType:         typ,
			SkyboxPanoramaPath: "pano.jpg",
		}})

		assert.Nil(t, l.Scene().Skybox, typ)
		assert.Empty(t, fake.textureCalls, typ)
		assert.NotContains(t, buf.String(), "unknown skybox type", typ)
	}

	var buf bytes.Buffer
	l := NewLoaderBuilder().UseModule(LoggingModule{Output: &buf}).Build()
	l.ConfigureEnvironment(context.Background(), &SceneSettings{Environment: EnvironmentSettings{SkyboxType: "dome"}})
	assert.Contains(t, buf.String(), `unknown skybox type "dome"`)
}

func TestConfigureSkybox_Panorama(t *testing.T) {
	fake := newFakeAssets()
	l := newTestLoader(fake)

	l.ConfigureEnvironment(context.Background(), &SceneSettings{Environment: EnvironmentSettings{
		SkyboxPanoramaPath: "x/assets/pano.jpg",
	}})

	require.NotNil(t, l.Scene().Skybox)
	tex := l.Scene().Skybox.Texture()
	assert.Equal(t, "assets/pano.jpg", tex.Name)
	assert.Equal(t, engine.EquirectMode, tex.CoordinatesMode)
	assert.Equal(t, float32(defaultSkyboxSize), l.Scene().Skybox.Size)
}

func TestConfigureSkybox_NothingUsable(t *testing.T) {
	fake := newFakeAssets()
	fake.failing["assets/pano.jpg"] = errors.New("gone")
	l := newTestLoader(fake)

	l.ConfigureEnvironment(context.Background(), &SceneSettings{Environment: EnvironmentSettings{
		SkyboxPanoramaPath: "pano.jpg",
	}})
	assert.Nil(t, l.Scene().Skybox)
}

func TestConfigureSkybox_Disabled(t *testing.T) {
	l := newTestLoader(newFakeAssets())
	l.ConfigureEnvironment(context.Background(), &SceneSettings{Environment: EnvironmentSettings{
		SkyboxPanoramaPath: "pano.jpg",
	}})
	require.NotNil(t, l.Scene().Skybox)

	l.ConfigureEnvironment(context.Background(), &SceneSettings{Environment: EnvironmentSettings{
		UseSkybox:          boolPtr(false),
		SkyboxPanoramaPath: "pano.jpg",
	}})
	assert.Nil(t, l.Scene().Skybox)
}

func TestResolveSkyboxSource(t *testing.T) {
	assert.Equal(t, skyboxCube, resolveSkyboxSource(EnvironmentSettings{SkyboxType: "cube", SkyboxPanoramaPath: "p.jpg"}, true))
	assert.Equal(t, skyboxPanorama, resolveSkyboxSource(EnvironmentSettings{SkyboxPanoramaPath: "p.jpg", SkyboxTextures: map[string]string{"px": "a"}}, true))
	assert.Equal(t, skyboxCube, resolveSkyboxSource(EnvironmentSettings{SkyboxTextures: map[string]string{"px": "a"}}, true))
	assert.Equal(t, skyboxIBL, resolveSkyboxSource(EnvironmentSettings{}, true))
	assert.Equal(t, skyboxNone, resolveSkyboxSource(EnvironmentSettings{}, false))
	assert.Equal(t, skyboxNone, resolveSkyboxSource(EnvironmentSettings{SkyboxType: "hologram"}, true))
}

func TestRefreshMaterials_TracksEnvironment(t *testing.T) {
	fake := newFakeAssets()
	fake.pending = true
	l := newTestLoader(fake)
	scene := l.Scene()

	mat := engine.NewMaterial("Paint")
	scene.AddMaterial(mat)
	scene.CompileMaterials()
	require.True(t, mat.IsCompiled())
	require.Nil(t, mat.EnvironmentTexture)

	l.ConfigureEnvironment(context.Background(), &SceneSettings{Environment: EnvironmentSettings{
		UseIBL: true, IBLPath: "studio.env",
	}})
	assert.True(t, mat.IsCompiled(), "nothing changes before the environment is ready")

	fake.release()
	assert.False(t, mat.IsCompiled(), "ready environment invalidates stale materials")

	require.NoError(t, scene.WhenReady(context.Background()))
	assert.Same(t, scene.EnvironmentTexture, mat.EnvironmentTexture)
	assert.Equal(t, 0, l.refreshMaterials())
}
