package scenery

import (
	"context"
	"path"
	"strings"

	"github.com/gekko3d/scenery/engine"
)

// ParseFogMode maps a saved fog mode name to the engine constant. Unknown
// names disable fog.
func ParseFogMode(s string) engine.FogMode {
	switch strings.ToLower(s) {
	case "exp":
		return engine.FogModeExp
	case "exp2":
		return engine.FogModeExp2
	case "linear":
		return engine.FogModeLinear
	}
	return engine.FogModeNone
}

// ParseToneMappingType maps a saved tone mapping name to the engine constant.
func ParseToneMappingType(s string) engine.ToneMappingType {
	switch strings.ToLower(s) {
	case "aces":
		return engine.ToneMappingACES
	case "neutral", "khr_pbr_neutral", "khrpbrneutral":
		return engine.ToneMappingNeutral
	}
	return engine.ToneMappingStandard
}

// isPrefilteredEnvironment reports whether an environment file is already a
// prefiltered cube (.env, .dds) rather than an HDR panorama.
func isPrefilteredEnvironment(url string) bool {
	switch strings.ToLower(path.Ext(url)) {
	case ".env", ".dds":
		return true
	}
	return false
}

// ConfigureEnvironment applies the scene-wide settings: colors, image-based
// lighting, fog, image processing and the skybox. Asset failures are logged
// and leave the affected feature off.
func (l *Loader) ConfigureEnvironment(ctx context.Context, settings *SceneSettings) {
	if settings == nil {
		return
	}
	scene := l.Scene()
	env := settings.Environment

	if env.ClearColor != nil {
		scene.ClearColor = env.ClearColor.Color4()
	}
	if env.AmbientColor != nil {
		scene.AmbientColor = env.AmbientColor.Color4()
	}

	l.configureIBL(ctx, env)
	scene.Fog = fogFromSettings(scene.Fog, env)
	if settings.ImageProcessing != nil {
		applyImageProcessing(&scene.ImageProcessing, settings.ImageProcessing)
	}
	l.configureSkybox(ctx, env)
}

func (l *Loader) configureIBL(ctx context.Context, env EnvironmentSettings) {
	scene := l.Scene()
	if env.IBLIntensity != nil {
		scene.EnvironmentIntensity = *env.IBLIntensity
	}
	if !env.UseIBL || env.IBLPath == "" {
		scene.EnvironmentTexture = nil
		return
	}
	assets := l.Assets()
	if assets == nil {
		l.Logger().Warnf("image-based lighting skipped: no asset loader installed")
		return
	}

	url := AssetURL(env.IBLPath)
	tex, err := assets.LoadEnvironment(ctx, url, isPrefilteredEnvironment(url))
	if err != nil {
		l.Logger().Warnf("image-based lighting disabled: %v", &AssetLoadError{URL: url, Err: err})
		scene.EnvironmentTexture = nil
		return
	}
	scene.EnvironmentTexture = tex
	scene.AddTexture(tex)
	tex.Ready().Then(func() {
		l.refreshMaterials()
	})
}

// refreshMaterials clears environment references that no longer match the
// scene's environment texture and marks those materials for recompilation.
// It returns the number of materials touched.
func (l *Loader) refreshMaterials() int {
	scene := l.Scene()
	n := 0
	for _, m := range scene.Materials {
		if m.EnvironmentTexture == scene.EnvironmentTexture {
			continue
		}
		m.EnvironmentTexture = nil
		m.MarkDirty()
		n++
	}
	return n
}

func fogFromSettings(fog engine.Fog, env EnvironmentSettings) engine.Fog {
	fog.Mode = ParseFogMode(env.FogMode)
	if env.FogDensity != nil {
		fog.Density = *env.FogDensity
	}
	if env.FogStart != nil {
		fog.Start = *env.FogStart
	}
	if env.FogEnd != nil {
		fog.End = *env.FogEnd
	}
	if env.FogColor != nil {
		fog.Color = env.FogColor.Color4()
	}
	return fog
}

func applyImageProcessing(ip *engine.ImageProcessing, s *ImageProcessingSettings) {
	setFloat(&ip.Contrast, s.Contrast)
	setFloat(&ip.Exposure, s.Exposure)
	setBool(&ip.ToneMappingEnabled, s.ToneMappingEnabled)
	if s.ToneMappingType != "" {
		ip.ToneMappingType = ParseToneMappingType(s.ToneMappingType)
	}

	setBool(&ip.VignetteEnabled, s.VignetteEnabled)
	setFloat(&ip.VignetteWeight, s.VignetteWeight)
	setFloat(&ip.VignetteStretch, s.VignetteStretch)
	setFloat(&ip.VignetteCameraFov, s.VignetteCameraFov)
	setFloat(&ip.VignetteCenterX, s.VignetteCenterX)
	setFloat(&ip.VignetteCenterY, s.VignetteCenterY)
	if s.VignetteColor != nil {
		ip.VignetteColor = s.VignetteColor.Color4()
	}

	setBool(&ip.DitheringEnabled, s.DitheringEnabled)
	setFloat(&ip.DitheringIntensity, s.DitheringIntensity)
}

func setFloat(dst *float32, v *float32) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
