package scenery

import (
	"context"
	"path"
	"strings"

	"github.com/gekko3d/scenery/engine"
)

const defaultSkyboxSize = 1000

type skyboxSource string

const (
	skyboxNone     skyboxSource = "none"
	skyboxPanorama skyboxSource = "panorama"
	skyboxCube     skyboxSource = "cube"
	skyboxIBL      skyboxSource = "ibl"
)

// resolveSkyboxSource picks the backdrop source: the explicit type, then a
// panorama path, then cube faces, then the loaded environment texture.
func resolveSkyboxSource(env EnvironmentSettings, haveIBL bool) skyboxSource {
	switch strings.ToLower(env.SkyboxType) {
	case "":
	case "panorama", "equirectangular", "hdr":
		return skyboxPanorama
	case "cube", "cubemap", "6faces":
		return skyboxCube
	case "ibl", "environment":
		return skyboxIBL
	case "none":
		return skyboxNone
	default:
		return skyboxNone
	}
	if env.SkyboxPanoramaPath != "" {
		return skyboxPanorama
	}
	if len(env.SkyboxTextures) > 0 {
		return skyboxCube
	}
	if haveIBL {
		return skyboxIBL
	}
	return skyboxNone
}

// cubeFaceURLs orders the saved faces for the cube loader. missing lists the
// faces that were not provided.
func cubeFaceURLs(faces map[string]string) (urls [6]string, missing []string) {
	for i, face := range cubeFaces {
		p := faces[face]
		if p == "" {
			missing = append(missing, face)
			continue
		}
		urls[i] = AssetURL(p)
	}
	return urls, missing
}

func (l *Loader) configureSkybox(ctx context.Context, env EnvironmentSettings) {
	scene := l.Scene()
	if env.UseSkybox != nil && !*env.UseSkybox {
		l.removeSkybox()
		return
	}

	source := resolveSkyboxSource(env, scene.EnvironmentTexture != nil)
	if source == skyboxNone {
		if t := strings.ToLower(env.SkyboxType); t != "" && t != "none" {
			l.Logger().Warnf("unknown skybox type %q, skybox disabled", env.SkyboxType)
		}
		l.removeSkybox()
		return
	}

	var tex *engine.Texture
	switch source {
	case skyboxPanorama:
		tex = l.loadPanorama(ctx, env.SkyboxPanoramaPath)
	case skyboxCube:
		tex = l.loadCubeFaces(ctx, env.SkyboxTextures)
	}
	if tex == nil {
		tex = l.environmentBackdrop()
	}
	if tex == nil {
		if scene.Skybox != nil {
			scene.Skybox.SetVisible(false)
		}
		return
	}

	size := float32(defaultSkyboxSize)
	if env.SkyboxSize != nil && *env.SkyboxSize > 0 {
		size = *env.SkyboxSize
	}
	if scene.Skybox == nil {
		scene.Skybox = engine.NewSkybox(size)
	}
	scene.Skybox.Size = size
	scene.Skybox.SetTexture(tex)
	scene.Skybox.SetVisible(true)
	scene.AddTexture(tex)
}

func (l *Loader) loadPanorama(ctx context.Context, p string) *engine.Texture {
	if p == "" {
		return nil
	}
	assets := l.Assets()
	if assets == nil {
		return nil
	}
	url := AssetURL(p)
	var (
		tex *engine.Texture
		err error
	)
	if strings.EqualFold(path.Ext(url), ".hdr") {
		tex, err = assets.LoadEnvironment(ctx, url, false)
	} else {
		tex, err = assets.LoadTexture(ctx, url)
		if err == nil {
			tex.Kind = engine.TextureEquirectangular
		}
	}
	if err != nil {
		l.Logger().Warnf("skybox panorama unavailable: %v", &AssetLoadError{URL: url, Err: err})
		return nil
	}
	return tex
}

func (l *Loader) loadCubeFaces(ctx context.Context, faces map[string]string) *engine.Texture {
	urls, missing := cubeFaceURLs(faces)
	if len(missing) > 0 {
		l.Logger().Warnf("skybox cube map incomplete, missing faces %v", missing)
		return nil
	}
	assets := l.Assets()
	if assets == nil {
		return nil
	}
	tex, err := assets.LoadCubeMap(ctx, urls)
	if err != nil {
		l.Logger().Warnf("skybox cube map unavailable: %v", &AssetLoadError{URL: urls[0], Err: err})
		return nil
	}
	return tex
}

// environmentBackdrop reuses the image-based lighting texture as the
// backdrop. A clone is returned so the environment keeps its own sampling
// mode.
func (l *Loader) environmentBackdrop() *engine.Texture {
	env := l.Scene().EnvironmentTexture
	if env == nil {
		return nil
	}
	return env.Clone()
}

func (l *Loader) removeSkybox() {
	scene := l.Scene()
	if scene.Skybox == nil {
		return
	}
	scene.Skybox.Mesh.Dispose()
	scene.Skybox = nil
}
