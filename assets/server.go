// Package assets loads models, textures and environment maps from a file
// tree served under the "assets/" URL prefix.
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/gekko3d/scenery/engine"
)

const urlPrefix = "assets/"

var ErrUnsupportedFormat = errors.New("unsupported asset format")

// Server resolves asset URLs against a file system. It is safe for
// concurrent use.
type Server struct {
	fsys  fs.FS
	cache *Cache
}

func NewServer(root string) *Server {
	return NewServerFS(os.DirFS(root))
}

func NewServerFS(fsys fs.FS) *Server {
	s := &Server{fsys: fsys}
	s.cache = NewCache(s.decodeConfig)
	return s
}

// filePath maps an asset URL to a path inside the file system.
func filePath(url string) (string, error) {
	p := strings.TrimPrefix(url, urlPrefix)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = path.Clean(p)
	if !fs.ValidPath(p) || p == "." {
		return "", fmt.Errorf("invalid asset path %q", url)
	}
	return p, nil
}

func (s *Server) readFile(url string) ([]byte, error) {
	p, err := filePath(url)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(s.fsys, p)
}

func (s *Server) decodeConfig(url string) (image.Config, error) {
	data, err := s.readFile(url)
	if err != nil {
		return image.Config{}, err
	}
	return DecodeImageConfig(url, data)
}

// imageSize looks up decoded dimensions, reporting false for anything that
// cannot be read.
func (s *Server) imageSize(url string) (int, int, bool) {
	if !IsImage(url) {
		return 0, 0, false
	}
	cfg, err := s.cache.Resolve(url)
	if err != nil {
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}

func (s *Server) LoadModel(ctx context.Context, rootURL, filename string) (*engine.ModelResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	url := rootURL + filename
	data, err := s.readFile(url)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".gltf", ".glb":
		p, _ := filePath(url)
		doc, err := decodeGLTF(s.fsys, p, data)
		if err != nil {
			return nil, err
		}
		return buildGLTF(doc, rootURL, filename, s.imageSize)
	case ".vox":
		vf, err := DecodeVox(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("vox: %w", err)
		}
		return voxModelResult(strings.TrimSuffix(filename, path.Ext(filename)), vf), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// LoadTexture returns a new texture for every call so each material slot
// owns its UV state; decoded headers are shared through the cache.
func (s *Server) LoadTexture(ctx context.Context, url string) (*engine.Texture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg, err := s.cache.Resolve(url)
	if err != nil {
		return nil, err
	}
	tex := engine.NewTexture(url, engine.Texture2D)
	tex.Width, tex.Height = cfg.Width, cfg.Height
	tex.MarkReady()
	return tex, nil
}

// LoadEnvironment loads an environment map. Prefiltered files (.env, .dds)
// are used as is; HDR panoramas are converted to a cube.
func (s *Server) LoadEnvironment(ctx context.Context, url string, prefiltered bool) (*engine.Texture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tex := engine.NewTexture(url, engine.TexturePrefilteredCube)
	if prefiltered {
		if _, err := s.readFile(url); err != nil {
			return nil, err
		}
	} else {
		cfg, err := s.cache.Resolve(url)
		if err != nil {
			return nil, err
		}
		tex.Kind = engine.TextureCube
		tex.Width, tex.Height = cfg.Width, cfg.Height
	}
	tex.CoordinatesMode = engine.CubicMode
	tex.MarkReady()
	return tex, nil
}

// LoadCubeMap loads six faces in +x, +y, +z, -x, -y, -z order. Every face
// must decode and all faces must be square and the same size.
func (s *Server) LoadCubeMap(ctx context.Context, faces [6]string) (*engine.Texture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	size := 0
	for i, face := range faces {
		cfg, err := s.cache.Resolve(face)
		if err != nil {
			return nil, fmt.Errorf("cube face %d: %w", i, err)
		}
		if cfg.Width != cfg.Height {
			return nil, fmt.Errorf("cube face %q is not square", face)
		}
		if i == 0 {
			size = cfg.Width
		} else if cfg.Width != size {
			return nil, fmt.Errorf("cube face %q is %dpx, want %dpx", face, cfg.Width, size)
		}
	}
	tex := engine.NewTexture(faces[0], engine.TextureCube)
	tex.Width, tex.Height = size, size
	tex.CoordinatesMode = engine.CubicMode
	tex.MarkReady()
	return tex, nil
}
