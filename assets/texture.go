package assets

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/ftrvxmtrx/tga"
	"github.com/mdouchement/hdr/codec/rgbe"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

type configDecoder func(io.Reader) (image.Config, error)

// configDecoders is keyed by extension. TGA has no magic number, so formats
// are chosen by name rather than sniffed.
var configDecoders = map[string]configDecoder{
	".png":  png.DecodeConfig,
	".jpg":  jpeg.DecodeConfig,
	".jpeg": jpeg.DecodeConfig,
	".gif":  gif.DecodeConfig,
	".webp": webp.DecodeConfig,
	".bmp":  bmp.DecodeConfig,
	".tif":  tiff.DecodeConfig,
	".tiff": tiff.DecodeConfig,
	".tga":  tga.DecodeConfig,
	".hdr":  rgbe.DecodeConfig,
}

// IsImage reports whether name has an extension the texture decoder knows.
func IsImage(name string) bool {
	_, ok := configDecoders[strings.ToLower(path.Ext(name))]
	return ok
}

// DecodeImageConfig reads the dimensions of an image without decoding its
// pixels.
func DecodeImageConfig(name string, data []byte) (image.Config, error) {
	ext := strings.ToLower(path.Ext(name))
	decode, ok := configDecoders[ext]
	if !ok {
		return image.Config{}, fmt.Errorf("texture: unknown extension %q", ext)
	}
	cfg, err := decode(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, fmt.Errorf("texture: decode %s: %w", name, err)
	}
	return cfg, nil
}

// Cache remembers decoded image headers by asset path. Failed decodes are
// cached too.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*cacheEntry
	load  func(string) (image.Config, error)
}

type cacheEntry struct {
	cfg image.Config
	err error
}

func NewCache(load func(string) (image.Config, error)) *Cache {
	return &Cache{
		items: make(map[string]*cacheEntry),
		load:  load,
	}
}

func (c *Cache) Resolve(name string) (image.Config, error) {
	// Fast path: read lock
	c.mu.RLock()
	if entry, exists := c.items[name]; exists {
		c.mu.RUnlock()
		return entry.cfg, entry.err
	}
	c.mu.RUnlock()

	cfg, err := c.load(name)

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, exists := c.items[name]; exists {
		return entry.cfg, entry.err
	}
	c.items[name] = &cacheEntry{cfg: cfg, err: err}
	return cfg, err
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
