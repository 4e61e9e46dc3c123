package scenery

import (
	"fmt"
	"os"
	"time"

	"github.com/gekko3d/scenery/assets"
	"gopkg.in/yaml.v3"
)

type LogConfig struct {
	Prefix string `yaml:"prefix"`
	Debug  bool   `yaml:"debug"`
}

type FetchConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// Config is the on-disk loader configuration.
type Config struct {
	AssetRoot string      `yaml:"asset_root"`
	Log       LogConfig   `yaml:"log"`
	Fetch     FetchConfig `yaml:"fetch"`
}

func DefaultConfig() Config {
	return Config{
		AssetRoot: ".",
		Log:       LogConfig{Prefix: "scenery"},
		Fetch:     FetchConfig{Timeout: 30 * time.Second},
	}
}

// ParseConfig decodes YAML over the defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.AssetRoot == "" {
		cfg.AssetRoot = "."
	}
	return cfg, nil
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// Modules returns the modules a loader built from this config needs.
func (c Config) Modules() []Module {
	return []Module{
		LoggingModule{Prefix: c.Log.Prefix, Debug: c.Log.Debug},
		AssetsModule{Loader: assets.NewServer(c.AssetRoot)},
	}
}
