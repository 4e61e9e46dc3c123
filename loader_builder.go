package scenery

import (
	"reflect"

	"github.com/gekko3d/scenery/engine"
)

type Module interface {
	Install(l *Loader)
}

type LoaderBuilder struct {
	loader  *Loader
	modules []Module
}

func NewLoaderBuilder() *LoaderBuilder {
	return &LoaderBuilder{loader: &Loader{
		resources: make(map[reflect.Type]any),
	}}
}

func (b *LoaderBuilder) UseModule(modules ...Module) *LoaderBuilder {
	b.modules = append(b.modules, modules...)

	return b
}

// Build installs the modules in order. A fresh scene is added when no module
// provided one.
func (b *LoaderBuilder) Build() *Loader {
	l := b.loader

	for _, module := range b.modules {
		module.Install(l)
	}
	if l.Scene() == nil {
		l.addResources(engine.NewScene())
	}

	return l
}

// SceneModule installs an existing scene to build into.
type SceneModule struct {
	Scene *engine.Scene
}

func (m SceneModule) Install(l *Loader) {
	l.addResources(m.Scene)
}

// AssetsModule installs the asset loader models and textures come from.
type AssetsModule struct {
	Loader AssetLoader
}

func (m AssetsModule) Install(l *Loader) {
	l.addResources(m.Loader)
}
