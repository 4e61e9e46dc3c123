package scenery

import (
	"context"
	"fmt"
	"reflect"

	"github.com/gekko3d/scenery/engine"
)

// AssetLoader resolves asset URLs into engine objects. URLs are always
// rooted at AssetURLPrefix. Returned textures may become ready later; callers
// observe Texture.Ready.
type AssetLoader interface {
	LoadModel(ctx context.Context, rootURL, filename string) (*engine.ModelResult, error)
	LoadTexture(ctx context.Context, url string) (*engine.Texture, error)
	LoadEnvironment(ctx context.Context, url string, prefiltered bool) (*engine.Texture, error)
	LoadCubeMap(ctx context.Context, faces [6]string) (*engine.Texture, error)
}

// Loader turns saved scene graphs into a populated engine scene. A Loader
// builds one scene; it is not safe for concurrent use.
type Loader struct {
	resources map[reflect.Type]any

	// models is keyed by model node id and lives for one instantiation.
	models map[string]*ModelInstance
	// activeMarked is the last camera explicitly marked active.
	activeMarked *engine.Camera
}

// LoadReport summarizes one call to Load.
type LoadReport struct {
	Graph         *SceneGraph
	Instantiation *InstantiationReport
	Overrides     *OverrideReport
}

func (l *Loader) addResources(resources ...any) *Loader {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if _, ok := l.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		l.resources[resourceType.Elem()] = resource
	}
	return l
}

func (l *Loader) Scene() *engine.Scene {
	if s, ok := l.resources[reflect.TypeOf(engine.Scene{})].(*engine.Scene); ok {
		return s
	}
	return nil
}

// Assets returns the installed asset loader, or nil when none was installed.
func (l *Loader) Assets() AssetLoader {
	for _, r := range l.resources {
		if al, ok := r.(AssetLoader); ok {
			return al
		}
	}
	return nil
}

// Load parses data, builds the scene, waits for it to become ready and then
// applies material overrides. Only schema errors and context cancellation
// are returned; everything else is isolated and reported.
func (l *Loader) Load(ctx context.Context, data []byte) (*LoadReport, error) {
	graph, err := ParseSceneGraph(data)
	if err != nil {
		return nil, err
	}
	log := l.Logger()
	for _, w := range graph.Warnings {
		log.Warnf("%v", w)
	}

	report := &LoadReport{Graph: graph}
	report.Instantiation, err = l.Instantiate(ctx, graph)
	if err != nil {
		return report, err
	}

	// Overrides run against the loaded, ready scene so they win over the
	// asset's own material setup.
	report.Overrides = l.ApplyOverrides(ctx, graph.MaterialOverrides)
	if err := l.Scene().WhenReady(ctx); err != nil {
		return report, err
	}
	return report, nil
}
