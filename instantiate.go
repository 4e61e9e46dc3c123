package scenery

import (
	"context"
	"errors"
	"fmt"

	"github.com/gekko3d/scenery/engine"
)

// defaultCameraID names the camera created when a scene authors none.
const defaultCameraID = "default-camera"

// InstantiationReport lists what happened to every node of a graph.
type InstantiationReport struct {
	Created []string
	// Skipped nodes had nothing to spawn (plain mesh ids without a shape).
	Skipped []string
	Failed  []*NodeInstantiationError
	// Unresolved child records matched no runtime mesh.
	Unresolved []string
	Models     map[string]*ModelInstance

	DefaultCamera bool
}

func (r *InstantiationReport) fail(node *Node, err error) {
	r.Failed = append(r.Failed, &NodeInstantiationError{NodeID: node.ID, Kind: node.Kind, Err: err})
}

// Instantiate materializes graph into the loader's scene. Top-level nodes are
// created first; child-mesh transforms are applied once every model has
// loaded. A failing node is reported and never affects its siblings. The
// returned error is non-nil only when ctx is done.
func (l *Loader) Instantiate(ctx context.Context, graph *SceneGraph) (*InstantiationReport, error) {
	if graph == nil {
		return nil, &SchemaError{Message: "nil scene graph"}
	}
	scene := l.Scene()
	log := l.Logger()

	l.models = make(map[string]*ModelInstance)
	l.activeMarked = nil
	report := &InstantiationReport{Models: l.models}

	for i := range graph.Nodes {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		node := &graph.Nodes[i]
		if node.IsChildMesh() {
			continue
		}
		err := l.spawnIsolated(func() error {
			return l.spawnNode(ctx, graph, node)
		})
		switch {
		case err == nil:
			report.Created = append(report.Created, node.ID)
		case errors.Is(err, errSkipped):
			report.Skipped = append(report.Skipped, node.ID)
		default:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}
			log.Warnf("node %q (%s) not instantiated: %v", node.ID, node.Kind, err)
			report.fail(node, err)
		}
	}

	for i := range graph.Nodes {
		node := &graph.Nodes[i]
		if !node.IsChildMesh() {
			continue
		}
		err := l.spawnIsolated(func() error {
			return l.applyChildTransform(node)
		})
		switch {
		case err == nil:
			report.Created = append(report.Created, node.ID)
		case errors.Is(err, ErrNoMatch):
			log.Debugf("child mesh %q: %v", node.ID, err)
			report.Unresolved = append(report.Unresolved, node.ID)
		default:
			log.Warnf("child mesh %q not positioned: %v", node.ID, err)
			report.fail(node, err)
		}
	}

	report.DefaultCamera = l.ensureCamera()

	l.ConfigureEnvironment(ctx, graph.Settings)

	if err := scene.WhenReady(ctx); err != nil {
		return report, err
	}
	if n := l.refreshMaterials(); n > 0 {
		log.Debugf("refreshed %d materials against the environment texture", n)
	}
	scene.Commit()

	log.Infof("scene instantiated: %d created, %d skipped, %d failed, %d unresolved",
		len(report.Created), len(report.Skipped), len(report.Failed), len(report.Unresolved))
	return report, nil
}

func (l *Loader) spawnNode(ctx context.Context, graph *SceneGraph, node *Node) error {
	switch node.Kind {
	case NodeCamera:
		_, err := l.spawnCamera(node)
		return err
	case NodeLight:
		_, err := l.spawnLight(node)
		return err
	case NodeMesh:
		_, err := l.spawnPrimitive(node)
		return err
	case NodeModel:
		inst, err := l.spawnModel(ctx, node, graph.ChildrenOf(node.ID))
		if err != nil {
			return err
		}
		l.models[node.ID] = inst
		return nil
	case NodeInvalid:
		if node.DecodeErr != nil {
			return node.DecodeErr
		}
	}
	return fmt.Errorf("%w %q", ErrUnknownNodeKind, node.Kind)
}

// spawnIsolated turns a panic inside one node's construction into an error.
func (l *Loader) spawnIsolated(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// ensureCamera settles which camera is active and owns input. A scene
// without cameras gets a default orbit camera. Reports whether one was
// created.
func (l *Loader) ensureCamera() bool {
	scene := l.Scene()
	created := false
	if len(scene.Cameras) == 0 {
		cam := engine.NewCamera(defaultCameraID, "Default Camera", engine.CameraArcRotate)
		cam.Alpha = defaultCameraAlpha
		cam.Beta = defaultCameraBeta
		cam.Radius = defaultCameraRadius
		scene.AddCamera(cam)
		created = true
	}
	for _, cam := range scene.Cameras {
		if cam != scene.ActiveCamera {
			cam.DetachControl()
		}
	}
	scene.ActiveCamera.AttachControl()
	return created
}
