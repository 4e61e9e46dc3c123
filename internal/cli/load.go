package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/gekko3d/scenery"
	"github.com/gekko3d/scenery/engine"
	"github.com/spf13/cobra"
)

// LoadResult is the deterministic digest of a loaded scene. Runtime handles
// are left out so repeated loads print the same thing.
type LoadResult struct {
	Created       []string         `json:"created"`
	Skipped       []string         `json:"skipped,omitempty"`
	Failed        []NodeFailure    `json:"failed,omitempty"`
	Unresolved    []string         `json:"unresolved,omitempty"`
	DefaultCamera bool             `json:"defaultCamera"`
	ActiveCamera  string           `json:"activeCamera"`
	Meshes        []MeshSummary    `json:"meshes"`
	Lights        []LightSummary   `json:"lights"`
	Materials     []string         `json:"materials"`
	Environment   EnvSummary       `json:"environment"`
	Overrides     []OverrideResult `json:"overrides,omitempty"`
}

type NodeFailure struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

type MeshSummary struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Token    string     `json:"token,omitempty"`
	Parent   string     `json:"parent,omitempty"`
	Position [3]float32 `json:"position"`
	Visible  bool       `json:"visible"`
	Material string     `json:"material,omitempty"`
}

type LightSummary struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Intensity float32 `json:"intensity"`
}

type EnvSummary struct {
	Fog         string `json:"fog"`
	IBL         string `json:"ibl,omitempty"`
	Skybox      bool   `json:"skybox"`
	ToneMapping bool   `json:"toneMapping"`
}

type OverrideResult struct {
	Material string `json:"material"`
	Property string `json:"property,omitempty"`
	Outcome  string `json:"outcome"`
	Error    string `json:"error,omitempty"`
}

func (r *LoadResult) renderText(w io.Writer) {
	fmt.Fprintf(w, "created: %d  skipped: %d  failed: %d  unresolved: %d\n",
		len(r.Created), len(r.Skipped), len(r.Failed), len(r.Unresolved))
	cam := r.ActiveCamera
	if r.DefaultCamera {
		cam += " (default)"
	}
	fmt.Fprintf(w, "active camera: %s\n", cam)
	fmt.Fprintf(w, "meshes: %d  lights: %d  materials: %d\n", len(r.Meshes), len(r.Lights), len(r.Materials))
	fmt.Fprintf(w, "fog: %s  skybox: %t\n", r.Environment.Fog, r.Environment.Skybox)
	for _, f := range r.Failed {
		fmt.Fprintf(w, "! %s %q: %s\n", f.Kind, f.ID, f.Error)
	}
	counts := make(map[string]int)
	for _, o := range r.Overrides {
		counts[o.Outcome]++
	}
	if len(r.Overrides) > 0 {
		fmt.Fprintf(w, "overrides: %d applied, %d skipped, %d deferred, %d failed\n",
			counts[string(scenery.OverrideApplied)], counts[string(scenery.OverrideSkipped)],
			counts[string(scenery.OverrideDeferred)], counts[string(scenery.OverrideFailed)])
	}
	for _, o := range r.Overrides {
		if o.Error != "" {
			fmt.Fprintf(w, "! %s\n", o.Error)
		}
	}
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "load <scene.json|url>",
		Short: "Rebuild a saved scene against the asset directory",
		Long: `Load a scene document from a file or an http(s) URL, instantiate every
node, configure the environment and apply material overrides.

Failing nodes are reported and skipped. With --strict any failed node or
override makes the command exit non-zero.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(rootOpts, args[0], strict, cmd)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when any node or override fails")
	return cmd
}

func runLoad(opts *RootOptions, source string, strict bool, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := opts.config()
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "config", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var data []byte
	if isURL(source) {
		client := &http.Client{Timeout: cfg.Fetch.Timeout}
		data, err = scenery.FetchSceneGraph(ctx, client, source)
		if err != nil {
			_ = formatter.Error(ErrCodeLoad, err.Error(), nil)
			return WrapExitError(ExitCommandError, "fetch scene", err)
		}
	} else if data, err = readSource(cmd, source); err != nil {
		return outputReadError(formatter, source, err)
	}
	formatter.VerboseLog("loading %s with assets from %s", source, cfg.AssetRoot)

	loader := scenery.NewLoaderBuilder().UseModule(modules(cfg, cmd.ErrOrStderr())...).Build()
	report, err := loader.Load(ctx, data)
	if err != nil {
		var schemaErr *scenery.SchemaError
		if errors.As(err, &schemaErr) {
			_ = formatter.Error(ErrCodeSchema, err.Error(), nil)
			return WrapExitError(ExitFailure, "load failed", err)
		}
		_ = formatter.Error(ErrCodeLoad, err.Error(), nil)
		return WrapExitError(ExitFailure, "load failed", err)
	}

	res := summarizeLoad(loader.Scene(), report)
	if err := formatter.Success(res); err != nil {
		return err
	}
	if strict {
		failed := len(res.Failed)
		for _, o := range res.Overrides {
			if o.Outcome == string(scenery.OverrideFailed) {
				failed++
			}
		}
		if failed > 0 {
			return WrapExitError(ExitFailure, fmt.Sprintf("%d failures", failed), nil)
		}
	}
	return nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func summarizeLoad(scene *engine.Scene, report *scenery.LoadReport) *LoadResult {
	inst := report.Instantiation
	res := &LoadResult{
		Created:       inst.Created,
		Skipped:       inst.Skipped,
		Unresolved:    inst.Unresolved,
		DefaultCamera: inst.DefaultCamera,
		Meshes:        []MeshSummary{},
		Lights:        []LightSummary{},
		Materials:     []string{},
	}
	if res.Created == nil {
		res.Created = []string{}
	}
	for _, f := range inst.Failed {
		res.Failed = append(res.Failed, NodeFailure{ID: f.NodeID, Kind: string(f.Kind), Error: f.Err.Error()})
	}
	if scene.ActiveCamera != nil {
		res.ActiveCamera = scene.ActiveCamera.ID
	}

	for _, m := range scene.Meshes {
		ms := MeshSummary{
			ID:       m.ID,
			Name:     m.Name,
			Token:    m.StableToken,
			Position: engine.WorldTransform(&m.Node).Position,
			Visible:  engine.IsEnabledInHierarchy(&m.Node) && m.Visibility > 0,
		}
		if m.Parent != nil {
			ms.Parent = m.Parent.ID
		}
		if m.Material != nil {
			ms.Material = m.Material.Name
		}
		res.Meshes = append(res.Meshes, ms)
	}
	for _, l := range scene.Lights {
		res.Lights = append(res.Lights, LightSummary{ID: l.ID, Type: l.Type.String(), Intensity: l.Intensity})
	}
	for _, m := range scene.Materials {
		res.Materials = append(res.Materials, m.Name)
	}
	sort.Strings(res.Materials)

	res.Environment = EnvSummary{
		Fog:         fogName(scene.Fog.Mode),
		Skybox:      scene.Skybox != nil && scene.Skybox.Visible(),
		ToneMapping: scene.ImageProcessing.ToneMappingEnabled,
	}
	if scene.EnvironmentTexture != nil {
		res.Environment.IBL = scene.EnvironmentTexture.Name
	}

	if report.Overrides != nil {
		for _, e := range report.Overrides.Entries {
			o := OverrideResult{Material: e.Material, Property: e.Property, Outcome: string(e.Outcome)}
			if e.Err != nil {
				o.Error = e.Err.Error()
			}
			res.Overrides = append(res.Overrides, o)
		}
	}
	return res
}

func fogName(mode engine.FogMode) string {
	switch mode {
	case engine.FogModeExp:
		return "exp"
	case engine.FogModeExp2:
		return "exp2"
	case engine.FogModeLinear:
		return "linear"
	}
	return "none"
}
