package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/gekko3d/scenery"
	"github.com/spf13/cobra"
)

// ValidationResult describes a parsed scene document.
type ValidationResult struct {
	Source            string         `json:"source"`
	Nodes             int            `json:"nodes"`
	Kinds             map[string]int `json:"kinds"`
	ChildMeshes       int            `json:"childMeshes"`
	Invalid           []string       `json:"invalid,omitempty"`
	HasSettings       bool           `json:"hasSettings"`
	MaterialOverrides int            `json:"materialOverrides"`
	Warnings          []string       `json:"warnings,omitempty"`
}

func (r *ValidationResult) renderText(w io.Writer) {
	fmt.Fprintf(w, "%s: %d nodes\n", r.Source, r.Nodes)
	kinds := make([]string, 0, len(r.Kinds))
	for k := range r.Kinds {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(w, "  %-8s %d\n", k, r.Kinds[k])
	}
	fmt.Fprintf(w, "child meshes: %d\n", r.ChildMeshes)
	fmt.Fprintf(w, "material overrides: %d\n", r.MaterialOverrides)
	for _, inv := range r.Invalid {
		fmt.Fprintf(w, "invalid: %s\n", inv)
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scene.json>",
		Short: "Check a scene document without loading assets",
		Long: `Parse a saved scene document and report its node makeup.

Only a malformed document fails validation. Invalid nodes and broken
optional sections are listed; loading would skip them.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, source string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	data, err := readSource(cmd, source)
	if err != nil {
		return outputReadError(formatter, source, err)
	}
	formatter.VerboseLog("read %d bytes from %s", len(data), source)

	graph, err := scenery.ParseSceneGraph(data)
	if err != nil {
		_ = formatter.Error(ErrCodeSchema, err.Error(), nil)
		return WrapExitError(ExitFailure, "validation failed", err)
	}

	return formatter.Success(summarizeGraph(source, graph))
}

func summarizeGraph(source string, graph *scenery.SceneGraph) *ValidationResult {
	res := &ValidationResult{
		Source:            source,
		Nodes:             len(graph.Nodes),
		Kinds:             make(map[string]int),
		HasSettings:       graph.Settings != nil,
		MaterialOverrides: len(graph.MaterialOverrides),
	}
	for i := range graph.Nodes {
		n := &graph.Nodes[i]
		res.Kinds[string(n.Kind)]++
		if n.IsChildMesh() {
			res.ChildMeshes++
		}
		if n.Kind == scenery.NodeInvalid {
			res.Invalid = append(res.Invalid, n.DecodeErr.Error())
		}
	}
	for _, w := range graph.Warnings {
		res.Warnings = append(res.Warnings, w.Error())
	}
	return res
}

// readSource reads a local file, or stdin for "-".
func readSource(cmd *cobra.Command, source string) ([]byte, error) {
	if source == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(source)
}

func outputReadError(f *OutputFormatter, source string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		_ = f.Error(ErrCodeNotFound, fmt.Sprintf("%s: not found", source), nil)
		return WrapExitError(ExitCommandError, "E003: scene not found", err)
	}
	_ = f.Error(ErrCodeGeneric, err.Error(), nil)
	return WrapExitError(ExitCommandError, "read scene", err)
}
