package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/gekko3d/scenery"
	"github.com/gekko3d/scenery/assets"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	AssetRoot  string
	Verbose    bool
	Format     string // "json" | "text"
}

var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command of the scenery CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "scenery",
		Short: "Load and inspect saved 3D scene graphs",
		Long: `scenery reads the JSON scene documents an editor saves, checks them and
rebuilds the runtime scene they describe against a local asset directory.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&opts.AssetRoot, "assets", "", "asset directory (overrides config)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewNormalizeCommand(opts))

	return cmd
}

// config resolves the effective configuration: file first, then flags.
func (o *RootOptions) config() (scenery.Config, error) {
	cfg := scenery.DefaultConfig()
	if o.ConfigPath != "" {
		var err error
		if cfg, err = scenery.LoadConfig(o.ConfigPath); err != nil {
			return cfg, err
		}
	}
	if o.AssetRoot != "" {
		cfg.AssetRoot = o.AssetRoot
	}
	if o.Verbose {
		cfg.Log.Debug = true
	}
	return cfg, nil
}

// modules mirrors Config.Modules but sends log lines to logOut so they never
// mix with command output.
func modules(cfg scenery.Config, logOut io.Writer) []scenery.Module {
	return []scenery.Module{
		scenery.LoggingModule{Prefix: cfg.Log.Prefix, Debug: cfg.Log.Debug, Output: logOut},
		scenery.AssetsModule{Loader: assets.NewServer(cfg.AssetRoot)},
	}
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
