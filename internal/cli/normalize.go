package cli

import (
	"fmt"
	"io"

	"github.com/gekko3d/scenery"
	"github.com/spf13/cobra"
)

type NormalizedPath struct {
	Input       string `json:"input"`
	Path        string `json:"path"`
	URL         string `json:"url"`
	TextureName string `json:"textureName"`
}

type NormalizeResult struct {
	Paths []NormalizedPath `json:"paths"`
}

func (r *NormalizeResult) renderText(w io.Writer) {
	for _, p := range r.Paths {
		fmt.Fprintf(w, "%s\t%s\n", p.Input, p.URL)
	}
}

// NewNormalizeCommand creates the normalize command.
func NewNormalizeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <storage-path>...",
		Short: "Show the asset URL a storage path resolves to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := &NormalizeResult{}
			for _, in := range args {
				norm := scenery.NormalizePath(in)
				res.Paths = append(res.Paths, NormalizedPath{
					Input:       in,
					Path:        norm,
					URL:         scenery.AssetURL(in),
					TextureName: scenery.TextureBaseName(norm),
				})
			}
			return newFormatter(rootOpts, cmd).Success(res)
		},
	}
}
