package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/simtrans/simtrans/pkg/pipeline"
)

// graphCommand creates the graph command for kinematic diagrams.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		output   string
		detailed bool
		scale    float64
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "graph <model.sdf>",
		Short: "Render the kinematic diagram of a model",
		Long: `Render links as nodes and joints as edges.

The format follows the extension of --output: .dot (or .gv), .svg, .pdf or
.png. Without --output the DOT source is printed. PDF and PNG need
rsvg-convert (librsvg) on PATH.`,
		Example: `  simtrans graph arm/model.sdf -o arm.svg --detailed
  simtrans graph arm/model.sdf | dot -Tpng > arm.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.GraphOptions{Input: args[0], Format: pipeline.FormatDOT, Detailed: detailed, Scale: scale}
			if output != "" {
				format, err := pipeline.GraphFormat(output)
				if err != nil {
					return err
				}
				opts.Format = format
			}

			runner, err := c.newRunner(noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			data, err := runner.Graph(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if output == "" {
				_, err := stdout.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Rendered %s", opts.Format)
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.dot, .svg, .pdf, .png); DOT to stdout if empty")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label nodes with mass and visuals, edges with axis and limits")
	cmd.Flags().Float64Var(&scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "do not read or write the mesh cache")

	return cmd
}
