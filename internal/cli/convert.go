package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/simtrans/simtrans/pkg/errors"
	"github.com/simtrans/simtrans/pkg/observability"
	"github.com/simtrans/simtrans/pkg/pipeline"
)

// convertOpts holds the command-line flags for the convert command.
type convertOpts struct {
	output      string
	noCache     bool
	watch       bool
	strict      bool
	parallelism int
	templates   string
	searchPaths []string
}

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	var opts convertOpts

	cmd := &cobra.Command{
		Use:   "convert <model.sdf>",
		Short: "Convert a robot model to VRML or SDF",
		Long: `Convert an SDF robot model to another format.

The output format follows the extension of --output:
  .wrl, .vrml   OpenHRP-style VRML97, links nested under their joints
  .sdf          SDF 1.5

Mesh visuals are exported next to the output file as <visual>.dae and
<visual>.stl. model:// and package:// mesh URIs are searched in the
configured search paths, GAZEBO_MODEL_PATH and ROS_PACKAGE_PATH.`,
		Example: `  simtrans convert arm/model.sdf -o out/arm.wrl
  simtrans convert arm/model.sdf -o out/arm.wrl --watch
  simtrans convert arm/model.sdf -o arm.sdf -I /opt/models --strict`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.applyConvertFlags(cmd, &opts); err != nil {
				return err
			}
			po := pipeline.Options{Input: args[0], Output: opts.output, Strict: opts.strict}
			if err := po.Validate(); err != nil {
				return err
			}

			runner, err := c.newRunner(opts.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			meshCache := &observability.CacheCounter{}
			observability.SetCacheHooks(meshCache)
			defer observability.Reset()

			if opts.watch {
				return c.runWatch(cmd.Context(), runner, po, meshCache)
			}
			return c.runConvert(cmd.Context(), runner, po, meshCache)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (.wrl, .vrml or .sdf)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "do not read or write the mesh cache")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "convert again whenever the input directory changes")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail on joints that reference unknown links")
	cmd.Flags().IntVarP(&opts.parallelism, "parallelism", "j", 0, "concurrent mesh writes (overrides config)")
	cmd.Flags().StringVar(&opts.templates, "templates", "", "directory of template overrides (overrides config)")
	cmd.Flags().StringArrayVarP(&opts.searchPaths, "search-path", "I", nil, "extra root for model:// and package:// URIs (repeatable)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// applyConvertFlags layers flags over the loaded configuration.
func (c *CLI) applyConvertFlags(cmd *cobra.Command, opts *convertOpts) error {
	cfg := c.config()
	if cmd.Flags().Changed("parallelism") {
		cfg.Export.Parallelism = opts.parallelism
	}
	if opts.templates != "" {
		cfg.Export.TemplateDir = opts.templates
	}
	if len(opts.searchPaths) > 0 {
		cfg.Paths.Search = append(append([]string(nil), opts.searchPaths...), cfg.Paths.Search...)
	}
	return cfg.Validate()
}

func (c *CLI) runConvert(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, meshCache *observability.CacheCounter) error {
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Converting %s...", filepath.Base(opts.Input)))
	spinner.Start()

	res, err := runner.Convert(ctx, opts)
	if err != nil {
		spinner.StopWithError(describeError(err))
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Converted %s to %s", StyleHighlight.Render(res.Body.Name), res.Format))
	printConversion(res, meshCache)
	if res.Format == pipeline.FormatVRML {
		printNextStep("Inspect the kinematic tree", "simtrans inspect "+opts.Input)
	}
	return nil
}

func (c *CLI) runWatch(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, meshCache *observability.CacheCounter) error {
	printInfo("Watching %s (Ctrl+C to stop)", filepath.Dir(opts.Input))
	return runner.Watch(ctx, opts, 0, func(res *pipeline.Result, err error) {
		if err != nil {
			printError("%s", describeError(err))
			return
		}
		printSuccess("Converted %s to %s", StyleHighlight.Render(res.Body.Name), res.Format)
		printConversion(res, meshCache)
	})
}

// printConversion prints stats and written files, then zeroes meshCache
// for the next run.
func printConversion(res *pipeline.Result, meshCache *observability.CacheCounter) {
	printStats(res.Stats, meshCache.Hits())
	meshCache.Reset()
	for _, f := range res.Files {
		printFile(f)
	}
}

// describeError formats err for the terminal, naming the offending token
// when there is one.
func describeError(err error) string {
	msg := errors.UserMessage(err)
	code := errors.GetCode(err)
	if code == "" {
		return msg
	}
	if tok := errors.TokenOf(err); tok != "" {
		return fmt.Sprintf("%s [%s: %s]", msg, code, tok)
	}
	return fmt.Sprintf("%s [%s]", msg, code)
}
