// Package cli implements the simtrans command-line interface.
//
// # Commands
//
//   - convert: Convert an SDF model to VRML or SDF, optionally re-running on change
//   - inspect: Show the kinematic tree and a summary of links and joints
//   - graph: Render the kinematic diagram as DOT, SVG, PDF or PNG
//   - cache: Manage the mesh cache
//   - completion: Generate shell completion scripts
//
// # Configuration
//
// Settings come from simtrans.toml (see internal/config), the environment
// and per-command flags, in increasing priority. --config names the file
// explicitly.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/simtrans/simtrans/internal/config"
	"github.com/simtrans/simtrans/pkg/buildinfo"
	"github.com/simtrans/simtrans/pkg/cache"
	"github.com/simtrans/simtrans/pkg/pipeline"
)

// appName is the application name used for display.
const appName = "simtrans"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "simtrans converts robot models between simulator formats",
		Long: `simtrans reads robot descriptions in SDF (links, joints, inertia and visual
geometry) and writes them as OpenHRP-style VRML or back to SDF, exporting
mesh geometry as COLLADA and STL side files.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := LogInfo
			if c.verbose {
				level = LogDebug
			}
			c.SetLogLevel(level)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./simtrans.toml, then $XDG_CONFIG_HOME/simtrans/simtrans.toml)")

	root.AddCommand(c.convertCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if cfg.Source != "" {
		c.Logger.Debug("loaded config", "path", cfg.Source)
	}
	c.cfg = cfg
	return nil
}

// config returns the loaded configuration, or the defaults when no command
// has loaded one.
func (c *CLI) config() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// newRunner creates a pipeline runner for CLI use. An unusable cache
// directory degrades to no caching.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cfg := c.config()
	var ch cache.Cache = cache.NewNullCache()
	if !noCache {
		fc, err := cfg.NewCache()
		if err != nil {
			c.Logger.Warn("cache disabled", "dir", cfg.Cache.Dir, "err", err)
		} else {
			ch = fc
		}
	}
	return pipeline.NewRunner(cfg.Pipeline(ch), c.Logger)
}

// stdout is where commands print their results.
var stdout io.Writer = os.Stdout
