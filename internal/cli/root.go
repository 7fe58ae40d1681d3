package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/simtrans/simtrans/pkg/buildinfo"
)

// SetVersion sets the version information displayed by --version.
// It is typically called by the main package with values injected via
// ldflags. Empty values keep the current ones.
func SetVersion(v, c, d string) {
	if v != "" {
		buildinfo.Version = v
	}
	if c != "" {
		buildinfo.Commit = c
	}
	if d != "" {
		buildinfo.Date = d
	}
}

// Execute runs the simtrans CLI with args and returns an error if any
// command fails. Logs go to stderr at info level, debug with --verbose.
// Errors are printed to stderr with their code and offending token, unless
// ctx was cancelled.
//
//	func main() {
//	    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	    defer stop()
//	    if err := cli.Execute(ctx, os.Args[1:]); err != nil {
//	        os.Exit(1)
//	    }
//	}
func Execute(ctx context.Context, args []string) error {
	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SilenceErrors = true
	err := root.ExecuteContext(ctx)
	if err != nil && ctx.Err() == nil {
		fmt.Fprintln(os.Stderr, styleIconError.Render(iconError)+" "+describeError(err))
	}
	return err
}
