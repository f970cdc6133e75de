package cli

import (
	"context"
	stderrors "errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cloverquilt/pkg/buildinfo"
	"github.com/matzehuels/cloverquilt/pkg/errors"
)

// SetVersion overrides the build information shown by --version and
// /healthz. Empty values keep what the linker or the module build info
// provided.
func SetVersion(version, commit, date string) {
	for _, kv := range []struct {
		dst *string
		v   string
	}{
		{&buildinfo.Version, version},
		{&buildinfo.Commit, commit},
		{&buildinfo.Date, date},
	} {
		if kv.v != "" {
			*kv.dst = kv.v
		}
	}
}

// Execute runs the CLI. Errors are printed as user-facing messages
// before being returned, so callers only pick an exit code.
//
// --verbose switches logging to debug level; --quiet drops status output
// but keeps warnings and errors in the log.
func Execute(ctx context.Context) error {
	var verbose, quiet bool

	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress status output")

	setup := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(LogDebug)
		}
		if quiet {
			out = io.Discard
		}
		return setup(cmd, args)
	}

	err := root.ExecuteContext(ctx)
	if err != nil && !stderrors.Is(err, context.Canceled) {
		printError("%s", errors.UserMessage(err))
	}
	return err
}
