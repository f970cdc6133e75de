package cli

import (
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cloverquilt/pkg/server"
)

const defaultAddr = "127.0.0.1:8080"

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve <drawing.svg>",
		Short: "Serve a drawing over HTTP",
		Long: `Load a drawing and expose the fill engine as a JSON API.

Presentation and pattern changes made through the API are written to the
preference store. PNG exports are served from the export cache.`,
		Example: `  cloverquilt serve quilt.svg
  cloverquilt serve quilt.svg --addr :9000 --store redis`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDrawing,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := c.openWorkspace(ctx, args[0])
			if err != nil {
				return err
			}
			defer ws.Close()

			exports := c.newCache(noCache)
			defer exports.Close()

			srv := server.New(ws.engine, ws.library,
				server.WithLogger(c.Logger),
				server.WithStore(ws.store),
				server.WithCache(exports),
			)
			printSuccess("Serving %s", StyleHighlight.Render(args[0]))
			printDetail("%s", StyleLink.Render("http://"+addr))
			if err := srv.ListenAndServe(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "do not cache PNG exports")
	return cmd
}
