package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cloverquilt/pkg/cache"
	"github.com/matzehuels/cloverquilt/pkg/engine"
	"github.com/matzehuels/cloverquilt/pkg/errors"
	"github.com/matzehuels/cloverquilt/pkg/render"
)

// Export formats, chosen by output file extension.
const (
	formatPNG = "png"
	formatSVG = "svg"
)

// exportOpts holds the flags shared by every command that writes a drawing.
type exportOpts struct {
	output     string  // output path; the extension picks the format
	scale      float64 // pixels per drawing unit for PNG
	background string  // PNG background color, "none" for transparent
	noCache    bool    // bypass the export cache
}

func (o *exportOpts) register(cmd *cobra.Command, defaultScale float64) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (.png or .svg)")
	cmd.Flags().Float64Var(&o.scale, "scale", 0, fmt.Sprintf("PNG pixels per drawing unit (default %g)", defaultScale))
	cmd.Flags().StringVar(&o.background, "background", "", `PNG background color, "none" for transparent (default: canvas color)`)
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "do not read or write the export cache")
}

// exportFormat returns the format for an output path.
func exportFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return formatPNG, nil
	case ".svg":
		return formatSVG, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "cannot export to %q (want .png or .svg)", path)
}

// defaultOutput derives an output path from the drawing path.
func defaultOutput(drawingPath, suffix, ext string) string {
	base := strings.TrimSuffix(filepath.Base(drawingPath), filepath.Ext(drawingPath))
	return filepath.Join(filepath.Dir(drawingPath), base+suffix+ext)
}

// exportDrawing writes the engine's drawing to opts.output. PNG exports go
// through the export cache; it reports whether the result came from it.
func (c *CLI) exportDrawing(ctx context.Context, eng *engine.Engine, opts exportOpts) (bool, error) {
	if strings.TrimSpace(opts.output) == "" {
		return false, errors.New(errors.ErrCodeInvalidPath, "output path is empty")
	}
	opts.output = filepath.Clean(opts.output)
	format, err := exportFormat(opts.output)
	if err != nil {
		return false, err
	}

	svg := eng.Document().Bytes()
	if format == formatSVG {
		return false, writeOutput(opts.output, svg)
	}

	ropts := render.Options{Scale: opts.scale, Background: opts.background}
	if ropts.Scale == 0 {
		ropts.Scale = c.cfg.Scale
	}
	if ropts.Background == "" {
		ropts.Background = eng.Presentation().CanvasColor
	}

	logger := loggerFromContext(ctx)
	store := c.newCache(opts.noCache)
	defer store.Close()
	key := cache.Keyer{}.ExportKey(svg, cache.ExportOpts{
		Format:     formatPNG,
		Scale:      ropts.Scale,
		Background: ropts.Background,
	})
	if data, hit, err := store.Get(ctx, key); err == nil && hit {
		logger.Debug("export cache hit", "key", key)
		return true, writeOutput(opts.output, data)
	}

	data, err := render.PNG(eng.Document(), eng.Tiles(), ropts)
	if err != nil {
		return false, err
	}
	if err := store.Set(ctx, key, data, cache.DefaultTTL); err != nil {
		logger.Warn("export cache write failed", "err", err)
	}
	return false, writeOutput(opts.output, data)
}

func writeOutput(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export <drawing.svg>",
		Short: "Export a drawing to PNG or SVG",
		Long: `Export a drawing with the stored stroke, canvas and tile size applied.

The format follows the output extension. PNG exports are cached by drawing
content and options, so repeated exports of an unchanged drawing are instant.`,
		Example: `  cloverquilt export quilt.svg -o quilt.png
  cloverquilt export quilt.svg -o quilt.png --scale 4 --background none`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDrawing,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if opts.output == "" {
				opts.output = defaultOutput(args[0], "", ".png")
			}

			ws, err := c.openWorkspace(ctx, args[0])
			if err != nil {
				return err
			}
			defer ws.Close()

			prog := newProgress(loggerFromContext(ctx))
			sp := newSpinner(ctx, os.Stderr, "Exporting "+filepath.Base(opts.output)+"...").start()
			cached, err := c.exportDrawing(ctx, ws.engine, opts)
			sp.finish(err, "")
			if err != nil {
				return err
			}
			prog.done("Exported "+filepath.Base(opts.output), "cached", cached)
			printFile(opts.output)
			printRegionStats(ws.engine.FilledCount(), ws.engine.RegionCount(), ws.engine.Tiles().Len(), cached)
			return nil
		},
	}

	opts.register(cmd, c.cfg.Scale)
	return cmd
}
