package cli

import (
	"cmp"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cloverquilt/pkg/engine"
	"github.com/matzehuels/cloverquilt/pkg/errors"
	"github.com/matzehuels/cloverquilt/pkg/fill"
	"github.com/matzehuels/cloverquilt/pkg/region"
)

// plan is a TOML fill plan:
//
//	canvas = "#FFF0E6"
//	stroke = "#333333"
//	zoom   = 3
//
//	[fills]
//	shape-0 = "#FFB3BA"
//	shape-4 = "pattern:pattern-9f1c..."
type plan struct {
	Canvas string                 `toml:"canvas"`
	Stroke string                 `toml:"stroke"`
	Zoom   *int                   `toml:"zoom"`
	Fills  map[string]fill.Intent `toml:"fills"`
}

func readPlan(path string) (plan, error) {
	var p plan
	md, err := toml.DecodeFile(path, &p)
	if err != nil {
		return p, errors.Wrap(errors.ErrCodeParse, err, "read plan %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return p, errors.New(errors.ErrCodeParse, "plan %s: unknown key %s", path, undecoded[0])
	}
	return p, nil
}

// fillOpts holds the command-line flags for the fill command.
type fillOpts struct {
	fills     []string // region=intent pairs
	planPath  string   // TOML plan file
	statePath string   // saved design to replay first
	saveState string   // where to write the resulting design
	canvas    string
	stroke    string
	zoom      int
	export    exportOpts
}

// parseFillFlag splits "shape-3=#112233" into a region id and an intent.
func parseFillFlag(s string) (string, fill.Intent, error) {
	id, value, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(id) == "" {
		return "", fill.Intent{}, errors.New(errors.ErrCodeInvalidInput, "invalid --fill %q (want <region>=<color|pattern:id>)", s)
	}
	in, err := fill.Parse(value)
	if err != nil {
		return "", fill.Intent{}, err
	}
	return strings.TrimSpace(id), in, nil
}

// fillCommand creates the fill command.
func (c *CLI) fillCommand() *cobra.Command {
	opts := fillOpts{zoom: -1}

	cmd := &cobra.Command{
		Use:   "fill <drawing.svg>",
		Short: "Fill regions and export the result",
		Long: `Fill regions of a drawing with colors or patterns and export the result.

Fills are applied in this order: a saved design (--state), a TOML plan
(--plan), then individual --fill flags. Presentation flags apply before any
fill. A fill that names an unknown region or pattern is reported and
skipped; the remaining fills still apply.`,
		Example: `  cloverquilt fill quilt.svg --fill shape-0=#FFB3BA --fill shape-3=pattern:gingham -o quilt.png
  cloverquilt fill quilt.svg --plan spring.toml --canvas "#FFF0E6" -o spring.svg
  cloverquilt fill quilt.svg --state design.json --save-state design.json --zoom 2`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDrawing,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if opts.export.output == "" {
				opts.export.output = defaultOutput(args[0], "-filled", ".png")
			}

			ws, err := c.openWorkspace(ctx, args[0])
			if err != nil {
				return err
			}
			defer ws.Close()
			eng := ws.engine

			var p plan
			if opts.planPath != "" {
				if p, err = readPlan(opts.planPath); err != nil {
					return err
				}
			}
			if err := applyPresentation(eng, p, opts, cmd); err != nil {
				return err
			}

			skipped := 0
			report := func(id string, in fill.Intent, err error) {
				skipped++
				printWarning("%s: %s", id, errors.UserMessage(err))
				c.Logger.Debug("fill skipped", "region", id, "fill", in, "err", err)
			}

			if opts.statePath != "" {
				d, err := readDesign(opts.statePath)
				if err != nil {
					return err
				}
				applied, errs := eng.Restore(d)
				for _, err := range errs {
					report(opts.statePath, fill.Intent{}, err)
				}
				c.Logger.Info("design restored", "applied", applied)
			}
			for _, id := range sortedIDs(p.Fills) {
				if _, err := eng.FillRegion(id, p.Fills[id]); err != nil {
					report(id, p.Fills[id], err)
				}
			}
			for _, f := range opts.fills {
				id, in, err := parseFillFlag(f)
				if err != nil {
					report(f, in, err)
					continue
				}
				if _, err := eng.FillRegion(id, in); err != nil {
					report(id, in, err)
				}
			}

			if opts.saveState != "" {
				if err := writeDesign(opts.saveState, eng.Snapshot()); err != nil {
					return err
				}
				printFile(opts.saveState)
			}

			prog := newProgress(loggerFromContext(ctx))
			cached, err := c.exportDrawing(ctx, eng, opts.export)
			if err != nil {
				return err
			}
			prog.done("Exported "+filepath.Base(opts.export.output), "filled", eng.FilledCount(), "skipped", skipped)
			printFile(opts.export.output)
			printRegionStats(eng.FilledCount(), eng.RegionCount(), eng.Tiles().Len(), cached)
			if skipped > 0 {
				printWarning("%d fills skipped", skipped)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&opts.fills, "fill", nil, "fill a region: <region>=<#RRGGBB|pattern:id> (repeatable)")
	cmd.Flags().StringVar(&opts.planPath, "plan", "", "TOML fill plan")
	cmd.Flags().StringVar(&opts.statePath, "state", "", "saved design (JSON) to apply first")
	cmd.Flags().StringVar(&opts.saveState, "save-state", "", "write the resulting design (JSON) to this file")
	cmd.Flags().StringVar(&opts.canvas, "canvas", "", "canvas color")
	cmd.Flags().StringVar(&opts.stroke, "stroke", "", "stroke color")
	cmd.Flags().IntVar(&opts.zoom, "zoom", -1, "pattern zoom level (0-9)")
	opts.export.register(cmd, c.cfg.Scale)
	return cmd
}

// applyPresentation applies plan values first and flags second, so flags
// win when both are given.
func applyPresentation(eng *engine.Engine, p plan, opts fillOpts, cmd *cobra.Command) error {
	canvas, stroke := p.Canvas, p.Stroke
	if opts.canvas != "" {
		canvas = opts.canvas
	}
	if opts.stroke != "" {
		stroke = opts.stroke
	}
	if canvas != "" {
		if err := eng.SetCanvasColor(canvas); err != nil {
			return err
		}
	}
	if stroke != "" {
		if err := eng.SetStrokeColor(stroke); err != nil {
			return err
		}
	}
	zoom := -1
	if p.Zoom != nil {
		zoom = *p.Zoom
	}
	if cmd.Flags().Changed("zoom") {
		zoom = opts.zoom
	}
	if zoom >= 0 || cmd.Flags().Changed("zoom") {
		return eng.SetZoomLevel(zoom)
	}
	return nil
}

func readDesign(path string) (engine.Design, error) {
	var d engine.Design
	data, err := os.ReadFile(path)
	if err != nil {
		return d, errors.Wrap(errors.ErrCodeFileNotFound, err, "read design %s", path)
	}
	if err := json.Unmarshal(data, &d); err != nil {
		return d, errors.Wrap(errors.ErrCodeParse, err, "parse design %s", path)
	}
	return d, nil
}

func writeDesign(path string, d engine.Design) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode design: %w", err)
	}
	return writeOutput(path, append(data, '\n'))
}

func sortedIDs[V any](m map[string]V) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sortRegionIDs(ids)
	return ids
}

// sortRegionIDs orders region ids by their numeric suffix so shape-10
// follows shape-9. Ids without one sort after, by name.
func sortRegionIDs(ids []string) {
	num := func(id string) (int, bool) {
		n, err := strconv.Atoi(strings.TrimPrefix(id, region.IDPrefix))
		return n, err == nil && strings.HasPrefix(id, region.IDPrefix)
	}
	slices.SortFunc(ids, func(a, b string) int {
		na, oka := num(a)
		nb, okb := num(b)
		switch {
		case oka && okb:
			return cmp.Compare(na, nb)
		case oka:
			return -1
		case okb:
			return 1
		}
		return strings.Compare(a, b)
	})
}
