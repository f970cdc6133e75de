package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cloverquilt/pkg/drawing"
	"github.com/matzehuels/cloverquilt/pkg/region"
)

// infoCommand creates the info command.
func (c *CLI) infoCommand() *cobra.Command {
	var (
		listRegions bool
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:               "info <drawing.svg>",
		Short:             "Summarize a drawing's regions",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDrawing,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.openWorkspace(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer ws.Close()

			eng := ws.engine
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(eng.Regions())
			}

			vb, err := eng.Document().ViewBox()
			viewBox := "none"
			if err == nil {
				viewBox = fmt.Sprintf("%s %s %s %s",
					drawing.FormatNumber(vb.MinX), drawing.FormatNumber(vb.MinY),
					drawing.FormatNumber(vb.Width), drawing.FormatNumber(vb.Height))
			}
			pres := eng.Presentation()

			fmt.Fprintln(out, StyleTitle.Render(args[0]))
			printKeyValue("Regions", StyleNumber.Render(fmt.Sprint(eng.RegionCount())))
			printKeyValue("Filled", StyleNumber.Render(fmt.Sprint(eng.FilledCount())))
			printKeyValue("ViewBox", viewBox)
			printKeyValue("Stroke", swatch(pres.StrokeColor))
			printKeyValue("Canvas", swatch(pres.CanvasColor))
			printKeyValue("Tile size", fmt.Sprint(pres.TileSize))
			printKeyValue("Patterns", fmt.Sprint(ws.library.Len()))

			if listRegions {
				printNewline()
				for _, r := range eng.Regions() {
					printRegion(r)
				}
			}
			printNewline()
			printNextStep("Fill it interactively", appName+" paint "+args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&listRegions, "regions", false, "list every region")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print regions as JSON")
	return cmd
}

func printRegion(r region.Snapshot) {
	state := StyleDim.Render("unfilled")
	if r.IsFilled {
		state = StyleSuccess.Render(r.Fill.String())
	}
	fmt.Fprintf(out, "  %-10s %s %s\n", r.ID, swatchOrValue(r.CurrentColor), state)
}

// swatchOrValue renders hex colors as swatches and other paints as text.
func swatchOrValue(paint string) string {
	if len(paint) > 0 && paint[0] == '#' {
		return swatch(paint)
	}
	return StyleDim.Render(paint)
}
