package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cloverquilt/pkg/errors"
	"github.com/matzehuels/cloverquilt/pkg/prefs"
)

// prefsCommand creates the preferences command.
func (c *CLI) prefsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or edit stored preferences",
	}

	cmd.AddCommand(c.prefsShowCommand())
	cmd.AddCommand(c.prefsColorCommand("stroke", "Set the stroke color", prefs.SaveStroke))
	cmd.AddCommand(c.prefsColorCommand("canvas", "Set the canvas color", prefs.SaveCanvas))
	cmd.AddCommand(c.prefsZoomCommand())
	cmd.AddCommand(c.prefsResetCommand())

	return cmd
}

// withStore opens the preference store for the duration of fn.
func (c *CLI) withStore(ctx context.Context, fn func(prefs.Store) error) error {
	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func (c *CLI) prefsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print every stored preference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(store prefs.Store) error {
				state, warnings := prefs.Load(cmd.Context(), store)
				printKeyValue("Store", c.cfg.Store)
				printKeyValue("Stroke", swatch(state.StrokeColor))
				printKeyValue("Canvas", swatch(state.CanvasColor))
				printKeyValue("Zoom", fmt.Sprintf("%d (tile %d)", state.ZoomLevel, state.TileSize()))
				printKeyValue("Patterns", fmt.Sprint(len(state.Patterns)))
				printKeyValue("Palette", "")
				printPalette(state.Palette)
				for _, w := range warnings {
					printWarning("%s", errors.UserMessage(w))
				}
				return nil
			})
		},
	}
}

func (c *CLI) prefsColorCommand(name, short string, save func(context.Context, prefs.Store, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <color>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(store prefs.Store) error {
				if err := save(cmd.Context(), store, args[0]); err != nil {
					return err
				}
				state, _ := prefs.Load(cmd.Context(), store)
				value := state.CanvasColor
				if name == "stroke" {
					value = state.StrokeColor
				}
				printSuccess("%s color set to %s", name, swatch(value))
				return nil
			})
		},
	}
}

func (c *CLI) prefsZoomCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "zoom <0-9>",
		Short: "Set the pattern zoom level",
		Long:  "Set the pattern zoom level. Levels 0-9 map to tile sizes 50, 100, 200 ... 900.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.New(errors.ErrCodeInvalidInput, "zoom level must be a number, got %q", args[0])
			}
			size, err := prefs.TileSize(level)
			if err != nil {
				return err
			}
			return c.withStore(cmd.Context(), func(store prefs.Store) error {
				if err := prefs.SaveZoom(cmd.Context(), store, level); err != nil {
					return err
				}
				printSuccess("Zoom level %d (tile size %d)", level, size)
				return nil
			})
		},
	}
}

func (c *CLI) prefsResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete every stored preference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(store prefs.Store) error {
				if err := prefs.Reset(cmd.Context(), store); err != nil {
					return err
				}
				printSuccess("Preferences reset to defaults")
				return nil
			})
		},
	}
}
