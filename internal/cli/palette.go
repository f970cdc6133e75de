package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cloverquilt/pkg/errors"
	"github.com/matzehuels/cloverquilt/pkg/hexcolor"
	"github.com/matzehuels/cloverquilt/pkg/prefs"
)

// paletteCommand creates the palette management command.
func (c *CLI) paletteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "palette",
		Short: "Show or edit the color palette",
	}

	cmd.AddCommand(c.paletteShowCommand())
	cmd.AddCommand(c.paletteSetCommand())
	cmd.AddCommand(c.paletteResetCommand())

	return cmd
}

func (c *CLI) paletteShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the palette",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			state, warnings := prefs.Load(cmd.Context(), store)
			for _, w := range warnings {
				c.Logger.Warn("ignoring stored preference", "err", w)
			}
			printPalette(state.Palette)
			return nil
		},
	}
}

func printPalette(palette []string) {
	for i, hex := range palette {
		fmt.Fprintf(out, "  %s %s\n", StyleDim.Render(fmt.Sprintf("%2d", paletteKey(i))), swatch(hex))
	}
}

// paletteKey is the number key that selects slot i in the paint TUI.
func paletteKey(i int) int {
	return (i + 1) % prefs.PaletteSize
}

func (c *CLI) paletteSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "set <slot> <color>",
		Short:   "Replace one palette color",
		Long:    "Replace one palette color. Slots are numbered 1-10, matching the paint keys 1-9 and 0.",
		Example: `  cloverquilt palette set 3 "#A0C4FF"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			slot, err := strconv.Atoi(args[0])
			if err != nil || slot < 1 || slot > prefs.PaletteSize {
				return errors.New(errors.ErrCodeInvalidInput, "slot must be 1-%d, got %q", prefs.PaletteSize, args[0])
			}
			hex, err := hexcolor.Normalize(args[1])
			if err != nil {
				return err
			}

			store, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			state, _ := prefs.Load(ctx, store)
			state.Palette[slot-1] = hex
			if err := prefs.SavePalette(ctx, store, state.Palette); err != nil {
				return err
			}
			printSuccess("Slot %d set to %s", slot, swatch(hex))
			return nil
		},
	}
}

func (c *CLI) paletteResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default palette",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			if err := prefs.SavePalette(cmd.Context(), store, prefs.DefaultPalette()); err != nil {
				return err
			}
			printSuccess("Palette reset")
			printPalette(prefs.DefaultPalette())
			return nil
		},
	}
}
