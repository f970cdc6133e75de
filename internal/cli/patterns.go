package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cloverquilt/pkg/errors"
	"github.com/matzehuels/cloverquilt/pkg/hexcolor"
	"github.com/matzehuels/cloverquilt/pkg/patterns"
	"github.com/matzehuels/cloverquilt/pkg/prefs"
)

// patternsCommand creates the pattern library command.
func (c *CLI) patternsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "patterns",
		Aliases: []string{"pattern"},
		Short:   "Manage the pattern library",
	}

	cmd.AddCommand(c.patternsListCommand())
	cmd.AddCommand(c.patternsAddCommand())
	cmd.AddCommand(c.patternsRemoveCommand())
	cmd.AddCommand(c.patternsClearCommand())
	cmd.AddCommand(c.patternsDefaultsCommand())

	return cmd
}

// withLibrary opens the store, restores the library, runs fn and persists
// the library again when fn reports a change.
func (c *CLI) withLibrary(ctx context.Context, fn func(*patterns.Library) (bool, error)) error {
	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	state, warnings := prefs.Load(ctx, store)
	for _, w := range warnings {
		c.Logger.Warn("ignoring stored preference", "err", w)
	}
	lib, err := c.loadLibrary(ctx, state, false)
	if err != nil {
		return err
	}
	changed, err := fn(lib)
	if err != nil || !changed {
		return err
	}
	return prefs.SavePatterns(ctx, store, lib.Records())
}

func (c *CLI) patternsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List patterns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withLibrary(cmd.Context(), func(lib *patterns.Library) (bool, error) {
				list := lib.List()
				if len(list) == 0 {
					printInfo("No patterns")
					printNextStep("Add one", appName+" patterns add fabric.jpg")
					return false, nil
				}
				fmt.Fprintln(out, patternTable(lib, list))
				uploaded, defaults := lib.Counts()
				printDetail("%d uploaded, %d default", uploaded, defaults)
				return false, nil
			})
		},
	}
}

func patternTable(lib *patterns.Library, list []patterns.Pattern) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	rows := make([][]string, 0, len(list))
	for _, p := range list {
		tone := "—"
		if c, ok := lib.Swatch(p.ID); ok {
			tone = swatch(hexcolor.FromColor(c))
		}
		kind := "uploaded"
		if p.IsDefault {
			kind = "default"
		}
		rows = append(rows, []string{p.ID, p.Name, fmt.Sprintf("%dx%d", p.Width, p.Height), kind, tone})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Size", "Kind", "Tone").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorCyan)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

func (c *CLI) patternsAddCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:     "add <image>...",
		Short:   "Upload pattern images",
		Example: `  cloverquilt patterns add gingham.jpg plaid.png --name "Blue plaid"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if name != "" && len(args) > 1 {
				return errors.New(errors.ErrCodeInvalidInput, "--name needs exactly one image")
			}
			return c.withLibrary(cmd.Context(), func(lib *patterns.Library) (bool, error) {
				added := 0
				for _, path := range args {
					data, err := os.ReadFile(path)
					if err != nil {
						printError("%s: %v", path, err)
						continue
					}
					n := name
					if n == "" {
						base := filepath.Base(path)
						n = strings.TrimSuffix(base, filepath.Ext(base))
					}
					p, err := lib.Add(n, data, false)
					if err != nil {
						printError("%s: %s", path, errors.UserMessage(err))
						continue
					}
					added++
					printSuccess("Added %s %s", StyleHighlight.Render(p.ID), StyleDim.Render(p.Name))
				}
				if added == 0 {
					return false, errors.New(errors.ErrCodeAssetDecode, "no patterns added")
				}
				return true, nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name (single image only)")
	return cmd
}

func (c *CLI) patternsRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "rm <id>...",
		Aliases:           []string{"remove"},
		Short:             "Remove patterns",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: c.completePatternIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withLibrary(cmd.Context(), func(lib *patterns.Library) (bool, error) {
				removed := 0
				for _, id := range args {
					if !lib.Remove(id) {
						printWarning("No pattern %s", id)
						continue
					}
					removed++
				}
				if removed == 0 {
					return false, errors.New(errors.ErrCodeUnknownPattern, "no patterns removed")
				}
				printSuccess("Removed %d patterns", removed)
				return true, nil
			})
		},
	}
}

func (c *CLI) patternsClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every pattern",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withLibrary(cmd.Context(), func(lib *patterns.Library) (bool, error) {
				n := lib.Clear()
				printSuccess("Removed %d patterns", n)
				return true, nil
			})
		},
	}
}

func (c *CLI) patternsDefaultsCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "Load the bundled default patterns",
		Long: `Load the default patterns (1.jpg through 10.jpg) from a directory.

Defaults are only loaded into an empty library; clear it first to reload.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = c.cfg.PatternsDir
			}
			if dir == "" {
				return errors.New(errors.ErrCodeInvalidInput, "no patterns directory (use --dir or patterns_dir in the config)")
			}
			ctx := cmd.Context()
			return c.withLibrary(ctx, func(lib *patterns.Library) (bool, error) {
				n, errs := lib.LoadDefaults(ctx, os.DirFS(dir), patterns.DefaultAssetPaths)
				if err := ctx.Err(); err != nil {
					return false, err
				}
				for _, err := range errs {
					printWarning("%s", errors.UserMessage(err))
				}
				if n == 0 && lib.Len() > 0 {
					printInfo("Library already has %d patterns", lib.Len())
					return false, nil
				}
				printSuccess("Loaded %d default patterns", n)
				return n > 0, nil
			})
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "directory holding the default images")
	return cmd
}
