package cli

import (
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cloverquilt/pkg/prefs"
)

var completionShells = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash":       func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
	"zsh":        func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
	"fish":       func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	"powershell": func(root *cobra.Command, w io.Writer) error { return root.GenPowerShellCompletionWithDesc(w) },
}

// completionCommand creates the completion command.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for your shell.

Drawing arguments complete to .svg files and "patterns rm" completes the
ids of stored patterns.

  $ source <(cloverquilt completion bash)
  $ cloverquilt completion zsh > "${fpath[1]}/_cloverquilt"
  $ cloverquilt completion fish > ~/.config/fish/completions/cloverquilt.fish
  PS> cloverquilt completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return completionShells[args[0]](cmd.Root(), cmd.OutOrStdout())
		},
	}
}

// completeDrawing completes the drawing argument with .svg files.
func completeDrawing(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"svg"}, cobra.ShellCompDirectiveFilterFileExt
}

// completePatternIDs completes stored pattern ids not already on the
// command line, described by their display names.
func (c *CLI) completePatternIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	store, err := c.openStore(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer store.Close()

	state, _ := prefs.Load(cmd.Context(), store)
	return patternCompletions(state, args, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func patternCompletions(state prefs.State, args []string, toComplete string) []string {
	var ids []string
	for id, rec := range state.Patterns {
		if slices.Contains(args, id) || !strings.HasPrefix(id, toComplete) {
			continue
		}
		ids = append(ids, id+"\t"+rec.Name)
	}
	slices.Sort(ids)
	return ids
}
