package commands

import (
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/fake/internal/core/domain"
	"go.trai.ch/zerr"
)

var supportedShells = []string{"bash", "zsh", "fish", "powershell"}

func (c *CLI) writeCompletions(w io.Writer, shell string) error {
	switch shell {
	case "bash":
		return c.rootCmd.GenBashCompletionV2(w, true)
	case "zsh":
		return c.rootCmd.GenZshCompletion(w)
	case "fish":
		return c.rootCmd.GenFishCompletion(w, true)
	case "powershell":
		return c.rootCmd.GenPowerShellCompletionWithDesc(w)
	default:
		return zerr.With(zerr.Wrap(domain.ErrUnsupportedShell, "cannot print completions"), "shell", shell)
	}
}

// completeTargets offers the declared targets not already on the command line.
func (c *CLI) completeTargets(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if strings.Contains(toComplete, "=") {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	opts := options(cmd, args)
	var names []string
	for _, name := range c.app.Targets(cmd.Context(), opts) {
		if strings.HasPrefix(name, toComplete) && !slices.Contains(opts.Targets, name) {
			names = append(names, name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
