package plugconf

import (
	"io"

	"github.com/spf13/cobra"
)

// completionShells maps each supported shell to its script generator.
var completionShells = map[string]func(io.Writer) error{
	"bash":       rootCmd.GenBashCompletion,
	"zsh":        rootCmd.GenZshCompletion,
	"fish":       func(w io.Writer) error { return rootCmd.GenFishCompletion(w, true) },
	"powershell": rootCmd.GenPowerShellCompletionWithDesc,
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "completion <shell>",
		Short: "Print a shell completion script for plugconf",
		Long: `Print a completion script covering plugconf's commands and flags, such as
--plugin, --modules and resolve --path. Source it from your shell profile, or
write it where your shell loads completions from.`,
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return completionShells[args[0]](cmd.OutOrStdout())
		},
		Example: `
# Try it in the current bash session
source <(plugconf completion bash)

# Install for zsh
plugconf completion zsh > "${fpath[1]}/_plugconf"

# Install for fish
plugconf completion fish > ~/.config/fish/completions/plugconf.fish
`,
	})
}
