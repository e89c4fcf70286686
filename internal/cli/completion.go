package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var completionInstall bool

// shellCompletion describes how one shell's script is generated and where
// --install puts it. An empty installDir means install is unsupported.
type shellCompletion struct {
	generate   func(w io.Writer) error
	hints      []string
	installDir func(home string) string
	fileName   string
	afterHelp  func(w io.Writer, dir string)
}

var shellCompletions = map[string]shellCompletion{
	"bash": {
		generate: func(w io.Writer) error { return rootCmd.GenBashCompletionV2(w, true) },
		hints: []string{
			"# To load completions in your current session:",
			`#   eval "$(folio completion bash)"`,
			"#",
			"# To install permanently:",
			"#   folio completion bash --install",
			"#",
		},
		installDir: func(home string) string {
			return filepath.Join(home, ".local", "share", "bash-completion", "completions")
		},
		fileName: "folio",
		afterHelp: func(w io.Writer, dir string) {
			fmt.Fprintf(w, "Restart your shell or run: source %s\n", filepath.Join(dir, "folio"))
		},
	},
	"zsh": {
		generate: func(w io.Writer) error { return rootCmd.GenZshCompletion(w) },
		hints: []string{
			"# To load completions in your current session:",
			`#   eval "$(folio completion zsh)"`,
			"#",
			"# To install permanently:",
			"#   folio completion zsh --install",
			"#",
		},
		installDir: func(home string) string {
			return filepath.Join(home, ".local", "share", "zsh", "site-functions")
		},
		fileName: "_folio",
		afterHelp: func(w io.Writer, dir string) {
			fmt.Fprintln(w, "\nEnsure this directory is in your fpath. Add to ~/.zshrc if needed:")
			fmt.Fprintf(w, "  fpath=(%s $fpath)\n", dir)
			fmt.Fprintln(w, "  autoload -Uz compinit && compinit")
		},
	},
	"fish": {
		generate: func(w io.Writer) error { return rootCmd.GenFishCompletion(w, true) },
		hints: []string{
			"# To load completions in your current session:",
			"#   folio completion fish | source",
			"#",
			"# To install permanently:",
			"#   folio completion fish --install",
			"#",
		},
		installDir: func(home string) string {
			return filepath.Join(home, ".config", "fish", "completions")
		},
		fileName: "folio.fish",
		afterHelp: func(w io.Writer, _ string) {
			fmt.Fprintln(w, "Completions will be available in new fish sessions automatically.")
		},
	},
	"powershell": {
		generate: func(w io.Writer) error { return rootCmd.GenPowerShellCompletionWithDesc(w) },
		hints: []string{
			"# To load completions in your current session:",
			"#   folio completion powershell | Out-String | Invoke-Expression",
			"#",
			"# Add the above command to your PowerShell profile to keep it.",
			"#",
		},
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion <shell>",
	Short: "Set up shell completions for folio",
	Long: `Set up shell tab-completions for folio commands, flags, workflow ids,
categories, and complexity levels.

Supported shells: bash, zsh, fish, powershell

Quick install (adds completions to your shell profile):

  folio completion bash --install
  folio completion zsh --install
  folio completion fish --install

Or print the completion script to stdout (for manual setup):

  folio completion bash
  folio completion powershell`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MaximumNArgs(1),
	RunE:      runCompletion,
}

func init() {
	completionCmd.Flags().BoolVar(&completionInstall, "install", false,
		"Install completions into your shell profile")

	// Remove Cobra's default completion command and add ours.
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(completionCmd)
}

func runCompletion(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	sc, ok := shellCompletions[args[0]]
	if !ok {
		return fmt.Errorf("unsupported shell %q (supported: bash, zsh, fish, powershell)", args[0])
	}

	if completionInstall {
		return installCompletion(cmd.OutOrStdout(), args[0], sc)
	}

	// Hints go to stderr so eval "$(folio completion bash)" stays clean.
	for _, line := range sc.hints {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), line)
	}
	return sc.generate(cmd.OutOrStdout())
}

func installCompletion(out io.Writer, shell string, sc shellCompletion) error {
	if sc.installDir == nil {
		return fmt.Errorf("automatic install is not supported for %s; run 'folio completion %s' and add the output to your profile", shell, shell)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("detecting home directory: %w", err)
	}

	dir := sc.installDir(home)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating completion directory: %w", err)
	}

	target := filepath.Join(dir, sc.fileName)
	if err := writeCompletionFile(target, sc.generate); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s completions installed to %s\n", shell, target)
	sc.afterHelp(out, dir)
	return nil
}

// writeCompletionFile writes the generated script to target and reports
// close errors.
func writeCompletionFile(target string, generate func(io.Writer) error) error {
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating completion file %s: %w", target, err)
	}

	writeErr := generate(f)
	closeErr := f.Close()

	if writeErr != nil {
		return writeErr
	}
	if closeErr != nil {
		return fmt.Errorf("closing completion file %s: %w", target, closeErr)
	}
	return nil
}
