package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	geminstall "github.com/contriboss/gem-install-go"
)

var uninstallConstraint string

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <name>",
	Short: "Uninstall an installed gem",
	Long: `Uninstall the gem matching a name and version constraint.

When several installed versions match, an interactive selection is offered.
Gems that other installed gems depend on require per-dependent confirmation
before anything is removed.`,
	Args: cobra.ExactArgs(1),
	RunE: runUninstall,
}

func init() {
	uninstallCmd.Flags().StringVar(&uninstallConstraint, "version", "> 0", "version constraint, e.g. \"= 1.2.3\" or \"~> 1.2\"")
}

func runUninstall(cmd *cobra.Command, args []string) error {
	dir := resolveInstallDir()
	logger := newLogger()

	uninstaller := geminstall.NewUninstaller(dir)
	uninstaller.Logger = logger
	uninstaller.UI = geminstall.NewTerminalConsole(cmd.InOrStdin(), cmd.OutOrStdout())

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		logger.Debug("stdin is not a terminal; prompts read from the pipe")
	}

	return uninstaller.Uninstall(cmd.Context(), args[0], uninstallConstraint)
}
