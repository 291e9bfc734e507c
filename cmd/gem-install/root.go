package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// Version is the semantic version (set via -ldflags).
var Version = "dev"

var (
	// verbose enables debug logging
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string
	// installDirFlag overrides the configured install directory
	installDirFlag string

	rootCmd = &cobra.Command{
		Use:   "gem-install",
		Short: "Install and uninstall gem packages",
		Long: TitleStyle.Render("gem-install") + SubtitleStyle.Render(" - local gem package management") + `

gem-install lays gem archives out under an install directory, generates
launcher scripts for their executables, builds declared native extensions
through the system toolchain, and removes gems again while respecting
packages that depend on them.

` + SubtitleStyle.Render("Examples:") + `
  gem-install install rake-0.4.14.gem
  gem-install uninstall rake --version "> 0"
  gem-install list`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/gem-install/config.toml)")
	rootCmd.PersistentFlags().StringVar(&installDirFlag, "install-dir", "", "gem install directory")

	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(listCmd)
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

// newLogger builds the logger handed to the library, honoring --verbose.
func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
