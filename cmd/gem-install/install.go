package main

import (
	"fmt"

	"github.com/spf13/cobra"

	geminstall "github.com/contriboss/gem-install-go"
	"github.com/contriboss/gem-install-go/gemtar"
)

var (
	installForce   bool
	installNoStubs bool
	buildArgs      []string
)

var installCmd = &cobra.Command{
	Use:   "install <gemfile>...",
	Short: "Install gem archives",
	Long: `Install one or more gem archives into the install directory.

Dependencies must already be installed unless --force is given. Native
extensions declared by a gem are built through the system toolchain; a
failed extension build is reported but does not abort the install.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVarP(&installForce, "force", "f", false, "skip the dependency check")
	installCmd.Flags().BoolVar(&installNoStubs, "no-stubs", false, "do not generate library stubs")
	installCmd.Flags().StringArrayVar(&buildArgs, "build-arg", nil, "argument forwarded to extension configure scripts (repeatable)")
}

func runInstall(cmd *cobra.Command, args []string) error {
	dir := resolveInstallDir()
	logger := newLogger()

	installer := geminstall.NewInstaller(dir)
	installer.Logger = logger
	installer.Builder = geminstall.NewExtensionBuilder(logger)

	opts := geminstall.InstallOptions{
		Force:        installForce,
		InstallStubs: !installNoStubs,
		BuildArgs:    buildArgs,
	}

	for _, path := range args {
		spec, err := installer.InstallFile(cmd.Context(), path, gemtar.Reader{}, opts)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Successfully installed ")+spec.FullName())
	}

	return nil
}
