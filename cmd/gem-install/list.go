package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	geminstall "github.com/contriboss/gem-install-go"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed gems",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, _ []string) error {
	index := geminstall.NewDirectoryIndex(resolveInstallDir())

	specs, err := index.Specs()
	if err != nil {
		return err
	}

	versions := make(map[string][]string)
	for _, spec := range specs {
		versions[spec.Name] = append(versions[spec.Name], spec.Version.String())
	}

	names := make([]string, 0, len(versions))
	for name := range versions {
		names = append(names, name)
	}
	sort.Strings(names)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, TitleStyle.Render("Installed gems"))
	if len(names) == 0 {
		fmt.Fprintln(out, SubtitleStyle.Render("  (none)"))
		return nil
	}

	for _, name := range names {
		fmt.Fprintf(out, "  %s (%s)\n", name, strings.Join(versions[name], ", "))
	}

	return nil
}
