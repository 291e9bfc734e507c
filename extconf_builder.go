package geminstall

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// ExtConfBuilder handles extconf.rb scripts, the most common build system
// declared by gems with native extensions.
//
// The cycle is: run the script with the forwarded build arguments, verify it
// produced a Makefile, point the Makefile's install directories at the gem's
// require path, then make and make install.
type ExtConfBuilder struct{}

// Name returns the builder name
func (b *ExtConfBuilder) Name() string {
	return "ExtConf"
}

// RequiredTools returns the tools needed for extconf.rb builds
func (b *ExtConfBuilder) RequiredTools() []ToolRequirement {
	return []ToolRequirement{
		{
			Name:    "ruby",
			Purpose: "Ruby interpreter for extconf.rb",
		},
		{
			Name:         "gcc",
			Alternatives: []string{"clang", "cc", "cl"},
			Purpose:      "C/C++ compiler for native extensions",
		},
		{
			Name:         "make",
			Alternatives: []string{"gmake", "nmake"},
			Purpose:      "Build automation tool",
		},
	}
}

// CheckTools verifies that Ruby, a compiler and make are available
func (b *ExtConfBuilder) CheckTools() error {
	return CheckRequiredTools(b.RequiredTools())
}

// CanBuild checks if this builder can handle the extension file
func (b *ExtConfBuilder) CanBuild(extensionFile string) bool {
	return MatchesPattern(extensionFile, `extconf\.rb$`)
}

// Build compiles the extension using the extconf.rb → make workflow
func (b *ExtConfBuilder) Build(ctx context.Context, config *BuildConfig, extensionFile string) (*BuildResult, error) {
	return runCommonBuild(ctx, config, extensionFile, commonBuildSteps{
		configureFunc: b.runExtConf,
		buildFunc: func(ctx context.Context, config *BuildConfig, extensionDir string, result *BuildResult) error {
			return runMakeAndInstall(ctx, config, extensionDir, result, b.Name())
		},
		findFunc: findBuiltArtifacts,
	})
}

// runExtConf executes the script to generate the Makefile, then patches the
// generated install directories.
func (b *ExtConfBuilder) runExtConf(ctx context.Context, config *BuildConfig, extensionDir string, result *BuildResult) error {
	rubyPath := config.RubyPath
	if rubyPath == "" {
		rubyPath = "ruby"
	}

	args := append([]string{"extconf.rb"}, config.BuildArgs...)

	if err := runCommand(ctx, config, extensionDir, result, rubyPath, args...); err != nil {
		return BuildFailure(b.Name(), result.Output, err)
	}

	makefilePath := filepath.Join(extensionDir, "Makefile")
	if _, err := os.Stat(makefilePath); os.IsNotExist(err) {
		return BuildFailure(b.Name(), result.Output, fmt.Errorf("makefile not generated"))
	}

	if config.DestPath != "" {
		if err := patchMakefile(makefilePath, config.DestPath); err != nil {
			return BuildFailure(b.Name(), result.Output, err)
		}
	}

	return nil
}
