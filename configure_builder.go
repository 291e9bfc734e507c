package geminstall

import (
	"context"
	"os"
	"path/filepath"
)

// ConfigureBuilder handles autotools-style configure scripts. The script is
// run with the destination as prefix, then the generated Makefile goes
// through the same make/make-install cycle as the other builders.
type ConfigureBuilder struct{}

// Name returns the builder name
func (b *ConfigureBuilder) Name() string {
	return "Configure"
}

// RequiredTools returns the tools needed for configure-based builds
func (b *ConfigureBuilder) RequiredTools() []ToolRequirement {
	return []ToolRequirement{
		{
			Name:    "sh",
			Purpose: "Shell to run configure scripts",
		},
		{
			Name:         "make",
			Alternatives: []string{"gmake", "nmake"},
			Purpose:      "Build automation tool",
		},
	}
}

// CheckTools verifies that a shell and make are available
func (b *ConfigureBuilder) CheckTools() error {
	return CheckRequiredTools(b.RequiredTools())
}

// CanBuild checks if this builder can handle the extension file
func (b *ConfigureBuilder) CanBuild(extensionFile string) bool {
	return MatchesPattern(extensionFile, `^configure$`, `^configure\.sh$`)
}

// Build compiles the extension using the configure → make workflow
func (b *ConfigureBuilder) Build(ctx context.Context, config *BuildConfig, extensionFile string) (*BuildResult, error) {
	script := filepath.Base(extensionFile)

	return runCommonBuild(ctx, config, extensionFile, commonBuildSteps{
		configureFunc: func(ctx context.Context, config *BuildConfig, extensionDir string, result *BuildResult) error {
			return b.runConfigure(ctx, config, extensionDir, script, result)
		},
		buildFunc: func(ctx context.Context, config *BuildConfig, extensionDir string, result *BuildResult) error {
			return runMakeAndInstall(ctx, config, extensionDir, result, b.Name())
		},
		findFunc: findBuiltArtifacts,
	})
}

func (b *ConfigureBuilder) runConfigure(ctx context.Context, config *BuildConfig, extensionDir, script string, result *BuildResult) error {
	args := []string{"./" + script}
	if config.DestPath != "" {
		args = append(args, "--prefix="+config.DestPath)
	}
	args = append(args, config.BuildArgs...)

	if err := runCommand(ctx, config, extensionDir, result, "sh", args...); err != nil {
		return BuildFailure(b.Name(), result.Output, err)
	}

	makefilePath := filepath.Join(extensionDir, "Makefile")
	if _, err := os.Stat(makefilePath); err == nil && config.DestPath != "" {
		if err := patchMakefile(makefilePath, config.DestPath); err != nil {
			return BuildFailure(b.Name(), result.Output, err)
		}
	}

	return nil
}
