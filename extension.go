package geminstall

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// BuildLogName is the per-extension log written next to the extension's
// build script, holding every command issued and its combined output.
const BuildLogName = "gem_make.out"

// ExtensionBuilder drives the external build toolchain for every native
// extension a specification declares. Compiled artifacts are installed under
// the gem's first require path so the loader finds them like any other file.
type ExtensionBuilder struct {
	Factory *BuilderFactory
	Logger  *log.Logger
}

// NewExtensionBuilder returns a builder with the standard factory. A nil
// logger falls back to stderr.
func NewExtensionBuilder(logger *log.Logger) *ExtensionBuilder {
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	return &ExtensionBuilder{
		Factory: NewBuilderFactory(),
		Logger:  logger,
	}
}

// BuildExtensions builds every extension spec declares, in order. It is a
// pure no-op when the spec declares none: no process is spawned and no file
// touched.
//
// base supplies the caller-side knobs (BuildArgs, Env, RubyPath, Verbose);
// GemDir and DestPath are derived from pkgDir and the spec. The build log is
// written regardless of outcome, and the first failure stops the remaining
// extensions and is returned as a *ExtensionBuildError pointing at that log.
func (e *ExtensionBuilder) BuildExtensions(ctx context.Context, pkgDir string, spec *Specification, base BuildConfig) error {
	if len(spec.Extensions) == 0 {
		return nil
	}

	config := base
	config.GemDir = pkgDir
	config.DestPath = filepath.Join(pkgDir, spec.FirstRequirePath())

	if err := os.MkdirAll(config.DestPath, 0o755); err != nil {
		return err
	}

	for _, extension := range spec.Extensions {
		extensionDir := filepath.Dir(filepath.Join(pkgDir, extension))
		logPath := filepath.Join(extensionDir, BuildLogName)

		builder, err := e.Factory.BuilderFor(extension)
		if err != nil {
			writeBuildLog(logPath, &BuildResult{Output: []string{err.Error()}})
			return &ExtensionBuildError{Extension: extension, LogPath: logPath, Err: err}
		}

		if checker, ok := builder.(ToolChecker); ok {
			if err := checker.CheckTools(); err != nil {
				result := &BuildResult{
					Output:       []string{err.Error()},
					MissingTools: missingToolNames(checker.RequiredTools()),
				}
				writeBuildLog(logPath, result)
				return &ExtensionBuildError{Extension: extension, LogPath: logPath, Err: err}
			}
		}

		e.Logger.Debug("building extension", "gem", spec.FullName(), "extension", extension, "builder", builder.Name())

		result, buildErr := builder.Build(ctx, &config, extension)
		if result != nil {
			writeBuildLog(logPath, result)
		}

		if buildErr != nil {
			return &ExtensionBuildError{Extension: extension, LogPath: logPath, Err: buildErr}
		}

		e.Logger.Debug("extension built", "gem", spec.FullName(), "artifacts", strings.Join(result.Artifacts, ", "))
	}

	return nil
}

func missingToolNames(requirements []ToolRequirement) []string {
	var missing []string
	for _, req := range requirements {
		found := CheckToolAvailable(req.Name) == nil
		for _, alt := range req.Alternatives {
			if found {
				break
			}
			found = CheckToolAvailable(alt) == nil
		}
		if !found && !req.Optional {
			missing = append(missing, req.Name)
		}
	}
	return missing
}

// writeBuildLog persists the captured output. Log failures are swallowed:
// the build result matters more than the log of it.
func writeBuildLog(logPath string, result *BuildResult) {
	content := strings.Join(result.Output, "\n") + "\n"
	_ = os.WriteFile(logPath, []byte(content), 0o644)
}
