package geminstall

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// RubyEnv locates the interpreter the generated stubs are written for.
type RubyEnv struct {
	// RubyPath is the interpreter the launcher shebang points at.
	RubyPath string

	// BinDir receives the executable launcher scripts.
	BinDir string

	// SiteLibDir receives autorequire library stubs. Empty disables
	// library stub generation entirely.
	SiteLibDir string
}

// DefaultRubyEnv resolves the interpreter from PATH. When no interpreter is
// found the conventional /usr/bin/ruby is assumed; stub generation still
// works, the scripts just will not run until an interpreter exists there.
func DefaultRubyEnv() RubyEnv {
	rubyPath := "/usr/bin/ruby"
	binDir := "/usr/local/bin"

	if found, err := exec.LookPath("ruby"); err == nil {
		rubyPath = found
		binDir = filepath.Dir(found)
	}

	return RubyEnv{RubyPath: rubyPath, BinDir: binDir}
}

// InstallOptions control one install call.
type InstallOptions struct {
	// Force skips the dependency preflight entirely.
	Force bool

	// InstallStubs enables library stub generation for specs that declare
	// an autorequire.
	InstallStubs bool

	// BuildArgs are forwarded to extension configure scripts.
	BuildArgs []string

	// BuildEnv entries are added to the environment of extension builds.
	BuildEnv map[string]string
}

// Installer lays a package out under an install directory: dependency
// preflight, directory layout, file extraction, stub generation, extension
// builds, and descriptor/cache persistence.
//
// One installer owns its install directory for the duration of a call.
// Concurrent mutation of the same directory from several processes is not
// coordinated here and must be serialized by the caller.
type Installer struct {
	Dir     string
	Index   SourceIndex
	Env     RubyEnv
	Builder *ExtensionBuilder
	Logger  *log.Logger
}

// NewInstaller returns an installer rooted at installDir with the standard
// collaborators: a DirectoryIndex over the same directory, the detected Ruby
// environment, and stderr logging.
func NewInstaller(installDir string) *Installer {
	logger := log.New(os.Stderr)
	return &Installer{
		Dir:     installDir,
		Index:   NewDirectoryIndex(installDir),
		Env:     DefaultRubyEnv(),
		Builder: NewExtensionBuilder(logger),
		Logger:  logger,
	}
}

// InstallFile decodes the archive at path with reader and installs it.
func (i *Installer) InstallFile(ctx context.Context, path string, reader ArchiveReader, opts InstallOptions) (*Specification, error) {
	archive, err := reader.ReadArchive(path)
	if err != nil {
		return nil, err
	}
	if archive.Source == "" {
		archive.Source = path
	}
	return i.Install(ctx, archive, opts)
}

// Install performs the full install of one package archive and returns its
// specification with LoadedFrom pointing at the persisted descriptor.
//
// Failure order matters: the dependency preflight runs before any filesystem
// mutation, extraction failures are fatal, extension build failures are
// logged and the install continues.
func (i *Installer) Install(ctx context.Context, archive *PackageArchive, opts InstallOptions) (*Specification, error) {
	spec := archive.Spec
	if spec == nil || spec.Name == "" {
		return nil, fmt.Errorf("archive carries no usable specification")
	}

	if !opts.Force {
		if err := i.checkDependencies(spec); err != nil {
			return nil, err
		}
	}

	gemDir := filepath.Join(i.Dir, "gems", spec.FullName())
	if err := i.createLayout(gemDir); err != nil {
		return nil, err
	}

	if err := i.extractFiles(gemDir, archive.Files); err != nil {
		return nil, err
	}

	if err := i.generateBinScripts(spec); err != nil {
		return nil, err
	}

	if opts.InstallStubs {
		i.generateLibraryStub(spec)
	}

	buildBase := BuildConfig{
		BuildArgs: opts.BuildArgs,
		Env:       opts.BuildEnv,
		RubyPath:  i.Env.RubyPath,
	}
	if err := i.Builder.BuildExtensions(ctx, gemDir, spec, buildBase); err != nil {
		i.Logger.Warn("extension build failed, gem installed without native extensions",
			"gem", spec.FullName(), "error", err)
	}

	specPath, err := SaveSpecification(filepath.Join(i.Dir, "specifications"), spec)
	if err != nil {
		return nil, err
	}

	if err := i.cacheArchive(spec, archive); err != nil {
		return nil, err
	}

	spec.LoadedFrom = specPath
	spec.InstallationPath = i.Dir

	i.Logger.Info("installed", "gem", spec.FullName())
	return spec, nil
}

// checkDependencies verifies every declared dependency has at least one
// satisfying gem already installed.
func (i *Installer) checkDependencies(spec *Specification) error {
	for _, dep := range spec.Dependencies {
		matches, err := i.Index.Search(dep.Name, dep.Requirement)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			return &MissingDependencyError{
				Gem:         spec.FullName(),
				Dependency:  dep.Name,
				Requirement: dep.Requirement,
			}
		}
	}
	return nil
}

// createLayout makes the package directory and the shared install
// subdirectories. Existing directories are left untouched.
func (i *Installer) createLayout(gemDir string) error {
	if err := os.MkdirAll(gemDir, 0o755); err != nil {
		return fmt.Errorf("failed to create package directory: %w", err)
	}

	for _, sub := range []string{"specifications", "cache", "doc"} {
		if err := os.MkdirAll(filepath.Join(i.Dir, sub), 0o755); err != nil {
			return fmt.Errorf("failed to create %s directory: %w", sub, err)
		}
	}

	return nil
}

// extractFiles writes every archive entry under gemDir with its declared
// permission mode. All paths are computed absolute against gemDir, so no
// working-directory state is touched on any path, including failures.
func (i *Installer) extractFiles(gemDir string, files []FileEntry) error {
	for _, entry := range files {
		rel := filepath.Clean(filepath.FromSlash(entry.Path))
		if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return fmt.Errorf("archive entry %q escapes the package directory", entry.Path)
		}

		target := filepath.Join(gemDir, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", entry.Path, err)
		}

		mode := entry.Mode.Perm()
		if mode == 0 {
			mode = 0o644
		}
		if err := os.WriteFile(target, entry.Data, mode); err != nil {
			return fmt.Errorf("failed to extract %s: %w", entry.Path, err)
		}
		if err := os.Chmod(target, mode); err != nil {
			return fmt.Errorf("failed to set mode on %s: %w", entry.Path, err)
		}
	}

	return nil
}

// generateBinScripts writes one executable launcher per declared executable.
func (i *Installer) generateBinScripts(spec *Specification) error {
	if len(spec.Executables) == 0 {
		return nil
	}

	if err := os.MkdirAll(i.Env.BinDir, 0o755); err != nil {
		return fmt.Errorf("failed to create bin directory: %w", err)
	}

	for _, executable := range spec.Executables {
		script := LauncherScript(i.Env.RubyPath, spec.Name, spec.Version, executable)
		target := filepath.Join(i.Env.BinDir, executable)

		if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
			return fmt.Errorf("failed to write launcher %s: %w", target, err)
		}
		if err := os.Chmod(target, 0o755); err != nil {
			return fmt.Errorf("failed to mark launcher executable %s: %w", target, err)
		}
	}

	return nil
}

// generateLibraryStub writes the autorequire stub. Every skip reason is a
// warning, never a failure: an unwritable site directory or a stub that
// already exists leaves the install intact.
func (i *Installer) generateLibraryStub(spec *Specification) {
	if spec.Autorequire == "" || i.Env.SiteLibDir == "" {
		return
	}

	stubPath := filepath.Join(i.Env.SiteLibDir, spec.Autorequire+".rb")

	if !dirWritable(i.Env.SiteLibDir) {
		i.Logger.Warn("library stub skipped",
			"gem", spec.FullName(),
			"reason", (&StubSkippedError{Path: stubPath, Reason: "directory not writable"}).Error())
		return
	}

	if fileExists(stubPath) {
		i.Logger.Warn("library stub skipped",
			"gem", spec.FullName(),
			"reason", (&StubSkippedError{Path: stubPath, Reason: "file already exists"}).Error())
		return
	}

	if err := os.WriteFile(stubPath, []byte(LibraryStub(spec.Name)), 0o644); err != nil {
		i.Logger.Warn("library stub skipped", "gem", spec.FullName(), "error", err)
	}
}

// cacheArchive copies the source archive into cache/<FullName>.gem unless a
// file of that name is already cached.
func (i *Installer) cacheArchive(spec *Specification, archive *PackageArchive) error {
	if archive.Source == "" {
		return nil
	}

	cached := filepath.Join(i.Dir, "cache", spec.FullName()+".gem")
	if fileExists(cached) {
		return nil
	}

	if err := copyFile(archive.Source, cached); err != nil {
		return fmt.Errorf("failed to cache archive: %w", err)
	}
	return nil
}
