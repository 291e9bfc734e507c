package geminstall

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestInstaller roots an installer in a temp dir with stub targets
// pointing at temp dirs too, so nothing leaks outside the test.
func newTestInstaller(t *testing.T) *Installer {
	t.Helper()

	installDir := t.TempDir()
	installer := NewInstaller(installDir)
	installer.Logger = quietLogger()
	installer.Builder = newTestExtensionBuilder(okBuilder{}, failBuilder{})
	installer.Env = RubyEnv{
		RubyPath:   "/usr/bin/ruby",
		BinDir:     t.TempDir(),
		SiteLibDir: t.TempDir(),
	}
	return installer
}

func simpleArchive(t *testing.T, name, version string) *PackageArchive {
	t.Helper()

	spec := &Specification{
		Name:         name,
		Version:      MustParseVersion(version),
		RequirePaths: []string{"lib"},
	}

	source := filepath.Join(t.TempDir(), spec.FullName()+".gem")
	writeTestFile(t, source, "archive bytes for "+spec.FullName())

	return &PackageArchive{
		Spec: spec,
		Files: []FileEntry{
			{Path: "lib/" + name + ".rb", Mode: 0o644, Data: []byte("module X; end\n")},
			{Path: "bin/" + name, Mode: 0o755, Data: []byte("#!/usr/bin/env ruby\n")},
		},
		Source: source,
	}
}

func TestInstallLaysOutPackage(t *testing.T) {
	installer := newTestInstaller(t)
	archive := simpleArchive(t, "rake", "0.4.14")

	spec, err := installer.Install(context.Background(), archive, InstallOptions{})
	require.NoError(t, err)

	gemDir := filepath.Join(installer.Dir, "gems", "rake-0.4.14")

	data, err := os.ReadFile(filepath.Join(gemDir, "lib", "rake.rb"))
	require.NoError(t, err)
	assert.Equal(t, "module X; end\n", string(data))

	info, err := os.Stat(filepath.Join(gemDir, "bin", "rake"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm(), "declared permission mode preserved")

	assert.FileExists(t, filepath.Join(installer.Dir, "specifications", "rake-0.4.14"+SpecExtension))

	cached, err := os.ReadFile(filepath.Join(installer.Dir, "cache", "rake-0.4.14.gem"))
	require.NoError(t, err)
	original, err := os.ReadFile(archive.Source)
	require.NoError(t, err)
	assert.Equal(t, original, cached, "cached archive must be byte-identical to the source")

	assert.Equal(t, filepath.Join(installer.Dir, "specifications", "rake-0.4.14"+SpecExtension), spec.LoadedFrom)
	assert.Equal(t, installer.Dir, spec.InstallationPath)
}

func TestInstallMissingDependencyLeavesDirUntouched(t *testing.T) {
	installer := newTestInstaller(t)

	archive := simpleArchive(t, "rails", "0.9")
	archive.Spec.Dependencies = []Dependency{
		{Name: "activerecord", Requirement: MustParseRequirement(">= 1.0")},
	}

	_, err := installer.Install(context.Background(), archive, InstallOptions{})

	var missing *MissingDependencyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "activerecord", missing.Dependency)

	entries, readErr := os.ReadDir(installer.Dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "failed preflight must not create any directories")
}

func TestInstallForceSkipsDependencyCheck(t *testing.T) {
	installer := newTestInstaller(t)

	archive := simpleArchive(t, "rails", "0.9")
	archive.Spec.Dependencies = []Dependency{
		{Name: "activerecord", Requirement: MustParseRequirement(">= 1.0")},
	}

	_, err := installer.Install(context.Background(), archive, InstallOptions{Force: true})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(installer.Dir, "specifications", "rails-0.9"+SpecExtension))
}

func TestInstallSatisfiedDependencyPasses(t *testing.T) {
	installer := newTestInstaller(t)

	_, err := installer.Install(context.Background(), simpleArchive(t, "activerecord", "1.1"), InstallOptions{})
	require.NoError(t, err)

	archive := simpleArchive(t, "rails", "0.9")
	archive.Spec.Dependencies = []Dependency{
		{Name: "activerecord", Requirement: MustParseRequirement(">= 1.0")},
	}

	_, err = installer.Install(context.Background(), archive, InstallOptions{})
	require.NoError(t, err)
}

func TestInstallWritesLaunchers(t *testing.T) {
	installer := newTestInstaller(t)

	archive := simpleArchive(t, "rake", "0.4.14")
	archive.Spec.Executables = []string{"rake"}

	_, err := installer.Install(context.Background(), archive, InstallOptions{})
	require.NoError(t, err)

	launcher := filepath.Join(installer.Env.BinDir, "rake")
	info, err := os.Stat(launcher)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	content, err := os.ReadFile(launcher)
	require.NoError(t, err)
	assert.Contains(t, string(content), "#!/usr/bin/ruby")
	assert.Contains(t, string(content), "gem 'rake', '= 0.4.14'")
}

func TestInstallLibraryStub(t *testing.T) {
	installer := newTestInstaller(t)

	archive := simpleArchive(t, "builder", "1.0")
	archive.Spec.Autorequire = "builder"

	_, err := installer.Install(context.Background(), archive, InstallOptions{InstallStubs: true})
	require.NoError(t, err)

	stub := filepath.Join(installer.Env.SiteLibDir, "builder.rb")
	content, err := os.ReadFile(stub)
	require.NoError(t, err)
	assert.Contains(t, string(content), "gem 'builder'")
}

func TestInstallLeavesExistingLibraryStubAlone(t *testing.T) {
	installer := newTestInstaller(t)

	stub := filepath.Join(installer.Env.SiteLibDir, "builder.rb")
	writeTestFile(t, stub, "# hand-written stub\n")

	archive := simpleArchive(t, "builder", "1.0")
	archive.Spec.Autorequire = "builder"

	_, err := installer.Install(context.Background(), archive, InstallOptions{InstallStubs: true})
	require.NoError(t, err)

	content, err := os.ReadFile(stub)
	require.NoError(t, err)
	assert.Equal(t, "# hand-written stub\n", string(content), "existing stub must not be overwritten")
}

func TestInstallSkipsLibraryStubWithoutInstallStubs(t *testing.T) {
	installer := newTestInstaller(t)

	archive := simpleArchive(t, "builder", "1.0")
	archive.Spec.Autorequire = "builder"

	_, err := installer.Install(context.Background(), archive, InstallOptions{InstallStubs: false})
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(installer.Env.SiteLibDir, "builder.rb"))
}

func TestInstallSurvivesExtensionBuildFailure(t *testing.T) {
	installer := newTestInstaller(t)

	archive := simpleArchive(t, "native", "2.0")
	archive.Spec.Extensions = []string{"ext/thing.failbuild"}
	archive.Files = append(archive.Files, FileEntry{Path: "ext/thing.failbuild", Mode: 0o644})

	spec, err := installer.Install(context.Background(), archive, InstallOptions{})
	require.NoError(t, err, "extension build failure must not abort the install")

	assert.FileExists(t, filepath.Join(installer.Dir, "specifications", "native-2.0"+SpecExtension))
	assert.FileExists(t, filepath.Join(installer.Dir, "cache", "native-2.0.gem"))
	assert.FileExists(t, filepath.Join(installer.Dir, "gems", spec.FullName(), "ext", BuildLogName))
}

func TestInstallCacheIsNotRecopied(t *testing.T) {
	installer := newTestInstaller(t)
	archive := simpleArchive(t, "rake", "0.4.14")

	cached := filepath.Join(installer.Dir, "cache", "rake-0.4.14.gem")
	mustMkdir(t, filepath.Dir(cached))
	writeTestFile(t, cached, "pre-existing cache entry")

	_, err := installer.Install(context.Background(), archive, InstallOptions{})
	require.NoError(t, err)

	content, err := os.ReadFile(cached)
	require.NoError(t, err)
	assert.Equal(t, "pre-existing cache entry", string(content))
}

func TestInstallRejectsEscapingArchiveEntries(t *testing.T) {
	installer := newTestInstaller(t)

	archive := simpleArchive(t, "evil", "1.0")
	archive.Files = []FileEntry{{Path: "../outside.rb", Mode: 0o644, Data: []byte("nope")}}

	_, err := installer.Install(context.Background(), archive, InstallOptions{})
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(installer.Dir, "outside.rb"))
}

func TestInstallRejectsArchiveWithoutSpec(t *testing.T) {
	installer := newTestInstaller(t)

	_, err := installer.Install(context.Background(), &PackageArchive{}, InstallOptions{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, context.Canceled))
}
