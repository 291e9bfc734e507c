package geminstall

import "fmt"

// MissingDependencyError aborts an install before any filesystem mutation:
// a declared dependency has no satisfying gem installed and force was not set.
type MissingDependencyError struct {
	Gem         string
	Dependency  string
	Requirement Requirement
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("%s requires %s (%s) but no installed gem satisfies it",
		e.Gem, e.Dependency, e.Requirement)
}

// ExtensionBuildError reports a failed native extension build. LogPath points
// at the gem_make.out file holding the commands issued and their output.
// Extension builds are non-fatal at the install level.
type ExtensionBuildError struct {
	Extension string
	LogPath   string
	Err       error
}

func (e *ExtensionBuildError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extension %s failed to build: %v (see %s)", e.Extension, e.Err, e.LogPath)
	}
	return fmt.Sprintf("extension %s failed to build (see %s)", e.Extension, e.LogPath)
}

func (e *ExtensionBuildError) Unwrap() error { return e.Err }

// StubSkippedError is the non-fatal reason a library stub was not written:
// the target directory is unwritable or the stub file already exists.
type StubSkippedError struct {
	Path   string
	Reason string
}

func (e *StubSkippedError) Error() string {
	return fmt.Sprintf("library stub %s not written: %s", e.Path, e.Reason)
}

// DependentExistsError aborts a removal: another installed gem depends on the
// one being removed and the confirmation prompt was declined. No files have
// been deleted when this error is returned.
type DependentExistsError struct {
	FullName  string
	Dependent string
}

func (e *DependentExistsError) Error() string {
	return fmt.Sprintf("uninstallation of %s aborted: %s depends on it", e.FullName, e.Dependent)
}

// SelectionError reports an invalid interactive selection. No removal action
// is taken when it is returned.
type SelectionError struct {
	Input string
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("invalid selection %q", e.Input)
}
