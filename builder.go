package geminstall

import "context"

// Builder is one extension build system. Each implementation handles a
// specific kind of declared extension file (extconf.rb, configure script,
// plain Makefile) and is selected through the BuilderFactory.
//
// Implementations are stateless; the same instance may build multiple
// extensions in sequence.
type Builder interface {
	// Name is the human-readable builder name used in errors and logs.
	Name() string

	// CanBuild checks if this builder handles the given extension file.
	// Only the base filename matters.
	CanBuild(extensionFile string) bool

	// Build runs the full configure/build/install cycle for one extension.
	// extensionFile is relative to config.GemDir. A non-nil error always
	// comes with a BuildResult whose Output holds everything the build
	// printed, so callers can persist a log either way.
	Build(ctx context.Context, config *BuildConfig, extensionFile string) (*BuildResult, error)
}
