package geminstall

// BuildResult contains the output and status of one extension build.
type BuildResult struct {
	Success   bool     // True if build completed successfully
	Output    []string // Commands issued and their combined stdout/stderr
	Artifacts []string // Paths to built extension files, relative to the extension dir
	Error     error    // Error if build failed, nil otherwise

	// MissingTools names required build tools that were not found in PATH.
	// When non-empty the build failed without spawning a process.
	MissingTools []string
}

// BuildConfig configures one extension build.
//
// GemDir is the root of the extracted gem; extension file paths are relative
// to it. DestPath is where compiled artifacts are installed, normally
// GemDir/<first require path>.
type BuildConfig struct {
	GemDir   string
	DestPath string

	// BuildArgs are forwarded to the configure step, the way the original
	// tool forwards its own invocation arguments.
	BuildArgs []string

	// Env entries are added to the environment of every spawned process.
	Env map[string]string

	// RubyPath is the interpreter that runs extconf-style scripts.
	// Empty means "ruby" from PATH.
	RubyPath string

	Verbose bool
}
