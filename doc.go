// Package geminstall manages the full lifecycle of installing and
// uninstalling gems on a local machine.
//
// This package is the Go equivalent of Ruby's Gem::Installer and
// Gem::Uninstaller. It verifies dependency preconditions, lays package
// contents out on disk, generates launcher and library stubs, drives the
// external build toolchain for native extensions, and reverses all of it
// while respecting gems that depend on the one being removed.
//
// # Install Layout
//
// Everything lives under one install directory:
//
//	<dir>/gems/<name>-<version>/...        extracted package files
//	<dir>/specifications/<name>-<version>.toml   persisted specification
//	<dir>/cache/<name>-<version>.gem       verbatim copy of the source archive
//	<dir>/doc/                             generated documentation
//
// # Basic Usage
//
// Install a gem archive:
//
//	installer := geminstall.NewInstaller("/opt/gems")
//	spec, err := installer.InstallFile(ctx, "rake-0.4.14.gem", gemtar.Reader{},
//	    geminstall.InstallOptions{InstallStubs: true})
//
// Uninstall it again:
//
//	uninstaller := geminstall.NewUninstaller("/opt/gems")
//	err := uninstaller.Uninstall(ctx, "rake", "> 0")
//
// # Architecture
//
// Extension builds use a factory pattern with registered builders:
//
//	BuilderFactory
//	├── ExtConfBuilder (extconf.rb)
//	├── ConfigureBuilder (configure, configure.sh)
//	└── MakefileBuilder (Makefile, GNUmakefile)
//
// Each builder runs a configure step, drives the build tool to build and
// install, and records everything in a gem_make.out log next to the
// extension source. Extension build failures never abort the surrounding
// install.
//
// Interactive decisions during uninstall (version disambiguation, dependent
// confirmation) go through the Console interface, so automated callers can
// supply programmatic answers.
//
// # Concurrency
//
// Execution is single-threaded and synchronous. No process-wide state is
// mutated: external processes get their working directory via exec.Cmd.Dir
// and all file operations use absolute paths. The install directory itself
// is not locked; concurrent installs into the same directory must be
// serialized by the caller.
package geminstall
