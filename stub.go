package geminstall

import "fmt"

// Stub generation is pure text templating. Callers write the returned text
// with the correct permissions; nothing here touches the filesystem.

// LauncherScript renders the executable launcher for a gem executable: a
// shebang for the interpreter in use, activation of the exact installed
// version, and a load of the target file.
func LauncherScript(rubyPath, name string, version Version, target string) string {
	return fmt.Sprintf(`#!%s
#
# This file was generated by gem-install.
#
require 'rubygems'
gem '%s', '= %s'
load '%s'
`, rubyPath, name, version, target)
}

// LibraryStub renders the autorequire stub: it activates the gem with no
// version pin so plain require picks up whichever version is installed.
func LibraryStub(name string) string {
	return fmt.Sprintf(`require 'rubygems'
gem '%s'
`, name)
}
