package app

import (
	"os"
	"path/filepath"
)

// selfName is the running program's own basename, used to reject a
// $SHELL that points back at dvtm itself (spec.md §6).
func selfName() string {
	exe, err := os.Executable()
	if err != nil {
		return "dvtm"
	}
	return filepath.Base(exe)
}

// DefaultShell resolves the login shell per spec.md §6: $SHELL if it is
// an absolute, executable path whose basename isn't the program's own
// name; else /bin/sh. The passwd-database lookup dvtm.c falls back to
// next is the "shell lookup" spec.md §1 names explicitly as an external
// collaborator out of this core's scope, so it is not reimplemented
// here.
func DefaultShell() string {
	if sh := os.Getenv("SHELL"); isUsableShell(sh, selfName()) {
		return sh
	}
	return "/bin/sh"
}

func isUsableShell(path, self string) bool {
	if path == "" || !filepath.IsAbs(path) {
		return false
	}
	if filepath.Base(path) == self {
		return false
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0o111 != 0
}
