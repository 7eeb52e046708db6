// Package tooltest creates fake external tools for tests.
package tooltest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// Script writes an executable shell script with the given body and returns
// its path. The arguments of every call are appended to the file returned by
// Args.
func Script(t *testing.T, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	script := "#!/bin/sh\necho \"$@\" >> \"" + Args(path) + "\"\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

// Args returns the file where the script stores its arguments.
func Args(script string) string {
	return script + ".args"
}

// ReadArgs returns the recorded arguments of a script, one call per line.
func ReadArgs(t *testing.T, script string) string {
	t.Helper()
	b, err := os.ReadFile(Args(script))
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}
