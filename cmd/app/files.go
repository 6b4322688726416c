package main

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/akyairhashvil/tasktrack/internal/util"
)

// readPassword is swapped out in tests.
var readPassword = func(fd int) ([]byte, error) {
	return term.ReadPassword(fd)
}

func promptForKey(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	pass, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	return strings.TrimSpace(string(pass)), err
}

// writeFileAtomic writes through a temp file so an interrupted export never
// leaves a truncated file behind.
func writeFileAtomic(path string, data []byte) error {
	if err := util.EnsureParentDir(path); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func cleanupStaleArtifacts(path string) {
	_ = os.Remove(path + ".tmp")
}
