// Package testutil holds helpers shared by package tests.
package testutil

import (
	"fmt"
	"os"
	"testing"

	"github.com/michaelscutari/symsort/internal/exclude"
)

var tempEnv = []string{"TMPDIR", "TMP", "TEMP"}

// RunWithScratchTemp runs m with the process temp directory moved to a
// fresh directory whose full path the default exclusion policy admits.
// The system temp dir usually sits below "tmp" or "temp", and scanning a
// tree under it would prune every subdirectory.
func RunWithScratchTemp(m *testing.M) int {
	base, err := scratchDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "scratch temp dir: %v\n", err)
		return 1
	}
	defer os.RemoveAll(base)

	for _, k := range tempEnv {
		os.Setenv(k, base)
	}
	return m.Run()
}

func scratchDir() (string, error) {
	var parents []string
	if wd, err := os.Getwd(); err == nil {
		parents = append(parents, wd)
	}
	if home, err := os.UserHomeDir(); err == nil {
		parents = append(parents, home)
	}

	var lastErr error
	for _, parent := range parents {
		if exclude.Default.ShouldExclude(parent) {
			continue
		}
		dir, err := os.MkdirTemp(parent, "_scratch-")
		if err != nil {
			lastErr = err
			continue
		}
		return dir, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no candidate parent outside the exclusion set in %v", parents)
	}
	return "", lastErr
}
