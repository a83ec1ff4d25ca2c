package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrganizeThenInfo(t *testing.T) {
	chdir(t, t.TempDir())

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Photos"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Photos", "img.jpg"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0644))
	out := filepath.Join(t.TempDir(), "sorted")

	rootCmd.SetArgs([]string{"organize", "--root", root, "--out", out, "--workers", "2"})
	require.NoError(t, rootCmd.Execute())

	target, err := os.Readlink(filepath.Join(out, "pictures", "Photos", "img.jpg"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "Photos", "img.jpg"), target)

	latest := filepath.Join(out, ".symsort", "latest.db")
	_, err = os.Stat(latest)
	require.NoError(t, err, "live run writes a journal")

	rootCmd.SetArgs([]string{"info", "--out", out})
	assert.NoError(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"query", "--out", out, "--category", "Pictures"})
	assert.NoError(t, rootCmd.Execute())
}

func TestOrganizeRequiresRoots(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SYMSORT_ROOTS", "")

	cfgPath = ""
	orgRoots = nil
	rootCmd.SetArgs([]string{"organize", "--out", t.TempDir()})
	err := rootCmd.Execute()
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
