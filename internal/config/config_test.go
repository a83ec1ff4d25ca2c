package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 4, cfg.LinkWorkers)
	assert.Equal(t, 5, cfg.Retention)
	assert.True(t, cfg.Journal)
	assert.Empty(t, cfg.Roots)
	assert.Empty(t, cfg.Output)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	content := `
output = "/srv/sorted"
roots = ["/data", "/media"]
workers = 2
exclude = ["^/data/tmp"]
journal = false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte(content), 0644))
	t.Setenv("SYMSORT_WORKERS", "16")
	t.Setenv("SYMSORT_LINK_WORKERS", "3")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/srv/sorted", cfg.Output)
	assert.Equal(t, []string{"/data", "/media"}, cfg.Roots)
	assert.Equal(t, 16, cfg.Workers, "env overrides file")
	assert.Equal(t, 3, cfg.LinkWorkers)
	assert.Equal(t, []string{"^/data/tmp"}, cfg.Exclude)
	assert.False(t, cfg.Journal)
}

func TestLoadEnvSplitsLists(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SYMSORT_ROOTS", "/a,/b")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, cfg.Roots)
}

func TestLoadExplicitPathMustExist(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestValidateRejectsNegatives(t *testing.T) {
	cfg := &Config{Workers: -1, Retention: -2}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workers")
	assert.Contains(t, err.Error(), "retention")
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
