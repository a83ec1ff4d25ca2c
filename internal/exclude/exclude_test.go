package exclude

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldExclude(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"C:/Windows/System32", true},
		{"C:/Program Files", true},
		{`C:\Program Files (x86)\Steam`, true},
		{"C:/Users/Abe/.cache", true},
		{"C:/Users/Abe/node_modules", true},
		{"/home/abe/NODE_MODULES", true},
		{"/home/abe/.secret", true},
		{"/srv/repo/.git", true},
		{"/srv/repo/.git/objects/ab", true},
		{"/home/abe/project/build/assets", true},
		{"/home/abe/AppData/Local/Pictures", true},
		{"C:/Users/Abe/Documents", false},
		{"C:/Users/Abe/Pictures", false},
		{"/home/abe/builds", false},
		{"/home/abe/my.photos", false},
		{"Photos", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Default.ShouldExclude(tt.path))
		})
	}
}

func TestExtraNamesAndPatterns(t *testing.T) {
	p := NewPolicy("Scratch")
	assert.True(t, p.ShouldExclude("/data/scratch"))
	assert.False(t, Default.ShouldExclude("/data/scratch"))

	withRe, err := p.WithPatterns(`/\.snapshot(/|$)`, `^/mnt/backup`)
	require.NoError(t, err)
	assert.True(t, withRe.ShouldExclude("/mnt/backup/2024"))
	assert.False(t, p.ShouldExclude("/mnt/backup/2024"))

	_, err = p.WithPatterns("(")
	assert.Error(t, err)
}

func TestDefaultDirsIsACopy(t *testing.T) {
	dirs := DefaultDirs()
	dirs[0] = "mutated"
	assert.True(t, Default.IsListed("windows"))
	assert.False(t, Default.IsListed("mutated"))
}

func TestSplit(t *testing.T) {
	assert.Equal(t, []string{"C:", "Users", "abe"}, Split(`C:\Users\abe`))
	assert.Equal(t, []string{"srv", "data"}, Split("/srv//data/"))
}
