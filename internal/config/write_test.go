package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetKeyInFile(t *testing.T) {
	tests := []struct {
		name  string
		input string
		key   string
		value string
		want  string
	}{
		{"new file", "", "model.last-loaded", "m1", "model.last-loaded m1\n"},
		{"replace in place", "# c\nmodel.last-loaded old\nlog.level info\n", "model.last-loaded", "new", "# c\nmodel.last-loaded new\nlog.level info\n"},
		{"append", "log.level info\n", "model.last-loaded", "m", "log.level info\nmodel.last-loaded m\n"},
		{"before section", "log.level info\n[run]\nmodel.last-loaded x\n", "model.last-loaded", "m", "log.level info\nmodel.last-loaded m\n[run]\nmodel.last-loaded x\n"},
		{"bare key", "", "model.autoload", "", "model.autoload\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sub", "config")
			if tt.input != "" {
				require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
				require.NoError(t, os.WriteFile(path, []byte(tt.input), 0644))
			}
			require.NoError(t, SetKeyInFile(path, tt.key, tt.value))
			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestSetKeyInFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, SetKeyInFile(path, KeyModelLastLoaded, "model_abc123"))
	c, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "model_abc123", c.Global[KeyModelLastLoaded])
}
