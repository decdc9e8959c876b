// ABOUTME: Tests for logging setup
// ABOUTME: Checks level selection and file output
package logging

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureLevel(t *testing.T) {
	t.Setenv(DebugEnv, "")

	tests := []struct {
		name  string
		debug bool
		env   string
		want  log.Level
	}{
		{"default", false, "", log.InfoLevel},
		{"flag", true, "", log.DebugLevel},
		{"env", false, "true", log.DebugLevel},
		{"env garbage", false, "maybe", log.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(DebugEnv, tt.env)
			l := log.New()
			c, err := configure(l, Config{Debug: tt.debug})
			require.NoError(t, err)
			defer c.Close()
			assert.Equal(t, tt.want, l.GetLevel())
		})
	}
}

func TestConfigureFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gwambient.log")
	l := log.New()

	c, err := configure(l, Config{File: path})
	require.NoError(t, err)

	l.WithField("label", "M-1").Info("Beginning source")
	require.NoError(t, c.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Beginning source")
	assert.Contains(t, string(data), "label=M-1")
}

func TestConfigureBadFile(t *testing.T) {
	_, err := configure(log.New(), Config{File: filepath.Join(t.TempDir(), "missing", "x.log")})
	assert.Error(t, err)
}
