package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	s, err := Load(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, EngineContainerd, s.Engine)
	assert.Equal(t, "/run/containerd/containerd.sock", s.Containerd.Address)
	assert.Equal(t, "provision", s.Containerd.Namespace)
	assert.Empty(t, s.Docker.Host)
	assert.NotEmpty(t, s.Output)
	assert.Equal(t, "info", s.Log.Level)
	assert.Equal(t, FormatText, s.Log.Format)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
engine: docker
docker:
  host: unix:///tmp/docker.sock
output: /srv/images
log:
  level: DEBUG
  format: json
`)

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, EngineDocker, s.Engine)
	assert.Equal(t, "unix:///tmp/docker.sock", s.Docker.Host)
	assert.Equal(t, "/srv/images", s.Output)
	assert.Equal(t, "debug", s.Log.Level)
	assert.Equal(t, FormatJSON, s.Log.Format)
	assert.Equal(t, "provision", s.Containerd.Namespace)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "containerd:\n  namespace: fromfile\n")
	t.Setenv("PROVISION_CONTAINERD_NAMESPACE", "fromenv")
	t.Setenv("PROVISION_ENGINE", "docker")

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "fromenv", s.Containerd.Namespace)
	assert.Equal(t, EngineDocker, s.Engine)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"engine", "engine: podman\n"},
		{"level", "log:\n  level: loud\n"},
		{"format", "log:\n  format: xml\n"},
		{"syntax", "engine: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.ErrorIs(t, err, ErrInvalidSettings)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrInvalidSettings)
}
