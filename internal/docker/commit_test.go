package docker

import (
	"testing"

	"github.com/cruciblehq/provision/internal/target"
	"github.com/stretchr/testify/assert"
)

func TestChanges(t *testing.T) {
	got := changes(target.ImageConfig{
		Cmd:          []string{"ragbuilder"},
		ExposedPorts: []string{"8085/tcp"},
		Env:          []string{"B=2", "A=1"},
		Labels: map[string]string{
			"org.opencontainers.image.title":     "ragbuilder",
			"org.opencontainers.image.base.name": "python:3.12.4-slim",
		},
	})

	assert.Equal(t, []string{
		"ENTRYPOINT []",
		`CMD ["ragbuilder"]`,
		"EXPOSE 8085/tcp",
		"ENV A=1",
		"ENV B=2",
		`LABEL "org.opencontainers.image.base.name"="python:3.12.4-slim"`,
		`LABEL "org.opencontainers.image.title"="ragbuilder"`,
	}, got)
}

func TestChangesWorkingDir(t *testing.T) {
	got := changes(target.ImageConfig{Cmd: []string{"serve", "--port", "80"}, WorkingDir: "/srv"})

	assert.Equal(t, []string{
		"ENTRYPOINT []",
		`CMD ["serve","--port","80"]`,
		"WORKDIR /srv",
	}, got)
}

func TestJSONArrayEmpty(t *testing.T) {
	assert.Equal(t, "[]", jsonArray(nil))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"python:3.12.4-slim", "docker.io/library/python:3.12.4-slim"},
		{"ragbuilder", "docker.io/library/ragbuilder:latest"},
		{"example.com/team/ragbuilder:1.0.0", "example.com/team/ragbuilder:1.0.0"},
	}

	for _, tt := range tests {
		got, err := normalize(tt.ref)
		assert.NoError(t, err, tt.ref)
		assert.Equal(t, tt.want, got)
	}

	_, err := normalize("UPPER/case")
	assert.ErrorIs(t, err, ErrDocker)
}

func TestContainerConfig(t *testing.T) {
	cfg := containerConfig("docker.io/library/python:3.12.4-slim")

	assert.Equal(t, "docker.io/library/python:3.12.4-slim", cfg.Image)
	assert.Empty(t, cfg.Entrypoint)
	assert.NotNil(t, cfg.Entrypoint)
	assert.Equal(t, []string{"sleep", "infinity"}, []string(cfg.Cmd))
	assert.Equal(t, "true", cfg.Labels[buildLabel])
}
