package runtime

import (
	"testing"

	"github.com/cruciblehq/provision/internal/target"
	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

func TestManifestGCLabels(t *testing.T) {
	m := ocispec.Manifest{
		Config: ocispec.Descriptor{
			Digest: digest.FromString("config"),
		},
		Layers: []ocispec.Descriptor{
			{Digest: digest.FromString("layer0")},
			{Digest: digest.FromString("layer1")},
		},
	}

	labels := manifestGCLabels(m)

	configLabel := labels["containerd.io/gc.ref.content.config"]
	if configLabel != m.Config.Digest.String() {
		t.Fatalf("config label = %q, want %q", configLabel, m.Config.Digest.String())
	}

	for i, layer := range m.Layers {
		key := "containerd.io/gc.ref.content.l." + string(rune('0'+i))
		got := labels[key]
		if got != layer.Digest.String() {
			t.Fatalf("labels[%q] = %q, want %q", key, got, layer.Digest.String())
		}
	}

	if len(labels) != 3 {
		t.Fatalf("len(labels) = %d, want 3", len(labels))
	}
}

func TestManifestGCLabelsNoLayers(t *testing.T) {
	m := ocispec.Manifest{
		Config: ocispec.Descriptor{
			Digest: digest.FromString("config-only"),
		},
	}

	labels := manifestGCLabels(m)
	if len(labels) != 1 {
		t.Fatalf("len(labels) = %d, want 1", len(labels))
	}
	if labels["containerd.io/gc.ref.content.config"] != m.Config.Digest.String() {
		t.Fatal("config label mismatch")
	}
}

func TestApplyImageConfig(t *testing.T) {
	config := ocispec.ImageConfig{
		Entrypoint:   []string{"python3"},
		Cmd:          []string{"-i"},
		Env:          []string{"PATH=/usr/local/bin:/usr/bin", "LANG=C.UTF-8"},
		ExposedPorts: map[string]struct{}{"9000/tcp": {}},
	}

	applyImageConfig(&config, target.ImageConfig{
		Cmd:          []string{"ragbuilder"},
		ExposedPorts: []string{"8085/tcp"},
		Env:          []string{"LANG=en_US.UTF-8"},
		Labels:       map[string]string{"org.opencontainers.image.title": "ragbuilder"},
	})

	if config.Entrypoint != nil {
		t.Fatalf("entrypoint = %v, want nil", config.Entrypoint)
	}
	if len(config.Cmd) != 1 || config.Cmd[0] != "ragbuilder" {
		t.Fatalf("cmd = %v, want [ragbuilder]", config.Cmd)
	}
	if _, ok := config.ExposedPorts["8085/tcp"]; !ok {
		t.Fatalf("exposed ports = %v, want 8085/tcp", config.ExposedPorts)
	}
	if _, ok := config.ExposedPorts["9000/tcp"]; !ok {
		t.Fatal("inherited exposed port dropped")
	}
	if config.Labels["org.opencontainers.image.title"] != "ragbuilder" {
		t.Fatalf("labels = %v", config.Labels)
	}

	want := []string{"LANG=en_US.UTF-8", "PATH=/usr/local/bin:/usr/bin"}
	if len(config.Env) != len(want) {
		t.Fatalf("env = %v, want %v", config.Env, want)
	}
	for i := range want {
		if config.Env[i] != want[i] {
			t.Errorf("env[%d] = %q, want %q", i, config.Env[i], want[i])
		}
	}
}

func TestApplyImageConfigKeepsWorkingDir(t *testing.T) {
	config := ocispec.ImageConfig{WorkingDir: "/srv"}

	applyImageConfig(&config, target.ImageConfig{Cmd: []string{"ragbuilder"}})
	if config.WorkingDir != "/srv" {
		t.Fatalf("working dir = %q, want /srv", config.WorkingDir)
	}
	if config.ExposedPorts != nil {
		t.Fatalf("exposed ports = %v, want nil", config.ExposedPorts)
	}

	applyImageConfig(&config, target.ImageConfig{WorkingDir: "/"})
	if config.WorkingDir != "/" {
		t.Fatalf("working dir = %q, want /", config.WorkingDir)
	}
}
