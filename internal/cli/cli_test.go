package cli

import (
	"errors"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/cruciblehq/provision/internal/paths"
	"github.com/cruciblehq/provision/internal/settings"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"info", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"bogus", log.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOpenEngineUnsupported(t *testing.T) {
	_, err := openEngine(&settings.Settings{Engine: "podman"})
	if !errors.Is(err, settings.ErrInvalidSettings) {
		t.Fatalf("openEngine() error = %v, want %v", err, settings.ErrInvalidSettings)
	}
}

func TestSocketPath(t *testing.T) {
	if got := socketPath(""); got != paths.Socket() {
		t.Errorf("socketPath(\"\") = %q, want %q", got, paths.Socket())
	}
	if got := socketPath("/tmp/p.sock"); got != "/tmp/p.sock" {
		t.Errorf("socketPath() = %q, want /tmp/p.sock", got)
	}
}
