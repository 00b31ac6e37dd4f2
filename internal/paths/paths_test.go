package paths

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestPathsShareRuntimeDir(t *testing.T) {
	dir := Runtime()

	if got := filepath.Dir(Socket()); got != dir {
		t.Errorf("Socket() dir = %q, want %q", got, dir)
	}
	if got := filepath.Dir(PIDFile()); got != dir {
		t.Errorf("PIDFile() dir = %q, want %q", got, dir)
	}
	if !strings.HasSuffix(Socket(), "provision.sock") {
		t.Errorf("Socket() = %q, want provision.sock suffix", Socket())
	}
}

func TestConfigFile(t *testing.T) {
	got := ConfigFile()
	if filepath.Base(got) != "config.yaml" {
		t.Errorf("ConfigFile() = %q, want config.yaml", got)
	}
	if filepath.Base(filepath.Dir(got)) != "provision" {
		t.Errorf("ConfigFile() = %q, want provision directory", got)
	}
}

func TestOutput(t *testing.T) {
	got := Output()
	if !strings.HasSuffix(got, filepath.Join("provision", "images")) {
		t.Errorf("Output() = %q, want provision/images suffix", got)
	}
}
