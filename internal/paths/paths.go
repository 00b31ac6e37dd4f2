package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/cruciblehq/provision/internal"
)

const (

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Path to the directory for runtime files (sockets, PIDs).
//
//	Linux:   $XDG_RUNTIME_DIR/provision or /run/user/<uid>/provision
//	macOS:   ~/Library/Caches/provision/run
func Runtime() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, internal.Name)
	}
	return filepath.Join(xdg.CacheHome, internal.Name, "run")
}

// Default path to the Unix domain socket of the build daemon.
//
//	Linux:   $XDG_RUNTIME_DIR/provision/provision.sock
//	macOS:   ~/Library/Caches/provision/run/provision.sock
func Socket() string {
	return filepath.Join(Runtime(), internal.Name+".sock")
}

// Default path to the PID file of the build daemon.
//
//	Linux:   $XDG_RUNTIME_DIR/provision/provision.pid
//	macOS:   ~/Library/Caches/provision/run/provision.pid
func PIDFile() string {
	return filepath.Join(Runtime(), internal.Name+".pid")
}

// Default path to the configuration file.
//
//	Linux:   $XDG_CONFIG_HOME/provision/config.yaml
//	macOS:   ~/Library/Application Support/provision/config.yaml
func ConfigFile() string {
	return filepath.Join(xdg.ConfigHome, internal.Name, "config.yaml")
}

// Default directory receiving exported images and run reports.
//
//	Linux:   $XDG_DATA_HOME/provision/images
//	macOS:   ~/Library/Application Support/provision/images
func Output() string {
	return filepath.Join(xdg.DataHome, internal.Name, "images")
}
