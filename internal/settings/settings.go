package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/cruciblehq/provision/internal/paths"
	"github.com/spf13/viper"
)

// Supported engines.
const (
	EngineContainerd = "containerd"
	EngineDocker     = "docker"
)

// Supported log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Prefix of the environment variables that override settings.
const envPrefix = "PROVISION"

var ErrInvalidSettings = errors.New("invalid settings")

// Tool configuration.
type Settings struct {
	Engine     string     `mapstructure:"engine"`     // Runtime engine, "containerd" or "docker".
	Containerd Containerd `mapstructure:"containerd"` // Containerd connection.
	Docker     Docker     `mapstructure:"docker"`     // Docker connection.
	Output     string     `mapstructure:"output"`     // Directory receiving exported images and reports.
	Log        Log        `mapstructure:"log"`        // Logging.
}

// Containerd connection settings.
type Containerd struct {
	Address   string `mapstructure:"address"`   // Socket address.
	Namespace string `mapstructure:"namespace"` // Namespace for images and containers.
}

// Docker connection settings.
type Docker struct {
	Host string `mapstructure:"host"` // Daemon host. Empty uses the environment.
}

// Logging settings.
type Log struct {
	Level  string `mapstructure:"level"`  // "debug", "info", "warn" or "error".
	Format string `mapstructure:"format"` // "text" or "json".
}

// Loads settings from defaults, the file at path and the environment.
//
// An empty path reads the default configuration file when it exists. A path
// that was given explicitly must exist.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	file := path
	if file == "" {
		file = paths.ConfigFile()
		if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
			file = ""
		}
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Registers the default value of every key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("engine", EngineContainerd)
	v.SetDefault("containerd.address", "/run/containerd/containerd.sock")
	v.SetDefault("containerd.namespace", "provision")
	v.SetDefault("docker.host", "")
	v.SetDefault("output", paths.Output())
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", FormatText)
}

// Checks enumerated settings hold a supported value.
func (s *Settings) Validate() error {
	s.Engine = strings.ToLower(s.Engine)
	s.Log.Level = strings.ToLower(s.Log.Level)
	s.Log.Format = strings.ToLower(s.Log.Format)

	if !slices.Contains([]string{EngineContainerd, EngineDocker}, s.Engine) {
		return fmt.Errorf("%w: unsupported engine %q", ErrInvalidSettings, s.Engine)
	}
	if !slices.Contains([]string{"debug", "info", "warn", "warning", "error"}, s.Log.Level) {
		return fmt.Errorf("%w: unsupported log level %q", ErrInvalidSettings, s.Log.Level)
	}
	if !slices.Contains([]string{FormatText, FormatJSON}, s.Log.Format) {
		return fmt.Errorf("%w: unsupported log format %q", ErrInvalidSettings, s.Log.Format)
	}
	if s.Engine == EngineContainerd && s.Containerd.Address == "" {
		return fmt.Errorf("%w: containerd address is required", ErrInvalidSettings)
	}
	return nil
}
