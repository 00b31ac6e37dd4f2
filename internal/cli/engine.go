package cli

import (
	"fmt"

	"github.com/cruciblehq/provision/internal/docker"
	"github.com/cruciblehq/provision/internal/runtime"
	"github.com/cruciblehq/provision/internal/settings"
	"github.com/cruciblehq/provision/internal/target"
)

// Connects to the engine named by the settings.
func openEngine(s *settings.Settings) (target.Engine, error) {
	switch s.Engine {
	case settings.EngineContainerd:
		rt, err := runtime.New(s.Containerd.Address, s.Containerd.Namespace)
		if err != nil {
			return nil, err
		}
		return rt, nil
	case settings.EngineDocker:
		eng, err := docker.New(s.Docker.Host)
		if err != nil {
			return nil, err
		}
		return eng, nil
	default:
		return nil, fmt.Errorf("%w: unsupported engine %q", settings.ErrInvalidSettings, s.Engine)
	}
}
