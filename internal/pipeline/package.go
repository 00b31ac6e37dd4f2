package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/cruciblehq/provision/internal/manifest"
	"github.com/opencontainers/go-digest"
)

// A pip command and the sentinel its failure is classified by.
type pipStep struct {
	cmd   string
	class error
}

// Builds the distributable package from the source tree and installs it.
//
// The manifest is validated on the host before any command runs. Every
// sub-step is fatal and classified on its own: dependency resolution
// failures are [ErrManifest], an artifact glob that does not match exactly
// one file is [ErrArtifact], and everything else is [ErrBuild].
func buildPackage(ctx context.Context, r *run) error {
	p := r.recipe.Package

	m, err := loadManifest(filepath.Join(r.context, p.Manifest))
	if err != nil {
		return err
	}
	r.manifest = m
	slog.Info("manifest validated", "path", p.Manifest, "requirements", len(m.Requirements))

	var steps []pipStep
	if len(p.Toolchain) > 0 {
		steps = append(steps, pipStep{toolchainUpgrade(p.Python, p.Toolchain), ErrBuild})
	}
	steps = append(steps,
		pipStep{manifestInstall(p.Python, p.Manifest), ErrManifest},
		pipStep{buildArtifact(p.Python, p.Output, p.Artifact), ErrBuild},
	)

	for _, s := range steps {
		if _, err := runStep(ctx, r.target, Step{Run: s.cmd, Env: pipEnv}, r.state); err != nil {
			return fmt.Errorf("%w: %w", s.class, err)
		}
	}

	artifact, err := r.resolveArtifact(ctx)
	if err != nil {
		return err
	}
	r.artifact = artifact
	slog.Info("artifact built", "path", artifact)

	if _, err := runStep(ctx, r.target, Step{Run: artifactInstall(p.Python, artifact), Env: pipEnv}, r.state); err != nil {
		return fmt.Errorf("%w: %w", ErrBuild, err)
	}

	res, err := runStep(ctx, r.target, Step{Run: showInstalled(p.Python, p.Name), Env: pipEnv}, r.state)
	if err != nil {
		return fmt.Errorf("%w: %s is not registered: %w", ErrBuild, p.Name, err)
	}
	r.installed = digest.FromString(res.Stdout)
	slog.Info("package installed", "name", p.Name, "digest", r.installed)

	return nil
}

// Parses and validates the dependency manifest on the host.
func loadManifest(path string) (*manifest.Manifest, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifest, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifest, err)
	}
	return m, nil
}

// Returns the target path of the single file in the output directory that
// matches the artifact glob.
//
// A missing output directory counts as zero matches. Several matches are
// reported with every candidate so the ambiguity can be resolved.
func (r *run) resolveArtifact(ctx context.Context) (string, error) {
	p := r.recipe.Package
	dir := r.recipe.OutputPath()

	var matches []string
	res, err := runStep(ctx, r.target, Step{Run: listArtifacts(p.Output)}, r.state)
	switch {
	case err == nil:
		matches = matchArtifacts(res.Stdout, p.Artifact)
	case res == nil:
		return "", err
	}

	switch len(matches) {
	case 1:
		return path.Join(dir, matches[0]), nil
	case 0:
		return "", fmt.Errorf("%w: no file in %s matches %q", ErrArtifact, dir, p.Artifact)
	default:
		return "", fmt.Errorf("%w: %d files in %s match %q: %s", ErrArtifact, len(matches), dir, p.Artifact, strings.Join(matches, ", "))
	}
}
