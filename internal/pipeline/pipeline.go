package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cruciblehq/provision/internal/manifest"
	"github.com/cruciblehq/provision/internal/recipe"
	"github.com/cruciblehq/provision/internal/target"
	"github.com/google/uuid"
	"github.com/opencontainers/go-digest"
)

// Options for a provisioning run.
type Options struct {
	Recipe  *recipe.Recipe // Validated recipe describing the run.
	Context string         // Host directory materialized into the target.
	Output  string         // Directory receiving image.tar and report.json. Empty skips both.
	Tag     string         // Reference the image is stored under. Defaults to "<name>:latest".
	ID      string         // Build container ID. Defaults to a generated one.
}

// Outcome of a successful run.
type Result struct {
	Name      string        `json:"name"`              // Recipe name.
	Image     string        `json:"image"`             // Reference the image was stored under.
	Archive   string        `json:"archive,omitempty"` // Exported OCI archive.
	Digest    digest.Digest `json:"digest"`            // Digest of the committed image.
	Artifact  string        `json:"artifact"`          // Path of the installed build artifact inside the target.
	Installed digest.Digest `json:"installed"`         // Digest of the installed package's file listing.
	Stages    []StageReport `json:"stages"`            // Stages in execution order.
}

// Timing of a single stage.
type StageReport struct {
	Name     string        `json:"name"`     // Stage name.
	Duration time.Duration `json:"duration"` // Wall time spent in the stage.
}

// State shared by the stages of a single run.
type run struct {
	recipe    *recipe.Recipe
	engine    target.Engine
	context   string
	output    string
	ref       string
	id        string
	target    target.Target      // Build container, set by the provision stage.
	state     *stepState         // Accumulated shell, workdir and environment.
	manifest  *manifest.Manifest // Host-side manifest, set by the package stage.
	artifact  string             // Installed artifact path inside the target.
	installed digest.Digest      // Digest of the installed package listing.
	image     *target.Image      // Committed image, set by the configure stage.
}

// Executes the five provisioning stages against a fresh build container.
//
// Stages run strictly in order and the first failure stops the run: later
// stages never execute and no image is committed. The failure is returned as
// a [*StageError] whose error is classified by one of the stage sentinels.
// The build container is destroyed when Run returns, whatever the outcome.
func Run(ctx context.Context, engine target.Engine, opts Options) (*Result, error) {
	if opts.Recipe == nil {
		return nil, errors.New("missing recipe")
	}
	if err := opts.Recipe.Validate(); err != nil {
		return nil, &StageError{Stage: stages[0].name, Index: 1, Err: classify(ErrProvision, err)}
	}

	r := &run{
		recipe:  opts.Recipe,
		engine:  engine,
		context: opts.Context,
		output:  opts.Output,
		ref:     opts.Tag,
		id:      opts.ID,
		state:   newStepState(),
	}
	if r.ref == "" {
		r.ref = opts.Recipe.Name + ":latest"
	}
	if r.id == "" {
		r.id = containerID(opts.Recipe)
	}

	defer func() {
		if r.target != nil {
			r.target.Destroy(context.WithoutCancel(ctx))
		}
	}()

	result := &Result{Name: opts.Recipe.Name}

	for i, s := range stages {
		slog.Info("stage", "index", i+1, "name", s.name)
		start := time.Now()

		if err := s.exec(ctx, r); err != nil {
			return nil, &StageError{Stage: s.name, Index: i + 1, Err: classify(s.class, err)}
		}

		elapsed := time.Since(start)
		slog.Debug("stage complete", "name", s.name, "duration", elapsed)
		result.Stages = append(result.Stages, StageReport{Name: s.name, Duration: elapsed})
	}

	result.Image = r.image.Ref
	result.Archive = r.image.Path
	result.Digest = r.image.Digest
	result.Artifact = r.artifact
	result.Installed = r.installed

	// An unwritable report fails the last stage.
	if r.output != "" {
		if err := writeReport(filepath.Join(r.output, ReportFilename), result); err != nil {
			last := stages[len(stages)-1]
			return nil, &StageError{Stage: last.name, Index: len(stages), Err: classify(last.class, err)}
		}
	}

	return result, nil
}

// Generates a build container ID from the recipe name, its platform and a
// random suffix, so concurrent runs of one recipe never collide.
func containerID(r *recipe.Recipe) string {
	suffix := uuid.NewString()[:8]
	if r.Platform == "" {
		return fmt.Sprintf("%s-%s", r.Name, suffix)
	}
	slug := strings.ReplaceAll(r.Platform, "/", "-")
	return fmt.Sprintf("%s-%s-%s", r.Name, slug, suffix)
}

// Creates the output directory when one is configured.
func (r *run) prepareOutput() error {
	if r.output == "" {
		return nil
	}
	if err := os.MkdirAll(r.output, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrFileSystem, err)
	}
	return nil
}
