package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cruciblehq/provision/internal/pipeline"
	"github.com/cruciblehq/provision/internal/protocol"
	"github.com/cruciblehq/provision/internal/recipe"
	"github.com/cruciblehq/provision/internal/settings"
	"github.com/fatih/color"
)

// Represents the 'provision build' command.
type BuildCmd struct {
	Context string `arg:"" optional:"" default:"." type:"existingdir" help:"Build context directory."`
	File    string `short:"f" type:"existingfile" placeholder:"RECIPE" help:"Recipe file. Defaults to provision.yaml in the context, or the built-in recipe."`
	Output  string `short:"o" type:"path" placeholder:"DIR" help:"Directory receiving image.tar and report.json."`
	Engine  string `short:"e" placeholder:"NAME" help:"Runtime engine, containerd or docker. Overrides the configured engine."`
	Tag     string `short:"t" placeholder:"REF" help:"Reference the image is stored under. Defaults to <name>:latest."`
	Daemon  bool   `help:"Run the build on the build daemon."`
	Socket  string `short:"s" placeholder:"PATH" help:"Override the default Unix socket path of the daemon."`
}

// Executes the build command.
//
// Runs the pipeline in process, or on the daemon when --daemon is set, and
// prints the result. A failed stage is reported with the tool's diagnostics.
func (c *BuildCmd) Run(ctx context.Context, s *settings.Settings) error {
	result, err := c.build(ctx, s)
	if err != nil {
		var stageErr *pipeline.StageError
		var remoteErr *protocol.ErrorResult
		switch {
		case errors.As(err, &stageErr):
			color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "stage %d (%s) failed\n", stageErr.Index, stageErr.Stage)
		case errors.As(err, &remoteErr) && remoteErr.Stage != "":
			color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "stage %s failed\n", remoteErr.Stage)
		}
		return err
	}

	printResult(result)
	return nil
}

// Runs the build locally or remotely and returns its result.
func (c *BuildCmd) build(ctx context.Context, s *settings.Settings) (*pipeline.Result, error) {
	contextDir, err := filepath.Abs(c.Context)
	if err != nil {
		return nil, err
	}

	if c.Daemon {
		return c.remote(ctx, contextDir)
	}

	if c.Engine != "" {
		s.Engine = c.Engine
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}

	rcp, err := recipe.Find(contextDir, c.File)
	if err != nil {
		return nil, err
	}

	output := c.Output
	if output == "" {
		output = filepath.Join(s.Output, rcp.Name)
	}

	engine, err := openEngine(s)
	if err != nil {
		return nil, err
	}
	defer engine.Close()

	return pipeline.Run(ctx, engine, pipeline.Options{
		Recipe:  rcp,
		Context: contextDir,
		Output:  output,
		Tag:     c.Tag,
	})
}

// Submits the build to the daemon.
func (c *BuildCmd) remote(ctx context.Context, contextDir string) (*pipeline.Result, error) {
	req := &protocol.BuildRequest{Context: contextDir, Tag: c.Tag}

	if c.File != "" {
		f, err := filepath.Abs(c.File)
		if err != nil {
			return nil, err
		}
		req.Recipe = f
	}
	if c.Output != "" {
		o, err := filepath.Abs(c.Output)
		if err != nil {
			return nil, err
		}
		req.Output = o
	}

	var result pipeline.Result
	if err := protocol.Request(ctx, socketPath(c.Socket), protocol.CmdBuild, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Prints a build result to standard output.
func printResult(r *pipeline.Result) {
	label := color.New(color.Faint).SprintFunc()
	ok := color.New(color.FgGreen).SprintFunc()

	for i, s := range r.Stages {
		fmt.Printf("%s %d. %-12s %s\n", ok("✓"), i+1, s.Name, label(s.Duration.Round(time.Millisecond)))
	}
	fmt.Printf("%s %s\n", label("image:    "), r.Image)
	fmt.Printf("%s %s\n", label("digest:   "), r.Digest)
	if r.Archive != "" {
		fmt.Printf("%s %s\n", label("archive:  "), r.Archive)
	}
	fmt.Printf("%s %s\n", label("installed:"), r.Installed)
}
