package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cruciblehq/provision/internal/pipeline"
	"github.com/cruciblehq/provision/internal/recipe"
	"github.com/fatih/color"
)

// Represents the 'provision plan' command.
type PlanCmd struct {
	Context string `arg:"" optional:"" default:"." type:"existingdir" help:"Build context directory."`
	File    string `short:"f" type:"existingfile" placeholder:"RECIPE" help:"Recipe file. Defaults to provision.yaml in the context, or the built-in recipe."`
}

// Executes the plan command.
//
// Validates the recipe and the dependency manifest, then prints the commands
// of every stage without contacting a runtime.
func (c *PlanCmd) Run(ctx context.Context) error {
	contextDir, err := filepath.Abs(c.Context)
	if err != nil {
		return err
	}

	rcp, err := recipe.Find(contextDir, c.File)
	if err != nil {
		return err
	}

	plan, err := pipeline.Plan(rcp, contextDir)
	if err != nil {
		return err
	}

	heading := color.New(color.FgCyan, color.Bold).SprintFunc()
	comment := color.New(color.Faint).SprintFunc()

	for i, s := range plan {
		fmt.Println(heading(fmt.Sprintf("%d. %s", i+1, s.Name)))
		for _, cmd := range s.Commands {
			if strings.HasPrefix(cmd, "#") {
				cmd = comment(cmd)
			}
			fmt.Println("   " + cmd)
		}
	}
	return nil
}
