package cli

import (
	"context"
	"fmt"

	"github.com/cruciblehq/provision/internal"
)

// Represents the 'provision version' command.
type VersionCmd struct{}

// Executes the version command.
func (c *VersionCmd) Run(ctx context.Context) error {
	fmt.Println(internal.VersionString())
	return nil
}
