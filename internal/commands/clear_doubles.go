package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dastanaron/homebase/internal/collection"
	"github.com/dastanaron/homebase/internal/service"
)

// ClearDoublesCommand handles removal of duplicate links
type ClearDoublesCommand struct {
	svc *service.TileService
	out io.Writer
}

// NewClearDoublesCommand creates a new clear doubles command
func NewClearDoublesCommand(svc *service.TileService, out io.Writer) *ClearDoublesCommand {
	if out == nil {
		out = os.Stdout
	}
	return &ClearDoublesCommand{svc: svc, out: out}
}

// Execute removes links whose URL appeared earlier (keeps the first one found)
func (c *ClearDoublesCommand) Execute(ctx context.Context) error {
	cleaned, dropped := collection.RemoveDuplicates(c.svc.Collection())
	if len(dropped) == 0 {
		fmt.Fprintln(c.out, "No duplicate links found.")
		return nil
	}

	for _, l := range dropped {
		fmt.Fprintf(c.out, "Found duplicate: '%s' (%s)\n", l.Name, l.URL)
	}
	if err := c.svc.Replace(ctx, cleaned); err != nil {
		return fmt.Errorf("failed to save tiles: %w", err)
	}

	fmt.Fprintf(c.out, "Deleted %d duplicate link(s).\n", len(dropped))
	return nil
}
