package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/dastanaron/homebase/internal/models"
	"github.com/dastanaron/homebase/internal/service"
)

// ListCommand prints the tiles in display order
type ListCommand struct {
	svc *service.TileService
	out io.Writer
}

// NewListCommand creates a new list command
func NewListCommand(svc *service.TileService, out io.Writer) *ListCommand {
	if out == nil {
		out = os.Stdout
	}
	return &ListCommand{svc: svc, out: out}
}

// Execute prints every tile; folder contents are indented under the folder
func (c *ListCommand) Execute() error {
	tiles := c.svc.Collection()
	if len(tiles) == 0 {
		fmt.Fprintln(c.out, "No tiles.")
		return nil
	}

	for i, item := range tiles {
		switch v := item.(type) {
		case models.Link:
			fmt.Fprintf(c.out, "%3d. %s  %s\n", i+1, v.Name, v.URL)
		case models.Folder:
			fmt.Fprintf(c.out, "%3d. [%s] (%d)\n", i+1, v.Name, len(v.Links))
			for _, l := range v.Links {
				fmt.Fprintf(c.out, "       - %s  %s\n", l.Name, l.URL)
			}
		}
	}
	return nil
}
