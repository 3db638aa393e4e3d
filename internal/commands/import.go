package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/dastanaron/homebase/internal/parser"
	"github.com/dastanaron/homebase/internal/service"
)

// ImportCommand handles tile import from an HTML bookmark file or a JSON backup
type ImportCommand struct {
	svc    *service.TileService
	parser *parser.Parser
	out    io.Writer
}

// NewImportCommand creates a new import command
func NewImportCommand(svc *service.TileService, logger *zap.Logger, out io.Writer) *ImportCommand {
	if out == nil {
		out = os.Stdout
	}
	return &ImportCommand{
		svc:    svc,
		parser: parser.NewParser(logger),
		out:    out,
	}
}

// Execute imports from filePath. JSON backups replace the current tiles,
// HTML bookmarks are appended after them.
func (c *ImportCommand) Execute(ctx context.Context, filePath string) error {
	if strings.EqualFold(filepath.Ext(filePath), ".json") {
		return c.importBackup(ctx, filePath)
	}
	return c.importHTML(ctx, filePath)
}

func (c *ImportCommand) importHTML(ctx context.Context, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("cannot open file: %w", err)
	}
	defer file.Close()

	items, err := c.parser.ParseBookmarksHTML(file)
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}
	if err := c.svc.AppendItems(ctx, items); err != nil {
		return fmt.Errorf("failed to import bookmarks: %w", err)
	}

	fmt.Fprintf(c.out, "Imported %d links in %d folders.\n", len(items.Links()), items.Folders())
	return nil
}

func (c *ImportCommand) importBackup(ctx context.Context, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("cannot open file: %w", err)
	}
	backup, err := decodeBackup(data)
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}

	tiles, ok, err := backup.Collection()
	if err != nil {
		return err
	}
	if ok {
		if err := c.svc.Replace(ctx, tiles); err != nil {
			return fmt.Errorf("failed to restore tiles: %w", err)
		}
		fmt.Fprintf(c.out, "Restored %d tiles.\n", len(c.svc.Collection()))
	}
	if len(backup.StickyNotes) > 0 {
		if err := c.svc.SetNotes(ctx, backup.StickyNotes); err != nil {
			return fmt.Errorf("failed to restore notes: %w", err)
		}
		fmt.Fprintln(c.out, "Restored sticky notes.")
	}
	return nil
}
