package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dastanaron/homebase/internal/models"
	"github.com/dastanaron/homebase/internal/service"
)

// ExportCommand handles tile export to a JSON backup or an HTML bookmark file
type ExportCommand struct {
	svc *service.TileService
	out io.Writer
}

// NewExportCommand creates a new export command
func NewExportCommand(svc *service.TileService, out io.Writer) *ExportCommand {
	if out == nil {
		out = os.Stdout
	}
	return &ExportCommand{svc: svc, out: out}
}

// Execute exports tiles to filePath. The format follows the extension.
func (c *ExportCommand) Execute(ctx context.Context, filePath string) error {
	tiles := c.svc.Collection()

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("cannot create file: %w", err)
	}
	defer file.Close()

	if strings.EqualFold(filepath.Ext(filePath), ".json") {
		notes, err := c.svc.Notes(ctx)
		if err != nil {
			return fmt.Errorf("failed to get notes: %w", err)
		}
		if err := writeBackup(file, tiles, notes); err != nil {
			return err
		}
	} else {
		writeHTML(file, tiles)
	}

	fmt.Fprintf(c.out, "Exported %d links to %s\n", len(tiles.Links()), filePath)
	return nil
}

func writeBackup(w io.Writer, tiles models.Collection, notes json.RawMessage) error {
	backup, err := NewLinksBackup(tiles, notes)
	if err != nil {
		return fmt.Errorf("failed to encode tiles: %w", err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(backup); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}

// writeHTML writes tiles as a Netscape bookmark file in display order
func writeHTML(w io.Writer, tiles models.Collection) {
	fmt.Fprintf(w, "<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	fmt.Fprintf(w, "<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	fmt.Fprintf(w, "<TITLE>Bookmarks</TITLE>\n")
	fmt.Fprintf(w, "<H1>Bookmarks</H1>\n")
	fmt.Fprintf(w, "<DL><p>\n")

	for _, item := range tiles {
		switch v := item.(type) {
		case models.Link:
			writeLink(w, v, "    ")
		case models.Folder:
			fmt.Fprintf(w, "    <DT><H3>%s</H3>\n", html.EscapeString(v.Name))
			fmt.Fprintf(w, "    <DL><p>\n")
			for _, l := range v.Links {
				writeLink(w, l, "        ")
			}
			fmt.Fprintf(w, "    </DL><p>\n")
		}
	}

	fmt.Fprintf(w, "</DL><p>\n")
}

// writeLink writes a single link
func writeLink(w io.Writer, l models.Link, indent string) {
	escapedURL := html.EscapeString(l.URL)
	escapedName := html.EscapeString(l.Name)

	if icon := l.IconOrEmpty(); icon != "" {
		fmt.Fprintf(w, "%s<DT><A HREF=\"%s\" ICON=\"%s\">%s</A>\n", indent, escapedURL, html.EscapeString(icon), escapedName)
	} else {
		fmt.Fprintf(w, "%s<DT><A HREF=\"%s\">%s</A>\n", indent, escapedURL, escapedName)
	}
}
