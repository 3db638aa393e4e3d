package parser

import (
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/dastanaron/homebase/internal/collection"
	"github.com/dastanaron/homebase/internal/models"
)

// Parser parses Netscape HTML bookmark files into tiles
type Parser struct {
	logger *zap.Logger
}

// NewParser creates a new parser
func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger}
}

type folderRec struct {
	name  string
	index int // position of the top-level folder in the output, -1 for nested
}

// ParseBookmarksHTML parses an HTML bookmark file. Top-level <H3> folders
// become folders; links in deeper folders are flattened into their
// top-level ancestor. Folders without links are dropped.
func (p *Parser) ParseBookmarksHTML(r io.Reader) (models.Collection, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	out := models.Collection{}
	var folderStack []*folderRec

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		// Found folder header <H3 ...>
		if n.Type == html.ElementNode && n.Data == "h3" {
			rec := &folderRec{name: strings.TrimSpace(textOf(n)), index: -1}
			if len(folderStack) == 0 {
				if rec.name == "" {
					rec.name = models.DefaultFolderName
				}
				rec.index = len(out)
				out = append(out, models.NewFolder(rec.name))
			}
			folderStack = append(folderStack, rec)
		}

		// Found bookmark <A HREF=...>
		if n.Type == html.ElementNode && n.Data == "a" {
			if l, ok := p.linkFrom(n); ok {
				if len(folderStack) > 0 {
					top := folderStack[0]
					f := out[top.index].(models.Folder)
					f.Links = append(f.Links, l)
					out[top.index] = f
				} else {
					out = append(out, l)
				}
			}
		}

		// Recursively traverse children
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		// When exiting DL container - "close" current folder
		if n.Type == html.ElementNode && n.Data == "dl" {
			if len(folderStack) > 0 {
				folderStack = folderStack[:len(folderStack)-1]
			}
		}
	}

	walk(doc)
	return collection.PruneEmptyFolders(out), nil
}

func (p *Parser) linkFrom(n *html.Node) (models.Link, bool) {
	var url, icon string
	for _, attr := range n.Attr {
		switch attr.Key {
		case "href":
			url = strings.TrimSpace(attr.Val)
		case "icon":
			icon = strings.TrimSpace(attr.Val)
		}
	}
	name := strings.TrimSpace(textOf(n))
	if name == "" {
		name = url
	}
	if r := []rune(name); len(r) > models.MaxNameLength {
		name = string(r[:models.MaxNameLength])
	}

	l := models.NewLink(name, url, icon)
	if err := l.Validate(); err != nil {
		p.logger.Debug("skipping bookmark", zap.String("url", url), zap.Error(err))
		return models.Link{}, false
	}
	return l, true
}

// textOf returns the concatenated text content of n
func textOf(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}
