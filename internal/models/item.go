package models

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// ItemType represents the type of item (link or folder)
type ItemType string

const (
	ItemTypeLink   ItemType = "link"
	ItemTypeFolder ItemType = "folder"
)

// DefaultFolderName is the name given to folders created by dropping one tile onto another
const DefaultFolderName = "Folder"

const (
	MaxNameLength = 200
	MaxURLLength  = 2048
)

var colorHexRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Item is a tile in the grid: either a Link or a Folder.
// The interface is sealed; only this package implements it.
type Item interface {
	ItemID() string
	ItemName() string
	Type() ItemType
	isItem()
}

// Link represents a single site tile
type Link struct {
	ID   string
	Name string
	URL  string
	Icon *string // Icon URL or data URI (nullable)
}

// Folder groups links. Folders hold links only, never other folders.
type Folder struct {
	ID       string
	Name     string
	ColorHex *string // Per-folder tile color override (nullable)
	Links    []Link
}

// NewLink creates a Link with a generated ID. An empty icon is stored as nil.
func NewLink(name, url, icon string) Link {
	l := Link{ID: NewID(), Name: name, URL: url}
	if icon != "" {
		l.Icon = &icon
	}
	return l
}

// NewFolder creates a Folder with a generated ID holding copies of the given links.
func NewFolder(name string, links ...Link) Folder {
	f := Folder{ID: NewID(), Name: name}
	if len(links) > 0 {
		f.Links = append([]Link(nil), links...)
	}
	return f
}

// NewID returns a fresh opaque item identifier.
func NewID() string {
	return uuid.NewString()
}

// IsFolder reports whether the item is a Folder.
func IsFolder(item Item) bool {
	_, ok := item.(Folder)
	return ok
}

func (l Link) ItemID() string   { return l.ID }
func (l Link) ItemName() string { return l.Name }
func (l Link) Type() ItemType   { return ItemTypeLink }
func (Link) isItem()            {}

func (f Folder) ItemID() string   { return f.ID }
func (f Folder) ItemName() string { return f.Name }
func (f Folder) Type() ItemType   { return ItemTypeFolder }
func (Folder) isItem()            {}

// Clone returns a copy of the folder that shares no memory with f.
func (f Folder) Clone() Folder {
	out := f
	if f.ColorHex != nil {
		c := *f.ColorHex
		out.ColorHex = &c
	}
	if f.Links != nil {
		out.Links = make([]Link, len(f.Links))
		for i, l := range f.Links {
			out.Links[i] = l.Clone()
		}
	}
	return out
}

// Clone returns a copy of the link that shares no memory with l.
func (l Link) Clone() Link {
	out := l
	if l.Icon != nil {
		icon := *l.Icon
		out.Icon = &icon
	}
	return out
}

// IconOrEmpty returns the icon or an empty string
func (l Link) IconOrEmpty() string {
	if l.Icon == nil {
		return ""
	}
	return *l.Icon
}

// Validate checks user-supplied link fields.
func (l Link) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Name, validation.Required, validation.Length(1, MaxNameLength)),
		validation.Field(&l.URL, validation.Required, validation.Length(1, MaxURLLength)),
	)
}

// Validate checks user-supplied folder fields, including every child link.
func (f Folder) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required, validation.Length(1, MaxNameLength)),
		validation.Field(&f.ColorHex, validation.NilOrNotEmpty, validation.Match(colorHexRe).Error("must be a #RRGGBB color")),
		validation.Field(&f.Links),
	)
}

// Collection is the ordered top-level list of tiles. Order is display order.
type Collection []Item

// Clone returns a deep copy of the collection.
func (c Collection) Clone() Collection {
	if c == nil {
		return nil
	}
	out := make(Collection, len(c))
	for i, item := range c {
		switch v := item.(type) {
		case Link:
			out[i] = v.Clone()
		case Folder:
			out[i] = v.Clone()
		}
	}
	return out
}

// IndexOf returns the position of the item with the given ID, or -1.
func (c Collection) IndexOf(id string) int {
	for i, item := range c {
		if item.ItemID() == id {
			return i
		}
	}
	return -1
}

// Folders returns the number of folders at the top level.
func (c Collection) Folders() int {
	n := 0
	for _, item := range c {
		if IsFolder(item) {
			n++
		}
	}
	return n
}

// Links returns every link in the collection, top level first in order,
// with folder contents in place of each folder.
func (c Collection) Links() []Link {
	var out []Link
	for _, item := range c {
		switch v := item.(type) {
		case Link:
			out = append(out, v)
		case Folder:
			out = append(out, v.Links...)
		}
	}
	return out
}
