// Package collection implements the pure operations on the ordered tile
// collection. Every function returns a new Collection and leaves its
// input untouched.
package collection

import (
	"errors"
	"fmt"

	"github.com/dastanaron/homebase/internal/models"
)

var (
	// ErrInvalidIndex is returned when an index is outside the collection
	ErrInvalidIndex = errors.New("invalid index")
	// ErrIllegalMerge is returned when an operation would nest a folder or
	// expects a folder where there is none
	ErrIllegalMerge = errors.New("illegal merge")
)

func checkIndex(c models.Collection, i int) error {
	if i < 0 || i >= len(c) {
		return fmt.Errorf("%w: %d (len %d)", ErrInvalidIndex, i, len(c))
	}
	return nil
}

func folderAt(c models.Collection, i int) (models.Folder, error) {
	if err := checkIndex(c, i); err != nil {
		return models.Folder{}, err
	}
	f, ok := c[i].(models.Folder)
	if !ok {
		return models.Folder{}, fmt.Errorf("%w: item %d is not a folder", ErrIllegalMerge, i)
	}
	return f, nil
}

func linkAt(c models.Collection, i int) (models.Link, error) {
	if err := checkIndex(c, i); err != nil {
		return models.Link{}, err
	}
	l, ok := c[i].(models.Link)
	if !ok {
		return models.Link{}, fmt.Errorf("%w: item %d is a folder", ErrIllegalMerge, i)
	}
	return l, nil
}

// Move removes the item at from and inserts it at to.
func Move(c models.Collection, from, to int) (models.Collection, error) {
	if err := checkIndex(c, from); err != nil {
		return nil, err
	}
	if err := checkIndex(c, to); err != nil {
		return nil, err
	}
	out := c.Clone()
	if from == to {
		return out, nil
	}
	item := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append(models.Collection{item}, out[to:]...)...)
	return out, nil
}

// WrapIntoFolder replaces two links with a new folder holding the target
// first and the source second. The folder takes the lower of the two
// positions.
func WrapIntoFolder(c models.Collection, targetIndex, sourceIndex int) (models.Collection, error) {
	if targetIndex == sourceIndex {
		return nil, fmt.Errorf("%w: cannot wrap item %d with itself", ErrIllegalMerge, targetIndex)
	}
	target, err := linkAt(c, targetIndex)
	if err != nil {
		return nil, err
	}
	source, err := linkAt(c, sourceIndex)
	if err != nil {
		return nil, err
	}

	folder := models.NewFolder(models.DefaultFolderName, target.Clone(), source.Clone())

	lo, hi := targetIndex, sourceIndex
	if lo > hi {
		lo, hi = hi, lo
	}
	out := c.Clone()
	out[lo] = folder
	out = append(out[:hi], out[hi+1:]...)
	return out, nil
}

// InsertIntoFolder appends the link at sourceIndex to the folder at
// folderIndex and removes it from the top level.
func InsertIntoFolder(c models.Collection, folderIndex, sourceIndex int) (models.Collection, error) {
	if folderIndex == sourceIndex {
		return nil, fmt.Errorf("%w: cannot insert item %d into itself", ErrIllegalMerge, folderIndex)
	}
	folder, err := folderAt(c, folderIndex)
	if err != nil {
		return nil, err
	}
	source, err := linkAt(c, sourceIndex)
	if err != nil {
		return nil, err
	}

	out := c.Clone()
	folder = folder.Clone()
	folder.Links = append(folder.Links, source.Clone())
	out[folderIndex] = folder
	out = append(out[:sourceIndex], out[sourceIndex+1:]...)
	return out, nil
}

// ExtractFromFolder moves a folder child to the end of the top level.
// A folder left without children is removed; pruned reports that.
func ExtractFromFolder(c models.Collection, folderIndex, childIndex int) (out models.Collection, pruned bool, err error) {
	folder, err := folderAt(c, folderIndex)
	if err != nil {
		return nil, false, err
	}
	if childIndex < 0 || childIndex >= len(folder.Links) {
		return nil, false, fmt.Errorf("%w: child %d (len %d)", ErrInvalidIndex, childIndex, len(folder.Links))
	}

	out = c.Clone()
	folder = out[folderIndex].(models.Folder)
	child := folder.Links[childIndex]
	folder.Links = append(folder.Links[:childIndex], folder.Links[childIndex+1:]...)

	out = append(out, child)
	if len(folder.Links) == 0 {
		out = append(out[:folderIndex], out[folderIndex+1:]...)
		return out, true, nil
	}
	out[folderIndex] = folder
	return out, false, nil
}

// DeleteItem removes the item at index. Deleting a folder removes its links.
func DeleteItem(c models.Collection, index int) (models.Collection, error) {
	if err := checkIndex(c, index); err != nil {
		return nil, err
	}
	out := c.Clone()
	return append(out[:index], out[index+1:]...), nil
}

// Append adds a link to the end of the top level.
func Append(c models.Collection, l models.Link) models.Collection {
	return append(c.Clone(), l.Clone())
}

// ReplaceLink overwrites the link at index, keeping its ID.
func ReplaceLink(c models.Collection, index int, l models.Link) (models.Collection, error) {
	old, err := linkAt(c, index)
	if err != nil {
		return nil, err
	}
	out := c.Clone()
	l = l.Clone()
	l.ID = old.ID
	out[index] = l
	return out, nil
}

// RenameFolder sets the name of the folder at index.
func RenameFolder(c models.Collection, index int, name string) (models.Collection, error) {
	folder, err := folderAt(c, index)
	if err != nil {
		return nil, err
	}
	out := c.Clone()
	folder = folder.Clone()
	folder.Name = name
	out[index] = folder
	return out, nil
}

// SetFolderColor sets or, with nil, clears the folder color override.
func SetFolderColor(c models.Collection, index int, colorHex *string) (models.Collection, error) {
	folder, err := folderAt(c, index)
	if err != nil {
		return nil, err
	}
	out := c.Clone()
	folder = folder.Clone()
	folder.ColorHex = nil
	if colorHex != nil {
		color := *colorHex
		folder.ColorHex = &color
	}
	out[index] = folder
	return out, nil
}

// PruneEmptyFolders drops folders that have no links.
func PruneEmptyFolders(c models.Collection) models.Collection {
	out := make(models.Collection, 0, len(c))
	for _, item := range c.Clone() {
		if f, ok := item.(models.Folder); ok && len(f.Links) == 0 {
			continue
		}
		out = append(out, item)
	}
	return out
}
