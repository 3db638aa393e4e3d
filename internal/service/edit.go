package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dastanaron/homebase/internal/collection"
	"github.com/dastanaron/homebase/internal/models"
)

// AddLink appends a new link to the top level
func (s *TileService) AddLink(ctx context.Context, name, url, icon string) (models.Link, error) {
	l, err := newLink(name, url, icon)
	if err != nil {
		return models.Link{}, err
	}
	err = s.edit(ctx, "add link", func(c models.Collection) (models.Collection, error) {
		return collection.Append(c, l), nil
	})
	return l, err
}

// UpdateLink replaces the fields of the top-level link at index
func (s *TileService) UpdateLink(ctx context.Context, index int, name, url, icon string) error {
	l, err := newLink(name, url, icon)
	if err != nil {
		return err
	}
	return s.edit(ctx, "update link", func(c models.Collection) (models.Collection, error) {
		return collection.ReplaceLink(c, index, l)
	})
}

// Delete removes the top-level item at index. A folder goes with its links.
func (s *TileService) Delete(ctx context.Context, index int) error {
	return s.edit(ctx, "delete", func(c models.Collection) (models.Collection, error) {
		return collection.DeleteItem(c, index)
	})
}

// RenameFolder renames the folder at index
func (s *TileService) RenameFolder(ctx context.Context, index int, name string) error {
	name = strings.TrimSpace(name)
	return s.edit(ctx, "rename folder", func(c models.Collection) (models.Collection, error) {
		out, err := collection.RenameFolder(c, index, name)
		if err != nil {
			return nil, err
		}
		return out, validateFolder(out, index)
	})
}

// SetFolderColor sets the folder tile color. Nil resets it.
func (s *TileService) SetFolderColor(ctx context.Context, index int, colorHex *string) error {
	return s.edit(ctx, "set folder color", func(c models.Collection) (models.Collection, error) {
		out, err := collection.SetFolderColor(c, index, colorHex)
		if err != nil {
			return nil, err
		}
		return out, validateFolder(out, index)
	})
}

// AddLinkToFolder appends a new link to the folder at folderIndex
func (s *TileService) AddLinkToFolder(ctx context.Context, folderIndex int, name, url, icon string) (models.Link, error) {
	l, err := newLink(name, url, icon)
	if err != nil {
		return models.Link{}, err
	}
	err = s.edit(ctx, "add link to folder", func(c models.Collection) (models.Collection, error) {
		return collection.AppendToFolder(c, folderIndex, l)
	})
	return l, err
}

// UpdateFolderLink replaces the fields of a link inside a folder
func (s *TileService) UpdateFolderLink(ctx context.Context, folderIndex, childIndex int, name, url, icon string) error {
	l, err := newLink(name, url, icon)
	if err != nil {
		return err
	}
	return s.edit(ctx, "update folder link", func(c models.Collection) (models.Collection, error) {
		return collection.ReplaceFolderLink(c, folderIndex, childIndex, l)
	})
}

// DeleteFolderLink removes a link from a folder. A folder left empty is
// removed and its view closes.
func (s *TileService) DeleteFolderLink(ctx context.Context, folderIndex, childIndex int) error {
	return s.edit(ctx, "delete folder link", func(c models.Collection) (models.Collection, error) {
		out, _, err := collection.DeleteFromFolder(c, folderIndex, childIndex)
		return out, err
	})
}

// Replace swaps the whole collection, as a backup restore does.
func (s *TileService) Replace(ctx context.Context, c models.Collection) error {
	return s.edit(ctx, "replace", func(models.Collection) (models.Collection, error) {
		return collection.PruneEmptyFolders(c), nil
	})
}

// AppendItems adds imported items after the existing ones.
func (s *TileService) AppendItems(ctx context.Context, items models.Collection) error {
	return s.edit(ctx, "append items", func(c models.Collection) (models.Collection, error) {
		out := append(c.Clone(), collection.PruneEmptyFolders(items)...)
		return out, nil
	})
}

// edit applies fn to the collection, saves and notifies. Edits are refused
// while a drag is running.
func (s *TileService) edit(ctx context.Context, op string, fn func(models.Collection) (models.Collection, error)) error {
	s.mu.Lock()
	if s.machine.Active() {
		s.mu.Unlock()
		return ErrDragInProgress
	}

	out, err := fn(s.items)
	if err != nil {
		s.mu.Unlock()
		if errors.Is(err, collection.ErrInvalidIndex) {
			s.logger.Warn(op+" ignored", zap.Error(err))
		}
		return err
	}

	s.items = out
	saveErr := s.save(ctx)
	events := s.changed()
	s.mu.Unlock()

	s.logger.Debug(op, zap.Int("items", len(out)))
	s.dispatch(events)
	return saveErr
}

func newLink(name, url, icon string) (models.Link, error) {
	l := models.NewLink(strings.TrimSpace(name), strings.TrimSpace(url), strings.TrimSpace(icon))
	if err := l.Validate(); err != nil {
		return models.Link{}, fmt.Errorf("invalid link: %w", err)
	}
	return l, nil
}

func validateFolder(c models.Collection, index int) error {
	f, ok := c[index].(models.Folder)
	if !ok {
		return fmt.Errorf("%w: item %d is not a folder", collection.ErrIllegalMerge, index)
	}
	if err := f.Validate(); err != nil {
		return fmt.Errorf("invalid folder: %w", err)
	}
	return nil
}
