package service

import (
	"context"

	"github.com/dastanaron/homebase/internal/drag"
	"github.com/dastanaron/homebase/internal/models"
)

// StartDrag begins dragging the item at index. With an in-folder context
// index is the child position inside that folder.
func (s *TileService) StartDrag(index int, dc drag.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.StartDrag(s.items, index, dc)
}

// Hover feeds a pointer position over a top-level tile.
func (s *TileService) Hover(t drag.Target) {
	s.run(context.Background(), func(c models.Collection) drag.Result {
		return s.machine.Hover(c, t)
	})
}

// HoverInFolder feeds the pointer passing over a sibling in the open folder.
func (s *TileService) HoverInFolder(childIndex int) {
	s.run(context.Background(), func(c models.Collection) drag.Result {
		return s.machine.HoverInFolder(c, childIndex)
	})
}

// Drop ends the drag on a top-level tile.
func (s *TileService) Drop(ctx context.Context, t drag.Target) error {
	return s.run(ctx, func(c models.Collection) drag.Result {
		return s.machine.Drop(c, t)
	})
}

// DragEnd ends the drag away from any tile.
func (s *TileService) DragEnd(ctx context.Context) error {
	return s.run(ctx, s.machine.DragEnd)
}

// Cancel aborts the drag.
func (s *TileService) Cancel(ctx context.Context) error {
	return s.run(ctx, s.machine.Cancel)
}

// DropInFolder ends an in-folder drag on the folder view.
func (s *TileService) DropInFolder(ctx context.Context) error {
	return s.run(ctx, s.machine.DropInFolder)
}

// DropOutside ends the drag on the grid background.
func (s *TileService) DropOutside(ctx context.Context) error {
	return s.run(ctx, s.machine.DropOutside)
}

func (s *TileService) run(ctx context.Context, step func(models.Collection) drag.Result) error {
	s.mu.Lock()
	res := step(s.items)
	events, err := s.apply(ctx, res)
	s.mu.Unlock()

	s.dispatch(events)
	return err
}

// apply adopts a transition result. Callers hold mu.
func (s *TileService) apply(ctx context.Context, res drag.Result) ([]event, error) {
	var events []event
	var err error

	if res.Changed {
		s.items = res.Collection
	}
	if res.Commit {
		err = s.save(ctx)
	}
	if res.Changed {
		snapshot := s.items.Clone()
		events = append(events, func(l Listener) { l.CollectionChanged(snapshot) })
	}

	candidate := res.MergeCandidate
	if res.Ended {
		candidate = -1
	}
	if candidate != s.candidate {
		s.candidate = candidate
		events = append(events, func(l Listener) { l.MergeCandidate(candidate) })
	}

	switch {
	case res.FolderClosed:
		s.openFolderID = ""
		events = append(events, func(l Listener) { l.FolderClosed() })
	case res.OpenFolder || res.FolderRefreshed:
		if res.FolderIndex >= 0 && res.FolderIndex < len(s.items) {
			if f, ok := s.items[res.FolderIndex].(models.Folder); ok {
				s.openFolderID = f.ID
				f, i := f.Clone(), res.FolderIndex
				events = append(events, func(l Listener) { l.FolderOpened(f, i) })
			}
		}
	}
	return events, err
}
