package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/dastanaron/homebase/internal/collection"
	"github.com/dastanaron/homebase/internal/drag"
	"github.com/dastanaron/homebase/internal/models"
	"github.com/dastanaron/homebase/internal/repository"
	"github.com/dastanaron/homebase/internal/retry"
)

var (
	// ErrDragInProgress is returned by edits attempted while a drag is running.
	ErrDragInProgress = errors.New("drag in progress")
	// ErrPersistence wraps load and save failures. The in-memory collection
	// stays authoritative when it is returned.
	ErrPersistence = errors.New("persistence failed")
)

// Listener receives collection signals. Calls are made after the service
// lock is released, so a listener may call back into the service.
type Listener interface {
	CollectionChanged(c models.Collection)
	FolderOpened(f models.Folder, index int)
	FolderClosed()
	// MergeCandidate reports the tile to highlight as a drop target, or -1.
	MergeCandidate(index int)
}

// Options configures a TileService
type Options struct {
	Drag   drag.Options
	Retry  retry.Config
	Logger *zap.Logger
}

// TileService owns the tile collection. It is the only mutator: drag
// transitions and edits both go through it, and every committed change is
// saved before listeners hear about it.
type TileService struct {
	mu      sync.Mutex
	repo    repository.Repository
	machine *drag.Machine
	retry   retry.Config
	logger  *zap.Logger

	items        models.Collection
	openFolderID string
	candidate    int

	listenersMu sync.RWMutex
	listeners   []Listener
}

// NewTileService creates a service over repo. Call Load before use.
func NewTileService(repo repository.Repository, opts Options) *TileService {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dragOpts := opts.Drag
	if dragOpts.Logger == nil {
		dragOpts.Logger = logger.Named("drag")
	}
	cfg := opts.Retry
	if cfg.MaxAttempts == 0 && cfg.InitialWait == 0 {
		cfg = retry.DefaultConfig()
	}
	return &TileService{
		repo:      repo,
		machine:   drag.NewMachine(dragOpts),
		retry:     cfg,
		logger:    logger,
		items:     models.Collection{},
		candidate: -1,
	}
}

// Subscribe registers l for collection signals
func (s *TileService) Subscribe(l Listener) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Load reads the stored collection. On failure the service keeps an empty
// collection and returns ErrPersistence.
func (s *TileService) Load(ctx context.Context) error {
	s.mu.Lock()
	var c models.Collection
	err := retry.Do(ctx, s.retry, func() error {
		var err error
		c, err = s.repo.Tiles().Load(ctx)
		if errors.Is(err, repository.ErrCorrupt) {
			return retry.Permanent(err)
		}
		return err
	}, func(attempt int, err error) {
		s.logger.Warn("load failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
	})
	if err != nil {
		s.mu.Unlock()
		s.logger.Error("failed to load tiles", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	s.items = c
	s.openFolderID = ""
	ev := s.changed()
	s.mu.Unlock()

	s.logger.Info("tiles loaded", zap.Int("items", len(c)), zap.Int("folders", c.Folders()))
	s.dispatch(ev)
	return nil
}

// Degraded reports whether saved changes are held in memory only because
// the database refused them.
func (s *TileService) Degraded() bool {
	d, ok := s.repo.(interface{ Degraded() bool })
	return ok && d.Degraded()
}

// Collection returns a copy of the current collection
func (s *TileService) Collection() models.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Clone()
}

// Dragging reports whether a drag session is active
func (s *TileService) Dragging() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Active()
}

// ActiveFolder returns the folder whose view is open
func (s *TileService) ActiveFolder() (models.Folder, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeFolder()
}

func (s *TileService) activeFolder() (models.Folder, int, bool) {
	if s.openFolderID == "" {
		return models.Folder{}, -1, false
	}
	i := s.items.IndexOf(s.openFolderID)
	if i < 0 {
		return models.Folder{}, -1, false
	}
	f, ok := s.items[i].(models.Folder)
	if !ok {
		return models.Folder{}, -1, false
	}
	return f.Clone(), i, true
}

// OpenFolder opens the folder view for the folder at index
func (s *TileService) OpenFolder(index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.items) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", collection.ErrInvalidIndex, index)
	}
	f, ok := s.items[index].(models.Folder)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: item %d is not a folder", collection.ErrIllegalMerge, index)
	}
	s.openFolderID = f.ID
	ev := []event{func(l Listener) { l.FolderOpened(f.Clone(), index) }}
	s.mu.Unlock()

	s.dispatch(ev)
	return nil
}

// CloseFolder closes the folder view
func (s *TileService) CloseFolder() {
	s.mu.Lock()
	wasOpen := s.openFolderID != ""
	s.openFolderID = ""
	s.mu.Unlock()

	if wasOpen {
		s.dispatch([]event{func(l Listener) { l.FolderClosed() }})
	}
}

// Notes returns the stored sticky notes
func (s *TileService) Notes(ctx context.Context) (json.RawMessage, error) {
	return s.repo.Notes().Load(ctx)
}

// SetNotes replaces the stored sticky notes
func (s *TileService) SetNotes(ctx context.Context, notes json.RawMessage) error {
	return s.repo.Notes().Save(ctx, notes)
}

// save persists the current collection with retries. Callers hold mu, so
// saves are serialized and a later state is never overwritten by an earlier one.
func (s *TileService) save(ctx context.Context) error {
	snapshot := s.items.Clone()
	err := retry.Do(ctx, s.retry, func() error {
		return s.repo.Tiles().Save(ctx, snapshot)
	}, func(attempt int, err error) {
		s.logger.Warn("save failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
	})
	if err != nil {
		s.logger.Error("failed to save tiles", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

type event func(Listener)

func (s *TileService) dispatch(events []event) {
	if len(events) == 0 {
		return
	}
	s.listenersMu.RLock()
	listeners := append([]Listener(nil), s.listeners...)
	s.listenersMu.RUnlock()

	for _, ev := range events {
		for _, l := range listeners {
			ev(l)
		}
	}
}

// changed returns the events announcing the current collection and the
// state of the open folder. Callers hold mu.
func (s *TileService) changed() []event {
	snapshot := s.items.Clone()
	events := []event{func(l Listener) { l.CollectionChanged(snapshot) }}
	return append(events, s.folderEvents()...)
}

// folderEvents refreshes the open folder view, or closes it when the folder
// no longer exists. Callers hold mu.
func (s *TileService) folderEvents() []event {
	if s.openFolderID == "" {
		return nil
	}
	f, i, ok := s.activeFolder()
	if !ok {
		s.openFolderID = ""
		return []event{func(l Listener) { l.FolderClosed() }}
	}
	return []event{func(l Listener) { l.FolderOpened(f, i) }}
}
