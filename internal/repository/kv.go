package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dastanaron/homebase/internal/collection"
	"github.com/dastanaron/homebase/internal/models"
)

// KVRepository implements Repository on top of a KVStore
type KVRepository struct {
	store KVStore
	tiles *tileRepo
	notes *noteRepo
}

// New creates a repository backed by store
func New(store KVStore) *KVRepository {
	return &KVRepository{
		store: store,
		tiles: &tileRepo{store: store},
		notes: &noteRepo{store: store},
	}
}

// NewSQLiteRepository opens the sqlite store at dbPath with an in-memory
// fallback that keeps writes the database refused.
func NewSQLiteRepository(dbPath string, logger *zap.Logger) (*KVRepository, error) {
	primary, err := NewSQLiteStore(dbPath)
	if err != nil {
		return nil, err
	}
	return New(NewFallbackStore(primary, NewMemoryStore(), logger)), nil
}

// Tiles returns the tile repository
func (r *KVRepository) Tiles() TileRepository {
	return r.tiles
}

// Notes returns the sticky note repository
func (r *KVRepository) Notes() NoteRepository {
	return r.notes
}

// Store returns the underlying key-value store
func (r *KVRepository) Store() KVStore {
	return r.store
}

// Degraded reports whether the store holds writes that did not reach disk
func (r *KVRepository) Degraded() bool {
	d, ok := r.store.(interface{ Degraded() bool })
	return ok && d.Degraded()
}

// Close closes the underlying store
func (r *KVRepository) Close() error {
	return r.store.Close()
}

// tileRepo implements TileRepository
type tileRepo struct {
	store KVStore
}

func (r *tileRepo) Load(ctx context.Context) (models.Collection, error) {
	data, err := r.store.Get(ctx, KeyTiles)
	if errors.Is(err, ErrNotFound) {
		return models.Collection{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading tiles: %w", err)
	}

	var c models.Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: decoding tiles: %v", ErrCorrupt, err)
	}
	if c == nil {
		c = models.Collection{}
	}
	return collection.PruneEmptyFolders(c), nil
}

func (r *tileRepo) Save(ctx context.Context, c models.Collection) error {
	data, err := json.Marshal(collection.PruneEmptyFolders(c))
	if err != nil {
		return fmt.Errorf("encoding tiles: %w", err)
	}
	if err := r.store.Set(ctx, KeyTiles, data); err != nil {
		return fmt.Errorf("saving tiles: %w", err)
	}
	return nil
}

// noteRepo implements NoteRepository
type noteRepo struct {
	store KVStore
}

func (r *noteRepo) Load(ctx context.Context) (json.RawMessage, error) {
	data, err := r.store.Get(ctx, KeyStickyNotes)
	if errors.Is(err, ErrNotFound) {
		return json.RawMessage("[]"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading notes: %w", err)
	}
	return json.RawMessage(data), nil
}

func (r *noteRepo) Save(ctx context.Context, notes json.RawMessage) error {
	if len(notes) == 0 {
		notes = json.RawMessage("[]")
	}
	if !json.Valid(notes) {
		return fmt.Errorf("saving notes: invalid JSON")
	}
	if err := r.store.Set(ctx, KeyStickyNotes, notes); err != nil {
		return fmt.Errorf("saving notes: %w", err)
	}
	return nil
}
