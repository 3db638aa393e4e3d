package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dastanaron/homebase/internal/models"
)

var (
	// ErrNotFound is returned by KVStore.Get for a missing key.
	ErrNotFound = errors.New("key not found")
	// ErrCorrupt is returned when stored data cannot be decoded.
	ErrCorrupt = errors.New("stored data is corrupt")
)

// Storage keys
const (
	KeyTiles       = "tiles"
	KeyStickyNotes = "stickyNotes"
)

// KVStore is the key-value persistence gateway
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes the given keys. Missing keys are ignored.
	Remove(ctx context.Context, keys ...string) error
	Clear(ctx context.Context) error
	Close() error
}

// TileRepository defines operations for the tile collection
type TileRepository interface {
	// Load returns the stored collection, or an empty one if nothing is stored.
	Load(ctx context.Context) (models.Collection, error)
	Save(ctx context.Context, c models.Collection) error
}

// NoteRepository keeps sticky notes as opaque JSON
type NoteRepository interface {
	Load(ctx context.Context) (json.RawMessage, error)
	Save(ctx context.Context, notes json.RawMessage) error
}

// Repository combines all repositories
type Repository interface {
	Tiles() TileRepository
	Notes() NoteRepository
	Close() error
}
