package commands

import (
	"encoding/json"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/dastanaron/homebase/internal/models"
)

// Backup types
const (
	BackupLinks    = "links"
	BackupFull     = "full"
	BackupSettings = "settings"

	backupVersion = 2
)

// ErrUnsupportedBackup is returned for backups this tool cannot restore.
var ErrUnsupportedBackup = errors.New("unsupported backup")

// Backup is the JSON backup file. Links backups keep tiles under "data",
// full backups under "tiles".
type Backup struct {
	Version     int             `json:"version"`
	Type        string          `json:"type"`
	Data        json.RawMessage `json:"data,omitempty"`
	Tiles       json.RawMessage `json:"tiles,omitempty"`
	StickyNotes json.RawMessage `json:"stickyNotes,omitempty"`
	Settings    json.RawMessage `json:"settings,omitempty"`
}

// Validate checks the backup header
func (b Backup) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Type, validation.Required, validation.In(BackupLinks, BackupFull, BackupSettings)),
	)
}

// NewLinksBackup builds a links-and-notes backup
func NewLinksBackup(c models.Collection, notes json.RawMessage) (*Backup, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return &Backup{Version: backupVersion, Type: BackupLinks, Data: data, StickyNotes: notes}, nil
}

// Collection returns the tiles held by the backup, or false when it holds none.
func (b Backup) Collection() (models.Collection, bool, error) {
	var raw json.RawMessage
	switch b.Type {
	case BackupLinks:
		raw = b.Data
	case BackupFull:
		raw = b.Tiles
	case BackupSettings:
		return nil, false, fmt.Errorf("%w: settings backups carry no tiles", ErrUnsupportedBackup)
	default:
		return nil, false, fmt.Errorf("%w: type %q", ErrUnsupportedBackup, b.Type)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, false, nil
	}

	var c models.Collection
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, false, fmt.Errorf("decoding tiles: %w", err)
	}
	return c, true, nil
}

// decodeBackup reads a backup file. A bare JSON array is taken as a tiles
// list without notes.
func decodeBackup(data []byte) (*Backup, error) {
	var shape any
	if err := json.Unmarshal(data, &shape); err != nil {
		return nil, err
	}
	if _, ok := shape.([]any); ok {
		return &Backup{Version: backupVersion, Type: BackupLinks, Data: data}, nil
	}

	var b Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedBackup, err)
	}
	return &b, nil
}
