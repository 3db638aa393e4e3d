// Package drag implements the drag-and-drop state machine for the tile grid.
//
// The machine never touches the UI. Each call takes the current collection
// and returns a Result describing the new collection and what the renderer
// and the persistence layer should do. The settle delay is evaluated on every
// Hover call against an injected clock; nothing sleeps.
package drag

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dastanaron/homebase/internal/collection"
	"github.com/dastanaron/homebase/internal/geometry"
	"github.com/dastanaron/homebase/internal/models"
)

// ErrSessionActive is returned by StartDrag while another drag is running.
var ErrSessionActive = errors.New("drag session already active")

// Delays are the settle delays before a hovered reorder is applied.
type Delays struct {
	Link   time.Duration
	Folder time.Duration
}

// DefaultDelays returns the stock settle delays.
func DefaultDelays() Delays {
	return Delays{Link: 200 * time.Millisecond, Folder: 300 * time.Millisecond}
}

// Options configures a Machine.
type Options struct {
	Delays Delays
	// RevertOnCancel restores the pre-drag arrangement on Cancel. When false,
	// Cancel finalizes the live state like DragEnd.
	RevertOnCancel bool
	Clock          func() time.Time
	Logger         *zap.Logger
}

// Machine owns at most one drag Session.
type Machine struct {
	session        *Session
	delays         Delays
	revertOnCancel bool
	clock          func() time.Time
	logger         *zap.Logger
}

// NewMachine creates an idle machine.
func NewMachine(opts Options) *Machine {
	m := &Machine{
		delays:         opts.Delays,
		revertOnCancel: opts.RevertOnCancel,
		clock:          opts.Clock,
		logger:         opts.Logger,
	}
	if m.clock == nil {
		m.clock = time.Now
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if m.delays.Link <= 0 && m.delays.Folder <= 0 {
		m.delays = DefaultDelays()
	}
	// Folder targets never settle faster than plain tiles.
	if m.delays.Folder < m.delays.Link {
		m.logger.Warn("folder settle delay shorter than link delay, raising it",
			zap.Duration("link", m.delays.Link), zap.Duration("folder", m.delays.Folder))
		m.delays.Folder = m.delays.Link
	}
	return m
}

// Active reports whether a drag is in progress.
func (m *Machine) Active() bool {
	return m.session != nil
}

// Session returns a copy of the active session.
func (m *Machine) Session() (Session, bool) {
	if m.session == nil {
		return Session{}, false
	}
	return *m.session, true
}

// StartDrag opens a session for the item at index in ctx.
func (m *Machine) StartDrag(c models.Collection, index int, ctx Context) error {
	if m.session != nil {
		return ErrSessionActive
	}

	s := &Session{
		SourceIndex:    index,
		Source:         ctx,
		CurrentIndex:   index,
		HoverTarget:    -1,
		MergeCandidate: -1,
		snapshot:       c.Clone(),
	}

	if ctx.InFolder {
		f, err := folderAt(c, ctx.FolderIndex)
		if err != nil {
			return err
		}
		if index < 0 || index >= len(f.Links) {
			return fmt.Errorf("%w: child %d (len %d)", collection.ErrInvalidIndex, index, len(f.Links))
		}
		s.SourceID = f.Links[index].ID
	} else {
		if index < 0 || index >= len(c) {
			return fmt.Errorf("%w: %d (len %d)", collection.ErrInvalidIndex, index, len(c))
		}
		s.SourceID = c[index].ItemID()
		s.SourceIsFolder = models.IsFolder(c[index])
	}

	m.session = s
	m.logger.Debug("drag started",
		zap.Int("index", index),
		zap.Bool("in_folder", ctx.InFolder),
		zap.Bool("folder", s.SourceIsFolder))
	return nil
}

// canMerge reports whether dropping on targetIndex may create or fill a folder.
func (m *Machine) canMerge(targetIndex int) bool {
	s := m.session
	return !s.SourceIsFolder && !s.Source.InFolder && targetIndex != s.CurrentIndex
}

// lookup returns the item at t.Index, or false when t is out of range or stale.
func (m *Machine) lookup(c models.Collection, t Target) (models.Item, bool) {
	if t.Index < 0 || t.Index >= len(c) {
		m.logger.Warn("drag target out of range", zap.Int("index", t.Index), zap.Int("len", len(c)))
		return nil, false
	}
	item := c[t.Index]
	if t.ID != "" && item.ItemID() != t.ID {
		m.logger.Warn("stale drag target", zap.Int("index", t.Index), zap.String("id", t.ID))
		return nil, false
	}
	return item, true
}

// Hover processes the pointer moving over a top-level tile.
func (m *Machine) Hover(c models.Collection, t Target) Result {
	res := unchanged(c)
	s := m.session
	if s == nil || s.Source.InFolder {
		return res
	}

	item, ok := m.lookup(c, t)
	if !ok {
		return res
	}
	if t.Index == s.CurrentIndex {
		s.resetHover()
		s.HoverTarget = t.Index
		s.MergeCandidate = -1
		return res
	}

	targetIsFolder := models.IsFolder(item)
	zone := geometry.Classify(t.Pointer, t.Rect, targetIsFolder)
	if t.Index != s.HoverTarget || zone != s.HoverZone {
		s.resetHover()
		s.HoverTarget = t.Index
		s.HoverZone = zone
	}

	if zone == geometry.Center && m.canMerge(t.Index) {
		s.MergeCandidate = t.Index
		s.resetHover()
		res.MergeCandidate = t.Index
		return res
	}
	s.MergeCandidate = -1

	// Only folders reorder across folders; a link over a folder either merges
	// or does nothing.
	if targetIsFolder && !s.SourceIsFolder {
		s.resetHover()
		return res
	}

	now := m.clock()
	if s.HoverStart.IsZero() {
		s.HoverStart = now
		return res
	}
	delay := m.delays.Link
	if targetIsFolder {
		delay = m.delays.Folder
	}
	if now.Sub(s.HoverStart) <= delay {
		return res
	}

	moved, err := collection.Move(c, s.CurrentIndex, t.Index)
	if err != nil {
		m.logger.Warn("live reorder failed", zap.Error(err))
		return res
	}
	s.CurrentIndex = t.Index
	s.ReorderOccurred = true
	if s.SourceIsFolder {
		s.FolderWasMoved = true
	}
	s.resetHover()

	res.Collection = moved
	res.Changed = true
	return res
}

// Drop finishes the gesture on a top-level tile.
func (m *Machine) Drop(c models.Collection, t Target) Result {
	s := m.session
	if s == nil {
		return unchanged(c)
	}
	if s.Source.InFolder {
		return m.extract(c)
	}
	defer m.end()

	res := unchanged(c)
	res.Commit = true
	res.Ended = true

	item, ok := m.lookup(c, t)
	if !ok {
		return res
	}
	targetIsFolder := models.IsFolder(item)
	zone := geometry.Classify(t.Pointer, t.Rect, targetIsFolder)
	if zone != geometry.Center || !m.canMerge(t.Index) || s.ReorderOccurred {
		return res
	}

	var merged models.Collection
	var err error
	if targetIsFolder {
		merged, err = collection.InsertIntoFolder(c, t.Index, s.CurrentIndex)
	} else {
		merged, err = collection.WrapIntoFolder(c, t.Index, s.CurrentIndex)
	}
	if err != nil {
		m.logger.Warn("merge failed", zap.Error(err))
		return res
	}

	m.logger.Debug("merged tiles",
		zap.Int("source", s.CurrentIndex),
		zap.Int("target", t.Index),
		zap.Bool("into_existing", targetIsFolder))
	res.Collection = merged
	res.Changed = true
	return res
}

// DragEnd finishes a gesture released away from any tile. Live reorders are
// kept. A folder that was pressed and released without moving opens instead.
func (m *Machine) DragEnd(c models.Collection) Result {
	s := m.session
	if s == nil {
		return unchanged(c)
	}
	defer m.end()

	res := unchanged(c)
	res.Ended = true

	if s.Source.InFolder {
		res.Commit = s.ReorderOccurred
		res.FolderRefreshed = true
		res.FolderIndex = s.Source.FolderIndex
		return res
	}
	if s.SourceIsFolder && !s.FolderWasMoved && !s.ReorderOccurred {
		res.OpenFolder = true
		res.FolderIndex = s.CurrentIndex
		return res
	}
	res.Commit = true
	return res
}

// Cancel aborts the gesture. With RevertOnCancel the pre-drag arrangement
// comes back; otherwise it behaves like DragEnd.
func (m *Machine) Cancel(c models.Collection) Result {
	s := m.session
	if s == nil {
		return unchanged(c)
	}
	if !m.revertOnCancel {
		return m.DragEnd(c)
	}
	defer m.end()

	// Live moves are never persisted mid-drag, so storage already holds
	// the snapshot.
	res := unchanged(s.snapshot)
	res.Changed = s.ReorderOccurred
	res.Ended = true
	if s.Source.InFolder {
		res.FolderRefreshed = true
		res.FolderIndex = s.Source.FolderIndex
	}
	return res
}

// HoverInFolder reorders a folder child as soon as it passes over a sibling.
func (m *Machine) HoverInFolder(c models.Collection, childIndex int) Result {
	res := unchanged(c)
	s := m.session
	if s == nil || !s.Source.InFolder || childIndex == s.CurrentIndex {
		return res
	}

	moved, err := collection.MoveWithinFolder(c, s.Source.FolderIndex, s.CurrentIndex, childIndex)
	if err != nil {
		m.logger.Warn("folder reorder failed", zap.Error(err))
		return res
	}
	s.CurrentIndex = childIndex
	s.ReorderOccurred = true

	res.Collection = moved
	res.Changed = true
	res.FolderRefreshed = true
	res.FolderIndex = s.Source.FolderIndex
	return res
}

// DropInFolder finishes an in-folder gesture on the folder view.
func (m *Machine) DropInFolder(c models.Collection) Result {
	s := m.session
	if s == nil {
		return unchanged(c)
	}
	if !s.Source.InFolder {
		return m.DragEnd(c)
	}
	defer m.end()

	res := unchanged(c)
	res.Ended = true
	res.Commit = s.ReorderOccurred
	res.FolderRefreshed = true
	res.FolderIndex = s.Source.FolderIndex
	return res
}

// DropOutside finishes the gesture on the main grid background. A folder
// child is moved to the end of the top level; anything else ends as DragEnd.
func (m *Machine) DropOutside(c models.Collection) Result {
	s := m.session
	if s == nil {
		return unchanged(c)
	}
	if !s.Source.InFolder {
		return m.DragEnd(c)
	}
	return m.extract(c)
}

func (m *Machine) extract(c models.Collection) Result {
	s := m.session
	defer m.end()

	res := unchanged(c)
	res.Ended = true
	res.FolderIndex = s.Source.FolderIndex

	out, pruned, err := collection.ExtractFromFolder(c, s.Source.FolderIndex, s.CurrentIndex)
	if err != nil {
		m.logger.Warn("extract from folder failed", zap.Error(err))
		res.Commit = s.ReorderOccurred
		res.FolderRefreshed = true
		return res
	}

	res.Collection = out
	res.Changed = true
	res.Commit = true
	if pruned {
		res.FolderClosed = true
	} else {
		res.FolderRefreshed = true
	}
	return res
}

func (m *Machine) end() {
	m.session = nil
}

func folderAt(c models.Collection, i int) (models.Folder, error) {
	if i < 0 || i >= len(c) {
		return models.Folder{}, fmt.Errorf("%w: folder %d (len %d)", collection.ErrInvalidIndex, i, len(c))
	}
	f, ok := c[i].(models.Folder)
	if !ok {
		return models.Folder{}, fmt.Errorf("%w: item %d is not a folder", collection.ErrIllegalMerge, i)
	}
	return f, nil
}
