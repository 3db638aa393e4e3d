package drag

import (
	"time"

	"github.com/dastanaron/homebase/internal/geometry"
	"github.com/dastanaron/homebase/internal/models"
)

// Context says where the dragged item came from.
type Context struct {
	InFolder    bool
	FolderIndex int // top-level index of the source folder when InFolder
}

// TopLevel is the context of an item dragged from the main grid.
func TopLevel() Context {
	return Context{}
}

// InsideFolder is the context of a link dragged out of an open folder.
func InsideFolder(folderIndex int) Context {
	return Context{InFolder: true, FolderIndex: folderIndex}
}

// Session is the state of the one active drag gesture.
type Session struct {
	SourceIndex    int
	Source         Context
	CurrentIndex   int
	SourceID       string
	SourceIsFolder bool

	// HoverStart is zero while no settle timer runs.
	HoverStart  time.Time
	HoverTarget int
	HoverZone   geometry.Zone

	// MergeCandidate is the tile highlighted as a drop-into target, or -1.
	MergeCandidate int

	ReorderOccurred bool
	FolderWasMoved  bool

	snapshot models.Collection
}

func (s *Session) resetHover() {
	s.HoverStart = time.Time{}
}

// Target is the tile under the pointer together with the geometry the
// renderer measured for it.
type Target struct {
	Index int
	// ID of the tile the renderer believes is at Index. Optional; when set,
	// a mismatch marks the event as stale.
	ID      string
	Pointer geometry.Point
	Rect    geometry.Rect
}

// Result tells the caller what a transition produced.
type Result struct {
	Collection models.Collection
	// Changed means Collection differs from the input and the grid must be rebuilt.
	Changed bool
	// Commit means Collection should be persisted.
	Commit bool
	// Ended means the session is over.
	Ended bool
	// MergeCandidate is the index to highlight as a drop-into target, or -1.
	MergeCandidate int

	// OpenFolder asks the UI to open the folder at FolderIndex.
	OpenFolder bool
	// FolderRefreshed asks the UI to redraw the open folder at FolderIndex.
	FolderRefreshed bool
	// FolderClosed means the open folder was removed and its view must close.
	FolderClosed bool
	FolderIndex  int
}

func unchanged(c models.Collection) Result {
	return Result{Collection: c, MergeCandidate: -1}
}
