// Package geometry classifies a pointer position over a tile into the
// zone that decides between merging and reordering.
package geometry

// Zone is the part of a tile the pointer is over.
type Zone int

const (
	// Edge is the reorder band around a tile.
	Edge Zone = iota
	// Center is the drop-into / merge area of a tile.
	Center
)

// Edge thresholds as a fraction of the tile size. Folders get the wider
// center so dropping into them is easy; plain tiles keep a small center so
// accidental folder creation stays rare.
const (
	FolderThreshold = 0.1
	LinkThreshold   = 0.25
)

func (z Zone) String() string {
	if z == Center {
		return "center"
	}
	return "edge"
}

// Point is a pointer position in screen coordinates.
type Point struct {
	X, Y float64
}

// Rect is a tile's bounding box as reported by the renderer.
type Rect struct {
	Left, Top, Width, Height float64
}

// Contains reports whether p lies inside r (left/top inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X < r.Left+r.Width &&
		p.Y >= r.Top && p.Y < r.Top+r.Height
}

// Threshold returns the edge threshold for a target tile.
func Threshold(targetIsFolder bool) float64 {
	if targetIsFolder {
		return FolderThreshold
	}
	return LinkThreshold
}

// Classify returns Center when p falls strictly inside the inner box of r
// and Edge otherwise. A degenerate rectangle is always Edge.
func Classify(p Point, r Rect, targetIsFolder bool) Zone {
	if r.Width <= 0 || r.Height <= 0 {
		return Edge
	}
	nx := (p.X - r.Left) / r.Width
	ny := (p.Y - r.Top) / r.Height
	t := Threshold(targetIsFolder)

	if t < nx && nx < 1-t && t < ny && ny < 1-t {
		return Center
	}
	return Edge
}
