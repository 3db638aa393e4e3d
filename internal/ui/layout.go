package ui

import "github.com/dastanaron/homebase/internal/geometry"

// Tile size in terminal cells
const (
	tileWidth  = 18
	tileHeight = 5
	gapX       = 2
	gapY       = 1
)

// layout places tiles row by row inside a rectangle, skipping offset rows.
type layout struct {
	x, y, width, height int
	cols                int
	offset              int
}

func newLayout(x, y, width, height, offset int) layout {
	cols := (width + gapX) / (tileWidth + gapX)
	if cols < 1 {
		cols = 1
	}
	if offset < 0 {
		offset = 0
	}
	return layout{x: x, y: y, width: width, height: height, cols: cols, offset: offset}
}

// rows returns the number of rows that fit on screen
func (l layout) rows() int {
	r := (l.height + gapY) / (tileHeight + gapY)
	if r < 1 {
		r = 1
	}
	return r
}

// cell returns the screen position of tile i
func (l layout) cell(i int) (x, y int) {
	row := i/l.cols - l.offset
	col := i % l.cols
	return l.x + col*(tileWidth+gapX), l.y + row*(tileHeight+gapY)
}

// visible reports whether tile i is fully on screen
func (l layout) visible(i int) bool {
	row := i/l.cols - l.offset
	return row >= 0 && row < l.rows()
}

// indexAt returns the tile under (px, py), or -1 for gaps and empty space
func (l layout) indexAt(px, py, n int) int {
	dx, dy := px-l.x, py-l.y
	if dx < 0 || dy < 0 || dx >= l.width || dy >= l.height {
		return -1
	}
	col, cx := dx/(tileWidth+gapX), dx%(tileWidth+gapX)
	row, cy := dy/(tileHeight+gapY), dy%(tileHeight+gapY)
	if cx >= tileWidth || cy >= tileHeight || col >= l.cols {
		return -1
	}
	i := (row+l.offset)*l.cols + col
	if i >= n {
		return -1
	}
	return i
}

// rect returns the bounds of tile i for the drop-zone classifier
func (l layout) rect(i int) geometry.Rect {
	x, y := l.cell(i)
	return geometry.Rect{Left: float64(x), Top: float64(y), Width: tileWidth, Height: tileHeight}
}

// pointer returns the center of a terminal cell
func pointer(px, py int) geometry.Point {
	return geometry.Point{X: float64(px) + 0.5, Y: float64(py) + 0.5}
}

// scrollFor returns the offset that keeps tile i on screen
func (l layout) scrollFor(i int) int {
	row := i / l.cols
	switch {
	case row < l.offset:
		return row
	case row >= l.offset+l.rows():
		return row - l.rows() + 1
	}
	return l.offset
}
