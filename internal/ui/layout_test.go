package ui

import (
	"testing"

	"github.com/dastanaron/homebase/internal/geometry"
)

func TestLayoutColumns(t *testing.T) {
	tests := []struct {
		width, want int
	}{
		{10, 1},
		{18, 1},
		{37, 1},
		{38, 2},
		{80, 4},
	}
	for _, tt := range tests {
		if got := newLayout(0, 0, tt.width, 20, 0).cols; got != tt.want {
			t.Errorf("cols(width=%d) = %d, want %d", tt.width, got, tt.want)
		}
	}
}

func TestLayoutIndexAt(t *testing.T) {
	l := newLayout(1, 1, 80, 24, 0) // 4 columns
	tests := []struct {
		name string
		x, y int
		n    int
		want int
	}{
		{"first tile corner", 1, 1, 10, 0},
		{"first tile far corner", 18, 5, 10, 0},
		{"horizontal gap", 19, 2, 10, -1},
		{"second tile", 21, 3, 10, 1},
		{"vertical gap", 2, 6, 10, -1},
		{"second row", 2, 7, 10, 4},
		{"past the last tile", 41, 7, 5, -1},
		{"outside", 0, 0, 10, -1},
	}
	for _, tt := range tests {
		if got := l.indexAt(tt.x, tt.y, tt.n); got != tt.want {
			t.Errorf("%s: indexAt(%d, %d) = %d, want %d", tt.name, tt.x, tt.y, got, tt.want)
		}
	}
}

func TestLayoutRectRoundTrip(t *testing.T) {
	l := newLayout(3, 2, 80, 40, 0)
	for i := 0; i < 12; i++ {
		r := l.rect(i)
		x, y := int(r.Left), int(r.Top)
		if got := l.indexAt(x, y, 12); got != i {
			t.Errorf("indexAt(rect(%d)) = %d", i, got)
		}
		mid := pointer(x+tileWidth/2, y+tileHeight/2)
		if zone := geometry.Classify(mid, r, false); zone != geometry.Center {
			t.Errorf("tile %d middle classified %v, want center", i, zone)
		}
		if zone := geometry.Classify(pointer(x, y), r, false); zone != geometry.Edge {
			t.Errorf("tile %d corner classified %v, want edge", i, zone)
		}
	}
}

func TestLayoutScroll(t *testing.T) {
	l := newLayout(0, 0, 38, 11, 0) // 2 columns, 2 rows
	if got := l.scrollFor(3); got != 0 {
		t.Errorf("scrollFor(3) = %d, want 0", got)
	}
	if got := l.scrollFor(4); got != 1 {
		t.Errorf("scrollFor(4) = %d, want 1", got)
	}

	l = newLayout(0, 0, 38, 11, 2)
	if got := l.scrollFor(1); got != 0 {
		t.Errorf("scrollFor(1) = %d, want 0", got)
	}
	if !l.visible(4) || l.visible(1) {
		t.Error("visibility does not follow offset")
	}
	if got := l.indexAt(0, 0, 10); got != 4 {
		t.Errorf("indexAt with offset = %d, want 4", got)
	}
}
