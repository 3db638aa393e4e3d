package ui

import (
	"fmt"
	"net/url"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/dastanaron/homebase/internal/geometry"
	"github.com/dastanaron/homebase/internal/models"
)

var (
	tileColor      = tcell.ColorDarkSlateGray
	folderColor    = tcell.ColorSteelBlue
	candidateColor = tcell.ColorDarkGreen
	textColor      = tcell.ColorWhite
	dimTextColor   = tcell.ColorSilver
)

// tileGrid draws items as a grid of tiles and turns mouse gestures into
// press, hover and release callbacks.
type tileGrid struct {
	*tview.Box

	items     []models.Item
	selected  int
	candidate int
	offset    int
	last      layout
	empty     string

	// gesture state
	press          int
	pressX, pressY int
	moved          bool

	onPress    func(index int)
	onHover    func(index int, p geometry.Point, r geometry.Rect)
	onRelease  func(index int, p geometry.Point, moved, inside bool)
	onActivate func(index int)
}

func newTileGrid(empty string) *tileGrid {
	return &tileGrid{
		Box:       tview.NewBox(),
		candidate: -1,
		press:     -1,
		empty:     empty,
	}
}

// SetItems replaces the tiles, keeping the selection in range
func (g *tileGrid) SetItems(items []models.Item) {
	g.items = items
	if g.selected >= len(items) {
		g.selected = len(items) - 1
	}
	if g.selected < 0 {
		g.selected = 0
	}
}

// Selected returns the selected index, or -1 when the grid is empty
func (g *tileGrid) Selected() int {
	if len(g.items) == 0 {
		return -1
	}
	return g.selected
}

// Dragging reports whether a mouse button is held on a tile
func (g *tileGrid) Dragging() bool {
	return g.press >= 0
}

// Draw draws the grid
func (g *tileGrid) Draw(screen tcell.Screen) {
	g.Box.DrawForSubclass(screen, g)
	x, y, width, height := g.GetInnerRect()
	g.last = newLayout(x, y, width, height, g.offset)

	if len(g.items) == 0 {
		tview.Print(screen, g.empty, x, y+height/2, width, tview.AlignCenter, dimTextColor)
		return
	}
	for i, item := range g.items {
		if !g.last.visible(i) {
			continue
		}
		g.drawTile(screen, i, item)
	}
}

func (g *tileGrid) drawTile(screen tcell.Screen, i int, item models.Item) {
	x, y := g.last.cell(i)
	bg := tileColor
	var title, detail string

	switch v := item.(type) {
	case models.Link:
		title = v.Name
		detail = hostOf(v.URL)
	case models.Folder:
		bg = folderColor
		if v.ColorHex != nil {
			bg = tcell.GetColor(*v.ColorHex)
		}
		title = "▸ " + v.Name
		detail = fmt.Sprintf("%d links", len(v.Links))
	}
	if i == g.candidate {
		bg = candidateColor
	}

	style := tcell.StyleDefault.Background(bg).Foreground(textColor)
	if g.press == i && g.moved {
		style = style.Dim(true)
	}
	border := style
	if i == g.selected && g.HasFocus() {
		border = border.Foreground(tcell.ColorYellow).Bold(true)
	}

	for row := 0; row < tileHeight; row++ {
		for col := 0; col < tileWidth; col++ {
			r := ' '
			s := style
			switch {
			case row == 0 && col == 0:
				r, s = tview.Borders.TopLeft, border
			case row == 0 && col == tileWidth-1:
				r, s = tview.Borders.TopRight, border
			case row == tileHeight-1 && col == 0:
				r, s = tview.Borders.BottomLeft, border
			case row == tileHeight-1 && col == tileWidth-1:
				r, s = tview.Borders.BottomRight, border
			case row == 0 || row == tileHeight-1:
				r, s = tview.Borders.Horizontal, border
			case col == 0 || col == tileWidth-1:
				r, s = tview.Borders.Vertical, border
			}
			screen.SetContent(x+col, y+row, r, nil, s)
		}
	}

	fg, _, _ := style.Decompose()
	tview.Print(screen, tview.Escape(title), x+1, y+1, tileWidth-2, tview.AlignCenter, fg)
	tview.Print(screen, tview.Escape(detail), x+1, y+3, tileWidth-2, tview.AlignCenter, dimTextColor)
}

// InputHandler moves the selection with the arrow keys
func (g *tileGrid) InputHandler() func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
	return g.WrapInputHandler(func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
		n := len(g.items)
		if n == 0 {
			return
		}
		cols := g.last.cols
		if cols < 1 {
			cols = 1
		}

		switch event.Key() {
		case tcell.KeyLeft:
			g.selected--
		case tcell.KeyRight:
			g.selected++
		case tcell.KeyUp:
			g.selected -= cols
		case tcell.KeyDown:
			g.selected += cols
		case tcell.KeyHome:
			g.selected = 0
		case tcell.KeyEnd:
			g.selected = n - 1
		case tcell.KeyEnter:
			if g.onActivate != nil {
				g.onActivate(g.selected)
			}
			return
		}

		if g.selected < 0 {
			g.selected = 0
		}
		if g.selected >= n {
			g.selected = n - 1
		}
		g.offset = g.last.scrollFor(g.selected)
	})
}

// MouseHandler turns button presses, motion and releases into callbacks.
// While a button is held the grid captures the mouse, so releases outside
// it are reported too.
func (g *tileGrid) MouseHandler() func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
	return g.WrapMouseHandler(func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
		x, y := event.Position()
		inside := g.InRect(x, y)
		if !inside && g.press < 0 {
			return false, nil
		}
		index := -1
		if inside {
			index = g.last.indexAt(x, y, len(g.items))
		}

		switch action {
		case tview.MouseLeftDown:
			setFocus(g)
			if index < 0 {
				return true, nil
			}
			g.selected = index
			g.press, g.pressX, g.pressY, g.moved = index, x, y, false
			if g.onPress != nil {
				g.onPress(index)
			}
			return true, g
		case tview.MouseMove:
			if g.press < 0 {
				return false, nil
			}
			if x != g.pressX || y != g.pressY {
				g.moved = true
			}
			if g.moved && index >= 0 && g.onHover != nil {
				g.onHover(index, pointer(x, y), g.last.rect(index))
			}
			return true, g
		case tview.MouseLeftUp:
			if g.press < 0 {
				return false, nil
			}
			moved := g.moved
			g.press, g.moved = -1, false
			if g.onRelease != nil {
				g.onRelease(index, pointer(x, y), moved, inside)
			}
			return true, nil
		case tview.MouseScrollUp:
			if g.offset > 0 {
				g.offset--
			}
			return true, nil
		case tview.MouseScrollDown:
			if (g.offset+g.last.rows())*g.last.cols < len(g.items) {
				g.offset++
			}
			return true, nil
		}
		return inside, nil
	})
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}
