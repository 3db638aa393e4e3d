package ui

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"github.com/dastanaron/homebase/internal/drag"
	"github.com/dastanaron/homebase/internal/geometry"
	"github.com/dastanaron/homebase/internal/models"
	"github.com/dastanaron/homebase/internal/repository"
	"github.com/dastanaron/homebase/internal/service"
)

const (
	ModeNormal = iota + 1
	ModeForm
	ModeModal
)

// hoverInterval is how often a resting pointer re-sends its last hover, so
// the settle delay can elapse without motion events.
const hoverInterval = 50 * time.Millisecond

// App represents the TUI application
type App struct {
	app         *tview.Application
	pages       *tview.Pages
	grid        *tileGrid
	folderGrid  *tileGrid
	folderFrame *tview.Flex
	status      *tview.TextView
	form        *tview.Form
	modal       *tview.Modal
	mode        uint8

	svc    *service.TileService
	logger *zap.Logger

	items       models.Collection
	folderIndex int // index of the open folder, -1 when closed
	lastHover   *drag.Target
	stopTicker  context.CancelFunc
}

// NewApp creates a new application instance
func NewApp(svc *service.TileService, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{
		app:         tview.NewApplication(),
		pages:       tview.NewPages(),
		grid:        newTileGrid("No tiles yet. Press a to add a link."),
		folderGrid:  newTileGrid("Empty folder"),
		status:      tview.NewTextView().SetDynamicColors(true),
		mode:        ModeNormal,
		svc:         svc,
		logger:      logger,
		folderIndex: -1,
	}

	a.grid.onPress = a.onPress
	a.grid.onHover = a.onHover
	a.grid.onRelease = a.onRelease
	a.grid.onActivate = a.activate

	a.folderGrid.onPress = a.onFolderPress
	a.folderGrid.onHover = a.onFolderHover
	a.folderGrid.onRelease = a.onFolderRelease
	a.folderGrid.onActivate = a.activateInFolder

	svc.Subscribe(a)
	return a
}

// Run starts the application
func (a *App) Run(ctx context.Context) error {
	a.grid.SetBorder(true).SetTitle("Home")
	a.folderGrid.SetBorder(true)

	main := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.grid, 0, 1, true).
		AddItem(a.status, 1, 0, false)

	a.folderFrame = centered(a.folderGrid, 4*(tileWidth+gapX)+2, 3*(tileHeight+gapY)+2)
	a.pages.AddPage("main", main, true, true)

	loadErr := a.svc.Load(ctx)

	a.app.SetRoot(a.pages, true)
	a.app.EnableMouse(true)
	a.app.SetInputCapture(a.globalInput)
	a.app.SetMouseCapture(a.mouseCapture)
	a.app.SetFocus(a.grid)
	a.updateStatus()
	if loadErr != nil {
		a.logger.Error("starting with empty tiles", zap.Error(loadErr))
		a.setStatus("[red]Could not load tiles; changes may not be saved")
	}

	ctx, a.stopTicker = context.WithCancel(ctx)
	defer a.stopTicker()
	go a.hoverTicker(ctx)

	return a.app.Run()
}

// quit stops the hover ticker before the event loop, so nothing is queued
// on a loop that no longer drains.
func (a *App) quit() {
	if a.stopTicker != nil {
		a.stopTicker()
	}
	a.app.Stop()
}

// hoverTicker re-sends the last hover while a drag rests on a tile.
func (a *App) hoverTicker(ctx context.Context) {
	ticker := time.NewTicker(hoverInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			a.app.QueueUpdateDraw(func() {
				if a.lastHover != nil && a.svc.Dragging() {
					a.hover(*a.lastHover)
				}
			})
		}
	}
}

// CollectionChanged implements service.Listener
func (a *App) CollectionChanged(c models.Collection) {
	a.items = c
	a.grid.SetItems(c)
	a.updateStatus()
}

// FolderOpened implements service.Listener
func (a *App) FolderOpened(f models.Folder, index int) {
	a.folderIndex = index
	items := make([]models.Item, len(f.Links))
	for i, l := range f.Links {
		items[i] = l
	}
	a.folderGrid.SetItems(items)
	a.folderGrid.SetTitle(" " + tview.Escape(f.Name) + " ")
	if !a.pages.HasPage("folder") {
		a.pages.AddPage("folder", a.folderFrame, true, true)
	}
	if a.mode == ModeNormal {
		a.app.SetFocus(a.folderGrid)
	}
	a.updateStatus()
}

// FolderClosed implements service.Listener
func (a *App) FolderClosed() {
	a.folderIndex = -1
	a.pages.RemovePage("folder")
	if a.mode == ModeNormal {
		a.app.SetFocus(a.grid)
	}
	a.updateStatus()
}

// MergeCandidate implements service.Listener
func (a *App) MergeCandidate(index int) {
	a.grid.candidate = index
}

func (a *App) onPress(index int) {
	if err := a.svc.StartDrag(index, drag.TopLevel()); err != nil {
		a.logger.Warn("cannot start drag", zap.Error(err))
	}
}

func (a *App) onHover(index int, p geometry.Point, r geometry.Rect) {
	if index >= len(a.items) {
		return
	}
	a.hover(drag.Target{Index: index, ID: a.items[index].ItemID(), Pointer: p, Rect: r})
}

func (a *App) hover(t drag.Target) {
	a.svc.Hover(t)
	// A live move puts the dragged tile under the pointer; re-sends must
	// name what is there now.
	if t.Index < len(a.items) {
		t.ID = a.items[t.Index].ItemID()
	}
	a.lastHover = &t
}

func (a *App) onRelease(index int, p geometry.Point, moved, inside bool) {
	a.lastHover = nil
	if !a.svc.Dragging() {
		return
	}
	ctx := context.Background()

	var err error
	switch {
	case !moved:
		var link *models.Link
		if index >= 0 && index < len(a.items) {
			if l, ok := a.items[index].(models.Link); ok {
				link = &l
			}
		}
		err = a.svc.DragEnd(ctx)
		if link != nil {
			openURL(link.URL)
		}
	case index >= 0:
		err = a.svc.Drop(ctx, drag.Target{
			Index:   index,
			ID:      a.items[index].ItemID(),
			Pointer: p,
			Rect:    a.grid.last.rect(index),
		})
	default:
		err = a.svc.DropOutside(ctx)
	}
	a.reportSaveError(err)
}

func (a *App) onFolderPress(index int) {
	if a.folderIndex < 0 {
		return
	}
	if err := a.svc.StartDrag(index, drag.InsideFolder(a.folderIndex)); err != nil {
		a.logger.Warn("cannot start drag", zap.Error(err))
	}
}

func (a *App) onFolderHover(index int, _ geometry.Point, _ geometry.Rect) {
	a.svc.HoverInFolder(index)
}

func (a *App) onFolderRelease(index int, _ geometry.Point, moved, inside bool) {
	if !a.svc.Dragging() {
		return
	}
	ctx := context.Background()

	var err error
	switch {
	case !moved:
		link, ok := a.folderLink(index)
		err = a.svc.DropInFolder(ctx)
		if ok {
			openURL(link.URL)
		}
	case inside:
		err = a.svc.DropInFolder(ctx)
	default:
		err = a.svc.DropOutside(ctx)
	}
	a.reportSaveError(err)
}

func (a *App) folderLink(index int) (models.Link, bool) {
	if index < 0 || index >= len(a.folderGrid.items) {
		return models.Link{}, false
	}
	l, ok := a.folderGrid.items[index].(models.Link)
	return l, ok
}

// activate opens the selected tile: a link in the browser, a folder in place
func (a *App) activate(index int) {
	if index < 0 || index >= len(a.items) {
		return
	}
	switch v := a.items[index].(type) {
	case models.Link:
		openURL(v.URL)
	case models.Folder:
		if err := a.svc.OpenFolder(index); err != nil {
			a.showError(fmt.Sprintf("Error opening folder: %v", err))
		}
	}
}

func (a *App) activateInFolder(index int) {
	if l, ok := a.folderLink(index); ok {
		openURL(l.URL)
	}
}

// mouseCapture keeps the mouse inside an open dialog and closes the open
// folder on a click outside it.
func (a *App) mouseCapture(event *tcell.EventMouse, action tview.MouseAction) (*tcell.EventMouse, tview.MouseAction) {
	x, y := event.Position()
	if a.modal != nil {
		if !a.modal.InRect(x, y) {
			return nil, action
		}
		return event, action
	}
	if a.form != nil {
		if !a.form.InRect(x, y) {
			return nil, action
		}
		return event, action
	}

	if a.folderIndex < 0 || action != tview.MouseLeftDown {
		return event, action
	}
	if a.folderGrid.Dragging() || a.svc.Dragging() {
		return event, action
	}
	if !a.folderGrid.InRect(x, y) {
		a.svc.CloseFolder()
		return nil, action
	}
	return event, action
}

func (a *App) reportSaveError(err error) {
	if err == nil {
		return
	}
	a.logger.Error("drag result not saved", zap.Error(err))
	msg := "[red]Changes could not be saved: " + tview.Escape(err.Error())
	if errors.Is(err, repository.ErrDegraded) {
		msg = "[yellow]Database unavailable, changes kept in memory only"
	}
	a.setStatus(msg)
}

func (a *App) setStatus(text string) {
	a.status.SetText(text)
}

func (a *App) updateStatus() {
	links := len(a.items.Links())
	folders := a.items.Folders()
	countText := fmt.Sprintf(" [::b]%d[::r] links, [::b]%d[::r] folders", links, folders)

	statusText := "[::b]drag[::r] move/group  [::b]Enter[::r] open  [::b]a[::r] add  [::b]e[::r] edit  [::b]d[::r] del  [::b]q[::r] quit" + countText
	if a.folderIndex >= 0 {
		statusText = "[::b]drag out[::r] remove from folder  [::b]Enter[::r] open  [::b]a[::r] add  [::b]e[::r] edit  [::b]d[::r] del  [::b]Esc[::r] close" + countText
	}
	if a.svc.Degraded() {
		statusText += "  [yellow]database unavailable, changes kept in memory only"
	}
	a.status.SetText(statusText)
}

func (a *App) globalInput(event *tcell.EventKey) *tcell.EventKey {
	// Modals handle their own keys
	if a.modal != nil {
		return event
	}

	switch a.mode {
	case ModeNormal:
		switch event.Key() {
		case tcell.KeyEscape:
			if a.svc.Dragging() {
				a.lastHover = nil
				a.reportSaveError(a.svc.Cancel(context.Background()))
				return nil
			}
			if a.folderIndex >= 0 {
				a.svc.CloseFolder()
				return nil
			}
		case tcell.KeyRune:
			switch event.Rune() {
			case 'q':
				a.quit()
				return nil
			case 'a':
				a.addLink()
				return nil
			case 'e':
				a.editSelected()
				return nil
			case 'd':
				a.deleteSelected()
				return nil
			}
		}
	case ModeForm:
		if event.Key() == tcell.KeyEscape {
			a.closeForm()
			return nil
		}
	}
	return event
}

func (a *App) addLink() {
	if a.svc.Dragging() {
		return
	}
	ctx := context.Background()
	if fi := a.folderIndex; fi >= 0 {
		a.showLinkForm("New Link in Folder", models.Link{}, func(name, url, icon string) error {
			_, err := a.svc.AddLinkToFolder(ctx, fi, name, url, icon)
			return err
		})
		return
	}
	a.showLinkForm("New Link", models.Link{}, func(name, url, icon string) error {
		_, err := a.svc.AddLink(ctx, name, url, icon)
		return err
	})
}

func (a *App) editSelected() {
	if a.svc.Dragging() {
		return
	}
	ctx := context.Background()

	if fi := a.folderIndex; fi >= 0 {
		ci := a.folderGrid.Selected()
		l, ok := a.folderLink(ci)
		if !ok {
			return
		}
		a.showLinkForm("Edit Link", l, func(name, url, icon string) error {
			return a.svc.UpdateFolderLink(ctx, fi, ci, name, url, icon)
		})
		return
	}

	i := a.grid.Selected()
	if i < 0 || i >= len(a.items) {
		return
	}
	switch v := a.items[i].(type) {
	case models.Link:
		a.showLinkForm("Edit Link", v, func(name, url, icon string) error {
			return a.svc.UpdateLink(ctx, i, name, url, icon)
		})
	case models.Folder:
		a.showFolderForm(v, i)
	}
}

func (a *App) deleteSelected() {
	if a.svc.Dragging() {
		return
	}
	ctx := context.Background()

	if fi := a.folderIndex; fi >= 0 {
		ci := a.folderGrid.Selected()
		l, ok := a.folderLink(ci)
		if !ok {
			return
		}
		a.showConfirm(fmt.Sprintf("Delete '%s' from this folder?", l.Name), func() {
			if err := a.svc.DeleteFolderLink(ctx, fi, ci); err != nil {
				a.showError(fmt.Sprintf("Error deleting link: %v", err))
			}
		})
		return
	}

	i := a.grid.Selected()
	if i < 0 || i >= len(a.items) {
		return
	}
	message := fmt.Sprintf("Are you sure you want to delete '%s'?", a.items[i].ItemName())
	if f, ok := a.items[i].(models.Folder); ok {
		message = fmt.Sprintf("Delete folder '%s' and its %d links?", f.Name, len(f.Links))
	}
	a.showConfirm(message, func() {
		if err := a.svc.Delete(ctx, i); err != nil {
			a.showError(fmt.Sprintf("Error deleting: %v", err))
		}
	})
}

func (a *App) showLinkForm(title string, l models.Link, save func(name, url, icon string) error) {
	name, url, icon := l.Name, l.URL, l.IconOrEmpty()

	form := tview.NewForm()
	form.AddInputField("Name", name, 60, nil, func(t string) { name = t })
	form.AddInputField("URL", url, 60, nil, func(t string) { url = t })
	form.AddInputField("Icon", icon, 60, nil, func(t string) { icon = t })

	form.AddButton("Save", func() {
		if err := save(name, url, icon); err != nil {
			a.showError(fmt.Sprintf("Error saving link: %v", err))
			return
		}
		a.closeForm()
	})
	form.AddButton("Cancel", a.closeForm)

	form.SetBorder(true).SetTitle(title)
	a.showForm(form)
}

func (a *App) showFolderForm(f models.Folder, index int) {
	name := f.Name
	color := ""
	if f.ColorHex != nil {
		color = *f.ColorHex
	}

	form := tview.NewForm()
	form.AddInputField("Name", name, 60, nil, func(t string) { name = t })
	form.AddInputField("Color (#RRGGBB, empty for default)", color, 10, nil, func(t string) { color = t })

	form.AddButton("Save", func() {
		ctx := context.Background()
		if err := a.svc.RenameFolder(ctx, index, name); err != nil {
			a.showError(fmt.Sprintf("Error saving folder: %v", err))
			return
		}
		var colorHex *string
		if c := strings.TrimSpace(color); c != "" {
			colorHex = &c
		}
		if err := a.svc.SetFolderColor(ctx, index, colorHex); err != nil {
			a.showError(fmt.Sprintf("Error saving folder: %v", err))
			return
		}
		a.closeForm()
	})
	form.AddButton("Cancel", a.closeForm)

	form.SetBorder(true).SetTitle("Edit Folder")
	a.showForm(form)
}

func (a *App) showForm(form *tview.Form) {
	a.form = form
	a.pages.AddPage("form", centered(form, 80, 11), true, true)
	a.app.SetFocus(form)
	a.mode = ModeForm
}

func (a *App) closeForm() {
	a.form = nil
	a.pages.RemovePage("form")
	a.mode = ModeNormal
	a.restoreFocus()
}

func (a *App) restoreFocus() {
	if a.folderIndex >= 0 {
		a.app.SetFocus(a.folderGrid)
	} else {
		a.app.SetFocus(a.grid)
	}
}

// showError shows a modal with an error message
func (a *App) showError(message string) {
	modal := tview.NewModal().
		SetText(message).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			a.pages.RemovePage("error")
			a.modal = nil
			a.afterModal()
		})

	modal.SetBorder(true).SetTitle("Error")
	a.pages.AddPage("error", modal, true, true)
	a.modal = modal
	a.app.SetFocus(modal)
}

func (a *App) showConfirm(message string, onConfirm func()) {
	prev := a.mode
	modal := tview.NewModal().
		SetText(message).
		AddButtons([]string{"Cancel", "OK"}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			a.pages.RemovePage("confirm")
			a.modal = nil
			a.mode = prev
			if buttonIndex == 1 && onConfirm != nil {
				onConfirm()
			}
			a.afterModal()
		})

	modal.SetBorder(true).SetTitle("Confirm")
	a.pages.AddPage("confirm", modal, true, true)
	a.modal = modal
	a.mode = ModeModal
	a.app.SetFocus(modal)
}

// afterModal gives focus back to the open form or the grid
func (a *App) afterModal() {
	if a.modal != nil {
		return
	}
	if a.form != nil {
		a.mode = ModeForm
		a.app.SetFocus(a.form)
		return
	}
	a.mode = ModeNormal
	a.restoreFocus()
}

// centered wraps p in a flex layout that keeps it in the middle of the screen
func centered(p tview.Primitive, width, height int) *tview.Flex {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}

func openURL(url string) {
	var cmd string
	var args []string
	switch runtime.GOOS {
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start"}
	case "darwin":
		cmd = "open"
	default:
		cmd = "xdg-open"
	}
	args = append(args, url)
	_ = exec.Command(cmd, args...).Start()
}
