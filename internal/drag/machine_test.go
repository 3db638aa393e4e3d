package drag

import (
	"errors"
	"testing"
	"time"

	"github.com/dastanaron/homebase/internal/collection"
	"github.com/dastanaron/homebase/internal/geometry"
	"github.com/dastanaron/homebase/internal/models"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestMachine(revert bool) (*Machine, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := NewMachine(Options{
		Delays:         DefaultDelays(),
		RevertOnCancel: revert,
		Clock:          clock.Now,
	})
	return m, clock
}

func link(name string) models.Link {
	return models.Link{ID: "id-" + name, Name: name, URL: "https://" + name + ".example"}
}

func folder(name string, links ...models.Link) models.Folder {
	return models.Folder{ID: "id-" + name, Name: name, Links: links}
}

// Tiles are laid out in a row of 100x100 cells.
func rectAt(i int) geometry.Rect {
	return geometry.Rect{Left: float64(i * 100), Top: 0, Width: 100, Height: 100}
}

func centerOf(c models.Collection, i int) Target {
	return Target{Index: i, ID: c[i].ItemID(), Pointer: geometry.Point{X: float64(i*100 + 50), Y: 50}, Rect: rectAt(i)}
}

func edgeOf(c models.Collection, i int) Target {
	return Target{Index: i, ID: c[i].ItemID(), Pointer: geometry.Point{X: float64(i*100 + 3), Y: 50}, Rect: rectAt(i)}
}

func names(c models.Collection) []string {
	var out []string
	for _, item := range c {
		switch v := item.(type) {
		case models.Link:
			out = append(out, v.Name)
		case models.Folder:
			s := v.Name + "["
			for i, l := range v.Links {
				if i > 0 {
					s += " "
				}
				s += l.Name
			}
			out = append(out, s+"]")
		}
	}
	return out
}

func wantNames(t *testing.T, got models.Collection, want ...string) {
	t.Helper()
	g := names(got)
	if len(g) != len(want) {
		t.Fatalf("collection = %v, want %v", g, want)
	}
	for i := range g {
		if g[i] != want[i] {
			t.Fatalf("collection = %v, want %v", g, want)
		}
	}
}

func TestDropLinkOnLinkCreatesFolder(t *testing.T) {
	m, _ := newTestMachine(true)
	c := models.Collection{link("A"), link("B")}

	if err := m.StartDrag(c, 0, TopLevel()); err != nil {
		t.Fatalf("StartDrag: %v", err)
	}
	res := m.Hover(c, centerOf(c, 1))
	if res.MergeCandidate != 1 || res.Changed {
		t.Errorf("hover center: candidate=%d changed=%v, want 1/false", res.MergeCandidate, res.Changed)
	}

	res = m.Drop(c, centerOf(c, 1))
	if !res.Changed || !res.Commit || !res.Ended {
		t.Errorf("drop result = %+v", res)
	}
	wantNames(t, res.Collection, "Folder[B A]")
	if m.Active() {
		t.Error("session still active after drop")
	}
}

func TestDropLinkOnFolderAddsToFolder(t *testing.T) {
	m, _ := newTestMachine(true)
	c := models.Collection{link("A"), folder("F", link("X"))}

	if err := m.StartDrag(c, 0, TopLevel()); err != nil {
		t.Fatalf("StartDrag: %v", err)
	}
	res := m.Drop(c, centerOf(c, 1))
	wantNames(t, res.Collection, "F[X A]")
	if len(res.Collection) != 1 {
		t.Errorf("len = %d, want 1", len(res.Collection))
	}
}

func TestFolderOnFolderNeverMerges(t *testing.T) {
	m, clock := newTestMachine(true)
	c := models.Collection{folder("F", link("X")), folder("G", link("Y")), link("A")}

	if err := m.StartDrag(c, 0, TopLevel()); err != nil {
		t.Fatalf("StartDrag: %v", err)
	}
	res := m.Hover(c, centerOf(c, 1))
	if res.MergeCandidate != -1 {
		t.Errorf("folder offered as merge target for a folder")
	}
	clock.Advance(350 * time.Millisecond)
	res = m.Hover(c, centerOf(c, 1))
	if !res.Changed {
		t.Fatal("folder over folder should reorder after the settle delay")
	}
	c = res.Collection
	wantNames(t, c, "G[Y]", "F[X]", "A")

	res = m.Drop(c, centerOf(c, 0))
	if got := res.Collection.Folders(); got != 2 {
		t.Errorf("folders = %d, want 2", got)
	}
	wantNames(t, res.Collection, "G[Y]", "F[X]", "A")
}

func TestFolderOnLinkCenterReorders(t *testing.T) {
	m, clock := newTestMachine(true)
	c := models.Collection{folder("F", link("X")), link("A")}

	if err := m.StartDrag(c, 0, TopLevel()); err != nil {
		t.Fatalf("StartDrag: %v", err)
	}
	m.Hover(c, centerOf(c, 1))
	clock.Advance(250 * time.Millisecond)
	res := m.Hover(c, centerOf(c, 1))
	if !res.Changed {
		t.Fatal("expected reorder")
	}
	wantNames(t, res.Collection, "A", "F[X]")

	res = m.DragEnd(res.Collection)
	if res.OpenFolder {
		t.Error("moved folder must not open on release")
	}
	if !res.Commit {
		t.Error("expected commit after reorder")
	}
}

func TestSettleDelay(t *testing.T) {
	m, clock := newTestMachine(true)
	c := models.Collection{link("A"), link("B"), link("C")}

	if err := m.StartDrag(c, 0, TopLevel()); err != nil {
		t.Fatalf("StartDrag: %v", err)
	}

	if res := m.Hover(c, edgeOf(c, 2)); res.Changed {
		t.Fatal("first hover must only start the timer")
	}
	clock.Advance(150 * time.Millisecond)
	if res := m.Hover(c, edgeOf(c, 2)); res.Changed {
		t.Fatal("reordered before the settle delay")
	}
	clock.Advance(60 * time.Millisecond)
	res := m.Hover(c, edgeOf(c, 2))
	if !res.Changed {
		t.Fatal("expected reorder after 210ms")
	}
	wantNames(t, res.Collection, "B", "C", "A")

	s, ok := m.Session()
	if !ok || s.CurrentIndex != 2 || !s.ReorderOccurred || !s.HoverStart.IsZero() {
		t.Errorf("session after reorder = %+v", s)
	}
}

func TestFolderTargetUsesLongerDelay(t *testing.T) {
	m, clock := newTestMachine(true)
	c := models.Collection{folder("A", link("Y")), folder("F", link("X"))}

	if err := m.StartDrag(c, 0, TopLevel()); err != nil {
		t.Fatalf("StartDrag: %v", err)
	}
	m.Hover(c, edgeOf(c, 1))
	clock.Advance(250 * time.Millisecond)
	if res := m.Hover(c, edgeOf(c, 1)); res.Changed {
		t.Fatal("folder target reordered before its settle delay")
	}
	clock.Advance(60 * time.Millisecond)
	res := m.Hover(c, edgeOf(c, 1))
	if !res.Changed {
		t.Fatal("expected reorder after 310ms")
	}
	wantNames(t, res.Collection, "F[X]", "A[Y]")
}

func TestHoverTimerResetsOnZoneChange(t *testing.T) {
	m, clock := newTestMachine(true)
	c := models.Collection{link("A"), link("B")}

	if err := m.StartDrag(c, 0, TopLevel()); err != nil {
		t.Fatalf("StartDrag: %v", err)
	}
	m.Hover(c, edgeOf(c, 1))
	clock.Advance(150 * time.Millisecond)
	// Passing through the center suppresses the reorder timer.
	if res := m.Hover(c, centerOf(c, 1)); res.MergeCandidate != 1 {
		t.Fatalf("expected merge candidate, got %d", res.MergeCandidate)
	}
	clock.Advance(100 * time.Millisecond)
	if res := m.Hover(c, edgeOf(c, 1)); res.Changed {
		t.Fatal("timer should restart after leaving the center")
	}
	clock.Advance(210 * time.Millisecond)
	if res := m.Hover(c, edgeOf(c, 1)); !res.Changed {
		t.Fatal("expected reorder once the restarted timer elapsed")
	}
}

func TestLinkOverFolderCenterDoesNotReorder(t *testing.T) {
	m, clock := newTestMachine(true)
	c := models.Collection{link("A"), folder("F", link("X"))}

	if err := m.StartDrag(c, 0, TopLevel()); err != nil {
		t.Fatalf("StartDrag: %v", err)
	}
	for i := 0; i < 5; i++ {
		res := m.Hover(c, centerOf(c, 1))
		if res.Changed {
			t.Fatal("link over folder center must not reorder")
		}
		if res.MergeCandidate != 1 {
			t.Fatalf("merge candidate = %d, want 1", res.MergeCandidate)
		}
		clock.Advance(time.Second)
	}
}

func TestLinkOverFolderEdgeDoesNotReorder(t *testing.T) {
	m, clock := newTestMachine(true)
	c := models.Collection{link("A"), folder("F", link("X"))}

	if err := m.StartDrag(c, 0, TopLevel()); err != nil {
		t.Fatalf("StartDrag: %v", err)
	}
	for i := 0; i < 4; i++ {
		res := m.Hover(c, edgeOf(c, 1))
		if res.Changed {
			t.Fatalf("link over folder edge reordered: %v", names(res.Collection))
		}
		if res.MergeCandidate != -1 {
			t.Errorf("merge candidate = %d on folder edge, want -1", res.MergeCandidate)
		}
		clock.Advance(400 * time.Millisecond)
	}

	res := m.Drop(c, edgeOf(c, 1))
	if res.Changed || !res.Ended {
		t.Errorf("edge drop result = %+v", res)
	}
	wantNames(t, res.Collection, "A", "F[X]")
}

func TestReorderDisablesMergeOnDrop(t *testing.T) {
	m, clock := newTestMachine(true)
	c := models.Collection{link("A"), link("B"), link("C")}

	if err := m.StartDrag(c, 0, TopLevel()); err != nil {
		t.Fatalf("StartDrag: %v", err)
	}
	m.Hover(c, edgeOf(c, 1))
	clock.Advance(250 * time.Millisecond)
	res := m.Hover(c, edgeOf(c, 1))
	if !res.Changed {
		t.Fatal("expected reorder")
	}
	c = res.Collection
	wantNames(t, c, "B", "A", "C")

	res = m.Drop(c, centerOf(c, 2))
	if res.Changed {
		t.Errorf("merge happened after a live reorder")
	}
	if !res.Commit {
		t.Error("drop must commit the live order")
	}
	wantNames(t, res.Collection, "B", "A", "C")
}

func TestDropOnEdgeCommitsReorder(t *testing.T) {
	m, _ := newTestMachine(true)
	c := models.Collection{link("A"), link("B")}

	if err := m.StartDrag(c, 0, TopLevel()); err != nil {
		t.Fatalf("StartDrag: %v", err)
	}
	res := m.Drop(c, edgeOf(c, 1))
	if res.Changed || !res.Commit || !res.Ended {
		t.Errorf("edge drop result = %+v", res)
	}
	wantNames(t, res.Collection, "A", "B")
}

func TestDragEndOpensUnmovedFolder(t *testing.T) {
	m, _ := newTestMachine(true)
	c := models.Collection{link("A"), folder("F", link("X"))}

	if err := m.StartDrag(c, 1, TopLevel()); err != nil {
		t.Fatalf("StartDrag: %v", err)
	}
	res := m.DragEnd(c)
	if !res.OpenFolder || res.FolderIndex != 1 {
		t.Errorf("expected folder 1 to open, got %+v", res)
	}
	if res.Commit {
		t.Error("a click on a folder must not commit")
	}
}

func TestDragEndKeepsLiveOrder(t *testing.T) {
	m, clock := newTestMachine(true)
	c := models.Collection{link("A"), link("B")}

	if err := m.StartDrag(c, 0, TopLevel()); err != nil {
		t.Fatalf("StartDrag: %v", err)
	}
	m.Hover(c, edgeOf(c, 1))
	clock.Advance(time.Second)
	res := m.Hover(c, edgeOf(c, 1))
	res = m.DragEnd(res.Collection)
	if !res.Commit || res.OpenFolder {
		t.Errorf("drag end result = %+v", res)
	}
	wantNames(t, res.Collection, "B", "A")
}

func TestStartDragGuards(t *testing.T) {
	m, _ := newTestMachine(true)
	c := models.Collection{link("A"), folder("F", link("X"))}

	if err := m.StartDrag(c, 2, TopLevel()); !errors.Is(err, collection.ErrInvalidIndex) {
		t.Errorf("StartDrag(2) error = %v, want ErrInvalidIndex", err)
	}
	if err := m.StartDrag(c, 0, InsideFolder(0)); !errors.Is(err, collection.ErrIllegalMerge) {
		t.Errorf("StartDrag inside a link error = %v, want ErrIllegalMerge", err)
	}
	if err := m.StartDrag(c, 3, InsideFolder(1)); !errors.Is(err, collection.ErrInvalidIndex) {
		t.Errorf("StartDrag bad child error = %v, want ErrInvalidIndex", err)
	}
	if m.Active() {
		t.Fatal("failed StartDrag left a session")
	}

	if err := m.StartDrag(c, 0, TopLevel()); err != nil {
		t.Fatalf("StartDrag: %v", err)
	}
	if err := m.StartDrag(c, 1, TopLevel()); !errors.Is(err, ErrSessionActive) {
		t.Errorf("second StartDrag error = %v, want ErrSessionActive", err)
	}
}

func TestCallsWithoutSessionAreNoops(t *testing.T) {
	m, _ := newTestMachine(true)
	c := models.Collection{link("A"), link("B")}

	for name, res := range map[string]Result{
		"hover":          m.Hover(c, centerOf(c, 1)),
		"drop":           m.Drop(c, centerOf(c, 1)),
		"drag end":       m.DragEnd(c),
		"cancel":         m.Cancel(c),
		"drop outside":   m.DropOutside(c),
		"hover folder":   m.HoverInFolder(c, 0),
		"drop in folder": m.DropInFolder(c),
	} {
		if res.Changed || res.Commit || res.Ended || res.OpenFolder {
			t.Errorf("%s without a session = %+v", name, res)
		}
	}
}

func TestStaleTargetIgnored(t *testing.T) {
	m, _ := newTestMachine(true)
	c := models.Collection{link("A"), link("B")}

	if err := m.StartDrag(c, 0, TopLevel()); err != nil {
		t.Fatalf("StartDrag: %v", err)
	}
	target := centerOf(c, 1)
	target.ID = "id-gone"
	if res := m.Hover(c, target); res.MergeCandidate != -1 {
		t.Error("stale target offered as merge candidate")
	}
	res := m.Drop(c, target)
	if res.Changed {
		t.Error("stale drop merged tiles")
	}
	if !res.Ended {
		t.Error("stale drop must still end the session")
	}
	wantNames(t, res.Collection, "A", "B")
}

func TestExtractFromFolder(t *testing.T) {
	m, _ := newTestMachine(true)
	c := models.Collection{link("A"), folder("F", link("X"), link("Y"))}

	if err := m.StartDrag(c, 0, InsideFolder(1)); err != nil {
		t.Fatalf("StartDrag: %v", err)
	}
	// Hovering top-level tiles never merges or reorders a folder child.
	if res := m.Hover(c, centerOf(c, 0)); res.MergeCandidate != -1 || res.Changed {
		t.Errorf("in-folder source hovering top level = %+v", res)
	}
	res := m.DropOutside(c)
	if !res.Changed || !res.Commit || res.FolderClosed || !res.FolderRefreshed || res.FolderIndex != 1 {
		t.Errorf("extract result = %+v", res)
	}
	wantNames(t, res.Collection, "A", "F[Y]", "X")
}

func TestExtractLastChildClosesFolder(t *testing.T) {
	m, _ := newTestMachine(true)
	c := models.Collection{folder("F", link("X")), link("A")}

	if err := m.StartDrag(c, 0, InsideFolder(0)); err != nil {
		t.Fatalf("StartDrag: %v", err)
	}
	// Dropping on a top-level tile also extracts.
	res := m.Drop(c, centerOf(c, 1))
	if !res.FolderClosed {
		t.Error("emptied folder view must close")
	}
	wantNames(t, res.Collection, "A", "X")
}

func TestInFolderReorder(t *testing.T) {
	m, _ := newTestMachine(true)
	c := models.Collection{folder("F", link("X"), link("Y"), link("Z"))}

	if err := m.StartDrag(c, 0, InsideFolder(0)); err != nil {
		t.Fatalf("StartDrag: %v", err)
	}
	res := m.HoverInFolder(c, 2)
	if !res.Changed || !res.FolderRefreshed {
		t.Fatalf("in-folder hover = %+v", res)
	}
	c = res.Collection
	wantNames(t, c, "F[Y Z X]")

	if res := m.HoverInFolder(c, 2); res.Changed {
		t.Error("hovering own slot reordered")
	}
	res = m.DropInFolder(c)
	if !res.Commit || !res.Ended {
		t.Errorf("drop in folder = %+v", res)
	}
	wantNames(t, res.Collection, "F[Y Z X]")
}

func TestCancelRevertsLiveOrder(t *testing.T) {
	m, clock := newTestMachine(true)
	c := models.Collection{link("A"), link("B"), link("C")}

	if err := m.StartDrag(c, 0, TopLevel()); err != nil {
		t.Fatalf("StartDrag: %v", err)
	}
	m.Hover(c, edgeOf(c, 2))
	clock.Advance(time.Second)
	live := m.Hover(c, edgeOf(c, 2)).Collection
	wantNames(t, live, "B", "C", "A")

	res := m.Cancel(live)
	if !res.Changed || res.Commit || !res.Ended {
		t.Errorf("cancel result = %+v", res)
	}
	wantNames(t, res.Collection, "A", "B", "C")
}

func TestCancelWithoutRevertKeepsLiveOrder(t *testing.T) {
	m, clock := newTestMachine(false)
	c := models.Collection{link("A"), link("B")}

	if err := m.StartDrag(c, 0, TopLevel()); err != nil {
		t.Fatalf("StartDrag: %v", err)
	}
	m.Hover(c, edgeOf(c, 1))
	clock.Advance(time.Second)
	live := m.Hover(c, edgeOf(c, 1)).Collection

	res := m.Cancel(live)
	if !res.Commit {
		t.Error("cancel without revert must commit like drag end")
	}
	wantNames(t, res.Collection, "B", "A")
}

func TestFolderDelayNeverShorterThanLinkDelay(t *testing.T) {
	m := NewMachine(Options{Delays: Delays{Link: 500 * time.Millisecond, Folder: 100 * time.Millisecond}})
	if m.delays.Folder != 500*time.Millisecond {
		t.Errorf("folder delay = %v, want 500ms", m.delays.Folder)
	}
	m = NewMachine(Options{})
	if m.delays != DefaultDelays() {
		t.Errorf("zero options delays = %+v, want defaults", m.delays)
	}
}
