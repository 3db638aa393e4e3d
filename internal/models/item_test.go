package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestIsFolder(t *testing.T) {
	if IsFolder(NewLink("a", "https://a", "")) {
		t.Error("link reported as folder")
	}
	if !IsFolder(NewFolder("f")) {
		t.Error("folder not reported as folder")
	}
}

func TestNewLinkEmptyIcon(t *testing.T) {
	l := NewLink("a", "https://a", "")
	if l.Icon != nil {
		t.Errorf("Icon = %q, want nil", *l.Icon)
	}
	if l.ID == "" {
		t.Error("expected generated ID")
	}
	l = NewLink("a", "https://a", "https://a/icon.png")
	if l.IconOrEmpty() != "https://a/icon.png" {
		t.Errorf("IconOrEmpty() = %q", l.IconOrEmpty())
	}
}

func TestCloneIsDeep(t *testing.T) {
	color := "#112233"
	f := NewFolder("f", NewLink("x", "https://x", "icon"))
	f.ColorHex = &color
	c := Collection{f, NewLink("a", "https://a", "")}

	cp := c.Clone()
	cf := cp[0].(Folder)
	cf.Links[0].Name = "changed"
	*cf.ColorHex = "#000000"
	*cf.Links[0].Icon = "other"

	orig := c[0].(Folder)
	if orig.Links[0].Name != "x" {
		t.Errorf("clone shares links with original")
	}
	if *orig.ColorHex != "#112233" {
		t.Errorf("clone shares color with original")
	}
	if *orig.Links[0].Icon != "icon" {
		t.Errorf("clone shares icon with original")
	}
}

func TestIndexOf(t *testing.T) {
	a := NewLink("a", "https://a", "")
	b := NewLink("b", "https://b", "")
	c := Collection{a, b}

	if got := c.IndexOf(b.ID); got != 1 {
		t.Errorf("IndexOf(b) = %d, want 1", got)
	}
	if got := c.IndexOf("missing"); got != -1 {
		t.Errorf("IndexOf(missing) = %d, want -1", got)
	}
}

func TestValidate(t *testing.T) {
	bad := "blue"
	good := "#a0B1c2"

	tests := []struct {
		name    string
		item    interface{ Validate() error }
		wantErr bool
	}{
		{"valid link", NewLink("Go", "https://go.dev", ""), false},
		{"link without name", NewLink("", "https://go.dev", ""), true},
		{"link without url", NewLink("Go", "", ""), true},
		{"link name too long", NewLink(strings.Repeat("n", MaxNameLength+1), "https://go.dev", ""), true},
		{"valid folder", Folder{Name: "Work", ColorHex: &good}, false},
		{"folder bad color", Folder{Name: "Work", ColorHex: &bad}, true},
		{"folder without name", Folder{}, true},
		{"folder with invalid child", Folder{Name: "Work", Links: []Link{{Name: "x"}}}, true},
	}

	for _, tt := range tests {
		err := tt.item.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestCollectionJSONFormat(t *testing.T) {
	icon := "https://a/icon.png"
	c := Collection{
		Link{ID: "a", Name: "A", URL: "https://a", Icon: &icon},
		Folder{ID: "f", Name: "F", Links: []Link{{ID: "x", Name: "X", URL: "https://x"}}},
	}

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	want := `[{"id":"a","name":"A","url":"https://a","icon":"https://a/icon.png"},` +
		`{"id":"f","type":"folder","name":"F","links":[{"id":"x","name":"X","url":"https://x"}]}]`
	if string(data) != want {
		t.Errorf("Marshal =\n%s\nwant\n%s", data, want)
	}
}

func TestCollectionUnmarshalLegacy(t *testing.T) {
	// Stored data without ids and with a folder nested in a folder.
	data := `[
		{"name":"A","url":"https://a","icon":""},
		{"type":"folder","name":"F","colorHex":"#ff0000","links":[
			{"name":"X","url":"https://x"},
			{"type":"folder","name":"Inner","links":[{"name":"Y","url":"https://y"}]}
		]}
	]`

	var c Collection
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(c) != 2 {
		t.Fatalf("len = %d, want 2", len(c))
	}

	a, ok := c[0].(Link)
	if !ok || a.Name != "A" || a.ID == "" {
		t.Errorf("first item = %#v, want link A with id", c[0])
	}

	f, ok := c[1].(Folder)
	if !ok {
		t.Fatalf("second item = %T, want Folder", c[1])
	}
	if f.ColorHex == nil || *f.ColorHex != "#ff0000" {
		t.Errorf("ColorHex not decoded")
	}
	if len(f.Links) != 2 || f.Links[0].Name != "X" || f.Links[1].Name != "Y" {
		t.Errorf("folder links = %#v, want flattened [X Y]", f.Links)
	}
	for _, l := range f.Links {
		if l.ID == "" {
			t.Errorf("child %q has no id", l.Name)
		}
	}
}
