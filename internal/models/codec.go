package models

import (
	"encoding/json"
	"fmt"
)

// itemRecord is the stored shape of a tile. Links omit the type tag,
// folders carry "type":"folder" and their children under "links".
type itemRecord struct {
	ID       string       `json:"id,omitempty"`
	Type     ItemType     `json:"type,omitempty"`
	Name     string       `json:"name"`
	URL      string       `json:"url,omitempty"`
	Icon     *string      `json:"icon,omitempty"`
	ColorHex *string      `json:"colorHex,omitempty"`
	Links    []itemRecord `json:"links,omitempty"`
}

// MarshalJSON encodes the collection in the tiles storage format.
func (c Collection) MarshalJSON() ([]byte, error) {
	records := make([]itemRecord, 0, len(c))
	for _, item := range c {
		switch v := item.(type) {
		case Link:
			records = append(records, linkRecord(v))
		case Folder:
			rec := itemRecord{
				ID:       v.ID,
				Type:     ItemTypeFolder,
				Name:     v.Name,
				ColorHex: v.ColorHex,
				Links:    make([]itemRecord, 0, len(v.Links)),
			}
			for _, l := range v.Links {
				rec.Links = append(rec.Links, linkRecord(l))
			}
			records = append(records, rec)
		default:
			return nil, fmt.Errorf("unknown item type %T", item)
		}
	}
	return json.Marshal(records)
}

// UnmarshalJSON decodes the tiles storage format. Items without an ID get
// one, and a folder found inside a folder is flattened into its parent.
func (c *Collection) UnmarshalJSON(data []byte) error {
	var records []itemRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}

	out := make(Collection, 0, len(records))
	for _, rec := range records {
		if rec.Type == ItemTypeFolder {
			out = append(out, folderFromRecord(rec))
			continue
		}
		out = append(out, linkFromRecord(rec))
	}
	*c = out
	return nil
}

func linkRecord(l Link) itemRecord {
	return itemRecord{ID: l.ID, Name: l.Name, URL: l.URL, Icon: l.Icon}
}

func linkFromRecord(rec itemRecord) Link {
	id := rec.ID
	if id == "" {
		id = NewID()
	}
	return Link{ID: id, Name: rec.Name, URL: rec.URL, Icon: rec.Icon}
}

func folderFromRecord(rec itemRecord) Folder {
	id := rec.ID
	if id == "" {
		id = NewID()
	}
	f := Folder{ID: id, Name: rec.Name, ColorHex: rec.ColorHex}
	var flatten func([]itemRecord)
	flatten = func(children []itemRecord) {
		for _, child := range children {
			if child.Type == ItemTypeFolder {
				flatten(child.Links)
				continue
			}
			f.Links = append(f.Links, linkFromRecord(child))
		}
	}
	flatten(rec.Links)
	return f
}
