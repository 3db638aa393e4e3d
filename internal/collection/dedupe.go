package collection

import (
	"strings"

	"github.com/dastanaron/homebase/internal/models"
)

// RemoveDuplicates drops every link whose URL already appeared earlier in
// display order, top-level tiles and folder contents alike. Folders left
// empty are removed. It returns the cleaned collection and the dropped links.
func RemoveDuplicates(c models.Collection) (models.Collection, []models.Link) {
	seen := make(map[string]bool)
	var dropped []models.Link

	keep := func(l models.Link) bool {
		key := strings.TrimSuffix(strings.TrimSpace(l.URL), "/")
		if seen[key] {
			dropped = append(dropped, l)
			return false
		}
		seen[key] = true
		return true
	}

	out := make(models.Collection, 0, len(c))
	for _, item := range c.Clone() {
		switch v := item.(type) {
		case models.Link:
			if keep(v) {
				out = append(out, v)
			}
		case models.Folder:
			links := v.Links[:0]
			for _, l := range v.Links {
				if keep(l) {
					links = append(links, l)
				}
			}
			v.Links = links
			out = append(out, v)
		}
	}
	return PruneEmptyFolders(out), dropped
}
