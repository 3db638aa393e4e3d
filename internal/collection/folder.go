package collection

import (
	"fmt"

	"github.com/dastanaron/homebase/internal/models"
)

func checkChild(f models.Folder, i int) error {
	if i < 0 || i >= len(f.Links) {
		return fmt.Errorf("%w: child %d (len %d)", ErrInvalidIndex, i, len(f.Links))
	}
	return nil
}

// MoveWithinFolder reorders the links of the folder at folderIndex.
func MoveWithinFolder(c models.Collection, folderIndex, from, to int) (models.Collection, error) {
	folder, err := folderAt(c, folderIndex)
	if err != nil {
		return nil, err
	}
	if err := checkChild(folder, from); err != nil {
		return nil, err
	}
	if err := checkChild(folder, to); err != nil {
		return nil, err
	}

	out := c.Clone()
	if from == to {
		return out, nil
	}
	folder = out[folderIndex].(models.Folder)
	l := folder.Links[from]
	links := append(folder.Links[:from], folder.Links[from+1:]...)
	links = append(links[:to], append([]models.Link{l}, links[to:]...)...)
	folder.Links = links
	out[folderIndex] = folder
	return out, nil
}

// AppendToFolder adds a link to the end of the folder at folderIndex.
func AppendToFolder(c models.Collection, folderIndex int, l models.Link) (models.Collection, error) {
	folder, err := folderAt(c, folderIndex)
	if err != nil {
		return nil, err
	}
	out := c.Clone()
	folder = folder.Clone()
	folder.Links = append(folder.Links, l.Clone())
	out[folderIndex] = folder
	return out, nil
}

// ReplaceFolderLink overwrites a folder child, keeping its ID.
func ReplaceFolderLink(c models.Collection, folderIndex, childIndex int, l models.Link) (models.Collection, error) {
	folder, err := folderAt(c, folderIndex)
	if err != nil {
		return nil, err
	}
	if err := checkChild(folder, childIndex); err != nil {
		return nil, err
	}
	out := c.Clone()
	folder = out[folderIndex].(models.Folder)
	l = l.Clone()
	l.ID = folder.Links[childIndex].ID
	folder.Links[childIndex] = l
	out[folderIndex] = folder
	return out, nil
}

// DeleteFromFolder removes a folder child. A folder left empty is removed
// as well; pruned reports that.
func DeleteFromFolder(c models.Collection, folderIndex, childIndex int) (out models.Collection, pruned bool, err error) {
	folder, err := folderAt(c, folderIndex)
	if err != nil {
		return nil, false, err
	}
	if err := checkChild(folder, childIndex); err != nil {
		return nil, false, err
	}

	out = c.Clone()
	folder = out[folderIndex].(models.Folder)
	folder.Links = append(folder.Links[:childIndex], folder.Links[childIndex+1:]...)
	if len(folder.Links) == 0 {
		return append(out[:folderIndex], out[folderIndex+1:]...), true, nil
	}
	out[folderIndex] = folder
	return out, false, nil
}
