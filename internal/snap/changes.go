package snap

import (
	"sort"

	"ccsnap/internal/model"
)

// DetectChanges compares two path lists by (category, name) and returns the
// differences, sorted by category then name. Unchanged locations produce no
// record.
//
// Two files are only compared by content when both have a captured digest.
// A file scanned with content capture disabled is never reported as modified
// on content alone.
func DetectChanges(previous, current []*model.SnapshotPath) []*model.SnapshotChange {
	prev := indexPaths(previous)
	curr := indexPaths(current)

	var changes []*model.SnapshotChange

	for key, c := range curr {
		p, ok := prev[key]
		if !ok {
			changes = append(changes, &model.SnapshotChange{
				ChangeType:    model.ChangeAdded,
				Category:      key.Category,
				Name:          key.Name,
				NewContentRef: c.ContentRef,
				NewSizeBytes:  c.SizeBytes,
			})
			continue
		}
		if pathModified(p, c) {
			changes = append(changes, &model.SnapshotChange{
				ChangeType:         model.ChangeModified,
				Category:           key.Category,
				Name:               key.Name,
				PreviousContentRef: p.ContentRef,
				NewContentRef:      c.ContentRef,
				PreviousSizeBytes:  p.SizeBytes,
				NewSizeBytes:       c.SizeBytes,
			})
		}
	}

	for key, p := range prev {
		if _, ok := curr[key]; ok {
			continue
		}
		changes = append(changes, &model.SnapshotChange{
			ChangeType:         model.ChangeRemoved,
			Category:           key.Category,
			Name:               key.Name,
			PreviousContentRef: p.ContentRef,
			PreviousSizeBytes:  p.SizeBytes,
		})
	}

	sort.Slice(changes, func(i, j int) bool {
		if changes[i].Category != changes[j].Category {
			return changes[i].Category < changes[j].Category
		}
		return changes[i].Name < changes[j].Name
	})
	return changes
}

func pathModified(prev, curr *model.SnapshotPath) bool {
	if prev.Exists != curr.Exists {
		return true
	}
	if !curr.Exists {
		return false
	}
	if prev.Type != curr.Type {
		return true
	}
	if curr.Type == model.PathTypeFile {
		return prev.ContentRef != "" && curr.ContentRef != "" && prev.ContentRef != curr.ContentRef
	}
	return false
}

func indexPaths(paths []*model.SnapshotPath) map[model.PathKey]*model.SnapshotPath {
	m := make(map[model.PathKey]*model.SnapshotPath, len(paths))
	for _, p := range paths {
		m[p.Key()] = p
	}
	return m
}
