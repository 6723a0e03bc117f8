package snap

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"ccsnap/internal/model"
)

// HashContent returns the content ref for a file body.
func HashContent(content []byte) model.ContentRef {
	sum := sha256.Sum256(content)
	return model.ContentRef(hex.EncodeToString(sum[:]))
}

// IsContentRef reports whether s looks like a SHA-256 hex digest.
func IsContentRef(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// snapshotHash digests the observable state of every location, so two
// scans of an unchanged machine produce the same hash regardless of order
// or timing.
func snapshotHash(paths []*model.SnapshotPath) string {
	lines := make([]string, len(paths))
	for i, p := range paths {
		lines[i] = fmt.Sprintf("%s\x00%s\x00%s\n", p.Category, p.Name, pathState(p))
	}
	sort.Strings(lines)

	h := sha256.New()
	for _, l := range lines {
		h.Write([]byte(l))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func pathState(p *model.SnapshotPath) string {
	switch {
	case !p.Exists:
		return "missing"
	case p.Type == model.PathTypeDirectory:
		return "directory"
	case p.ContentRef != "":
		return "file:" + string(p.ContentRef)
	case p.SizeBytes != nil:
		return fmt.Sprintf("file:size=%d", *p.SizeBytes)
	default:
		return "file"
	}
}
