package snap

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a snapshot or content entry does not exist.
	ErrNotFound = errors.New("not found")

	// ErrTagExists is returned by AddTag when the snapshot already carries a
	// tag with the same name. Inside CreateSnapshot duplicates are skipped.
	ErrTagExists = errors.New("tag already exists on snapshot")
)

// ConfigError reports a scan configuration that cannot be resolved.
// It is returned before any location is scanned.
type ConfigError struct {
	Category string
	Name     string
	Reason   string
}

func (e *ConfigError) Error() string {
	if e.Category == "" && e.Name == "" {
		return fmt.Sprintf("invalid scan configuration: %s", e.Reason)
	}
	return fmt.Sprintf("invalid path %s/%s: %s", e.Category, e.Name, e.Reason)
}
