package vault

import (
	"fmt"
	"strings"
)

const versionSuffix = ".version"

// validateKey rejects host IDs and item names that could escape their
// host's namespace.
func validateKey(hostID, name string) error {
	if err := validateSegment("host id", hostID); err != nil {
		return err
	}
	if err := validateSegment("backup name", name); err != nil {
		return err
	}
	if strings.HasSuffix(name, versionSuffix) {
		return fmt.Errorf("invalid backup name %q: reserved suffix %s", name, versionSuffix)
	}
	return nil
}

func validateSegment(field, v string) error {
	if v == "" || v == "." || v == ".." || strings.ContainsAny(v, `/\`) {
		return fmt.Errorf("invalid %s %q", field, v)
	}
	return nil
}
