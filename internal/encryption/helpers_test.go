package encryption

import (
	"fmt"

	"ccsnap/internal/config"
)

func configFor(typ string, keys bool) config.EncryptionConfig {
	cfg := config.EncryptionConfig{Type: typ}
	if keys {
		cfg.PublicKeyPath = "/keys/ccsnap.pub"
		cfg.PrivateKeyPath = "/keys/ccsnap.key"
	}
	return cfg
}

func typeName(v any) string { return fmt.Sprintf("%T", v) }
