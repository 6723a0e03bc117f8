package app

import (
	"errors"
	"fmt"
	"io"

	"ccsnap/internal/config"
	"ccsnap/internal/encryption"
)

var errKeysMissing = errors.New("encryption keys not configured: run `ccsnap keys init` first")

// InitKeys generates the encryption key pair, protecting the private key
// with passphrase.
func InitKeys(cfg config.EncryptionConfig, passphrase string) error {
	enc, err := encryption.NewEncryptorFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	if err := enc.Setup(passphrase); err != nil {
		return fmt.Errorf("initializing keys: %w", err)
	}
	return nil
}

// Decrypt decrypts an encrypted export or backup read from r into w.
func Decrypt(cfg config.EncryptionConfig, passphrase string, r io.Reader, w io.Writer) error {
	enc, err := encryption.NewEncryptorFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	if !enc.IsConfigured() {
		return errKeysMissing
	}
	dc, err := enc.Unlock(passphrase)
	if err != nil {
		return fmt.Errorf("unlocking private key: %w", err)
	}
	if err := dc.Decrypt(r, w); err != nil {
		return fmt.Errorf("decrypting: %w", err)
	}
	return nil
}
