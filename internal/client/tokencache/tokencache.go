// Package tokencache stores the CLI's session token on disk, sealed with
// AES-256-GCM under a locally generated key so a casual file read does not
// leak a live session.
package tokencache

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"os"

	cryptohelper "github.com/Smartsec916/Observe-and-Report-sub001/internal/shared/crypto"
)

const keyLength = 32

var tokenAAD = []byte("oar-session-token")

// KeyPath returns the location of the local sealing key.
func KeyPath() string {
	home, _ := os.UserHomeDir()
	return home + string(os.PathSeparator) + ".oar_key"
}

func tokenPath() string {
	home, _ := os.UserHomeDir()
	return home + string(os.PathSeparator) + ".oar_token"
}

// KeyExists reports whether a sealing key has been generated.
func KeyExists() bool {
	_, err := os.Stat(KeyPath())
	return err == nil
}

// GenerateKey creates and stores a fresh sealing key. Fails when one
// already exists to avoid orphaning a cached token.
func GenerateKey() error {
	if KeyExists() {
		return errors.New("key already exists")
	}
	key := make([]byte, keyLength)
	if _, err := rand.Read(key); err != nil {
		return err
	}
	return os.WriteFile(KeyPath(), []byte(base64.StdEncoding.EncodeToString(key)), 0600)
}

func loadKey() ([]byte, error) {
	b, err := os.ReadFile(KeyPath())
	if err != nil {
		return nil, err
	}
	key, err := base64.StdEncoding.DecodeString(string(b))
	if err != nil {
		return nil, err
	}
	if len(key) != keyLength {
		return nil, errors.New("invalid key length")
	}
	return key, nil
}

// ensureKey loads the sealing key, generating one on first use.
func ensureKey() ([]byte, error) {
	if !KeyExists() {
		if err := GenerateKey(); err != nil {
			return nil, err
		}
	}
	return loadKey()
}

// Save seals the token and writes it to the cache.
func Save(token string) error {
	key, err := ensureKey()
	if err != nil {
		return err
	}
	sealed, err := cryptohelper.Seal(key, []byte(token), tokenAAD)
	if err != nil {
		return err
	}
	return os.WriteFile(tokenPath(), []byte(base64.StdEncoding.EncodeToString(sealed)), 0600)
}

// Load returns the cached session token.
func Load() (string, error) {
	key, err := loadKey()
	if err != nil {
		return "", errors.New("no cached session, please login")
	}
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", errors.New("no cached session, please login")
	}
	sealed, err := base64.StdEncoding.DecodeString(string(b))
	if err != nil {
		return "", err
	}
	token, err := cryptohelper.Open(key, sealed, tokenAAD)
	if err != nil {
		return "", err
	}
	return string(token), nil
}

// Clear removes the cached token; missing files are fine.
func Clear() error {
	err := os.Remove(tokenPath())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
