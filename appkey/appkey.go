// Package appkey loads the application key: the opaque credential blob that
// identifies this application to the session library.
//
// Keys are stored either as raw bytes or, for files ending in .hex or .txt,
// as hexadecimal text (whitespace is ignored).
package appkey

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Size is the length in bytes of a valid application key.
const Size = 321

// Key errors.
var (
	// ErrKeyNotFound indicates no key file exists at the given path.
	ErrKeyNotFound = errors.New("application key not found")

	// ErrKeyInvalid indicates the key file could not be decoded or has the wrong size.
	ErrKeyInvalid = errors.New("invalid application key")
)

// Key is an application key.
type Key []byte

// DefaultPath returns the default key location:
// ~/.config/streamkit/appkey.key on Unix-like systems.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "streamkit", "appkey.key")
}

// Load reads and validates the key at path.
// If path is empty, uses DefaultPath().
func Load(path string) (Key, error) {
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, path)
		}
		return nil, fmt.Errorf("read application key: %w", err)
	}

	key := Key(data)
	if isHexPath(path) {
		decoded, err := hex.DecodeString(stripSpace(string(data)))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrKeyInvalid, err)
		}
		key = Key(decoded)
	}

	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return key, nil
}

// Write stores key at path with owner-only permissions, creating parent
// directories as needed. Paths ending in .hex or .txt are written as hex text.
func Write(path string, key Key) error {
	if err := key.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create key directory: %w", err)
	}

	data := []byte(key)
	if isHexPath(path) {
		data = []byte(hex.EncodeToString(key) + "\n")
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write application key: %w", err)
	}
	return nil
}

// Validate checks the key length.
func (k Key) Validate() error {
	if len(k) != Size {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrKeyInvalid, Size, len(k))
	}
	return nil
}

// Fingerprint returns a short digest of the key, safe to log.
func (k Key) Fingerprint() string {
	sum := sha256.Sum256(k)
	return hex.EncodeToString(sum[:6])
}

func isHexPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".hex" || ext == ".txt"
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)
}
