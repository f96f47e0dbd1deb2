package artifact

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/sha3"
)

// SaveResult describes a completed artifact write.
type SaveResult struct {
	// Path is the artifact path.
	Path string
	// Hash is the hex SHA3-256 of the artifact contents.
	Hash string
	// Created is false when an artifact already existed and was kept.
	Created bool
}

// WriteFileAtomic writes data to a temporary file in the directory of path
// and renames it over path. The directory must exist.
func WriteFileAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Checksum returns the hex SHA3-256 of data.
func Checksum(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// writeJSON encodes v with indentation and writes it atomically.
func writeJSON(path string, v any) (SaveResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return SaveResult{}, fmt.Errorf("%w: %s: %w", ErrSave, filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return SaveResult{}, fmt.Errorf("%w: %w", ErrSave, err)
	}
	if err := WriteFileAtomic(path, data); err != nil {
		return SaveResult{}, fmt.Errorf("%w: %s: %w", ErrSave, filepath.Base(path), err)
	}
	return SaveResult{Path: path, Hash: Checksum(data), Created: true}, nil
}
