package util

import (
	"errors"
	"io/fs"
	"os"
)

func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// RemoveIfExists deletes path and treats a missing file as success.
func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
