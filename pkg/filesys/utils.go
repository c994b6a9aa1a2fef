package filesys

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Exists reports whether name exists. Dangling symlinks exist.
func Exists(name string) bool {
	_, err := os.Lstat(name)
	return err == nil
}

func IsDir(name string) bool {
	info, err := os.Stat(name)
	return err == nil && info.IsDir()
}

func IsFile(name string) bool {
	info, err := os.Stat(name)
	return err == nil && info.Mode().IsRegular()
}

// Remove deletes name recursively, like rm -rf. A missing path is not an error.
func Remove(name string) error {
	if _, err := os.Lstat(name); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", name, err)
	}
	if err := os.RemoveAll(name); err != nil {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}
