package archiver

import (
	"errors"
	"io"
	"io/fs"
	"path/filepath"
)

var (
	SkipFile error = errors.New("skip this file")
	SkipDir  error = filepath.SkipDir
)

// ExcludeFunc decides whether an entry found while walking a directory is
// packed. It returns SkipFile or SkipDir to leave the entry out, nil to keep it.
// relPath is slash separated and relative to the base directory.
type ExcludeFunc func(relPath string, d fs.DirEntry) error

// Archiver writes entries, named relative to a base directory, into a new archive.
type Archiver interface {
	Init(dst string) (io.Closer, error)
	WriteFile(baseDir string, fName string) error
	WriteDirectory(baseDir string, dirName string, excludeFn ExcludeFunc) error
}
