package tarwriter

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/acronis/go-applib/pkg/archiver"
	"github.com/acronis/go-applib/pkg/compression"
)

type tarWriter struct {
	codec   compression.Codec
	archive *os.File
	cw      io.WriteCloser
	tw      *tar.Writer
}

// New returns an archiver producing a tar container compressed with codec.
func New(codec compression.Codec) archiver.Archiver {
	return &tarWriter{codec: codec}
}

func (wr *tarWriter) Close() error {
	var errs []error
	if wr.tw != nil {
		errs = append(errs, wr.tw.Close())
	}
	if wr.cw != nil {
		errs = append(errs, wr.cw.Close())
	}
	if wr.archive != nil {
		errs = append(errs, wr.archive.Close())
	}
	wr.tw, wr.cw, wr.archive = nil, nil, nil
	return errors.Join(errs...)
}

func (wr *tarWriter) Init(destination string) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(destination), os.ModePerm); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	archive, err := os.Create(destination)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}
	cw, err := wr.codec.NewWriter(archive)
	if err != nil {
		archive.Close()
		return nil, fmt.Errorf("open %s stream: %w", wr.codec.Mode("w"), err)
	}
	wr.archive = archive
	wr.cw = cw
	wr.tw = tar.NewWriter(cw)

	return wr, nil
}

// WriteFile adds a single entry. Regular files carry their content, symlinks
// are stored as links and directories as bare directory entries.
func (wr *tarWriter) WriteFile(baseDir string, fName string) error {
	filePath := filepath.Join(baseDir, fName)
	info, err := os.Lstat(filePath)
	if err != nil {
		return fmt.Errorf("get file info: %w", err)
	}

	var link string
	if info.Mode()&fs.ModeSymlink != 0 {
		if link, err = os.Readlink(filePath); err != nil {
			return fmt.Errorf("read link %s: %w", fName, err)
		}
	}

	header, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return fmt.Errorf("create file info header: %w", err)
	}

	// FileInfoHeader only takes the basename, keep the relative path instead.
	header.Name = filepath.ToSlash(fName)
	if info.IsDir() {
		header.Name += "/"
	}

	if err := wr.tw.WriteHeader(header); err != nil {
		return fmt.Errorf("write file header: %w", err)
	}

	if !info.Mode().IsRegular() {
		return nil
	}

	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open %s: %w", fName, err)
	}
	defer f.Close()

	if _, err := io.Copy(wr.tw, f); err != nil {
		return fmt.Errorf("copy %s into archive: %w", fName, err)
	}
	return nil
}

// WriteDirectory adds dirName (relative to baseDir) and everything below it.
// The directory itself is always written, excludeFn only applies to its contents.
func (wr *tarWriter) WriteDirectory(baseDir string, dirName string, excludeFn archiver.ExcludeFunc) error {
	root := filepath.Join(baseDir, dirName)
	if err := filepath.WalkDir(root, func(fsPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(baseDir, fsPath)
		if err != nil {
			return fmt.Errorf("walk directory: %w", err)
		}

		if fsPath != root && excludeFn != nil {
			switch excludeFn(path.Clean(filepath.ToSlash(rel)), d) {
			case archiver.SkipDir:
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			case archiver.SkipFile:
				return nil
			}
		}

		return wr.WriteFile(baseDir, rel)
	}); err != nil {
		return fmt.Errorf("walk directory: %w", err)
	}
	return nil
}
