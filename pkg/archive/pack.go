package archive

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/acronis/go-applib/internal/pkg/slogex"
	"github.com/acronis/go-applib/pkg/archiver"
	"github.com/acronis/go-applib/pkg/archiver/tarwriter"
	"github.com/acronis/go-applib/pkg/compression"
	"github.com/acronis/go-applib/pkg/filesys"
)

type tarPacker struct {
	codec compression.Codec
}

// pack writes paths, relative to baseDir, into output. Directories are added
// recursively. A failed pack leaves no output behind.
func (p tarPacker) pack(baseDir string, paths []string, output string, excludeFn archiver.ExcludeFunc) (err error) {
	for _, pth := range paths {
		if !filesys.Exists(filepath.Join(baseDir, pth)) {
			return pathNotFound(pth)
		}
	}

	aw := tarwriter.New(p.codec)
	closer, err := aw.Init(output)
	if err != nil {
		removeOutput(output)
		return fmt.Errorf("init %s archive: %w", p.codec.Mode("w"), err)
	}
	defer func() {
		if closeErr := closer.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close archive: %w", closeErr)
		}
		if err != nil {
			removeOutput(output)
		}
	}()

	for _, pth := range paths {
		info, err := os.Lstat(filepath.Join(baseDir, pth))
		if err != nil {
			return fmt.Errorf("get file info: %w", err)
		}
		if info.IsDir() {
			err = aw.WriteDirectory(baseDir, pth, excludeFn)
		} else {
			err = aw.WriteFile(baseDir, pth)
		}
		if err != nil {
			return fmt.Errorf("add %s: %w", pth, err)
		}
	}
	return nil
}

func removeOutput(output string) {
	if err := filesys.Remove(output); err != nil {
		slog.Warn("Failed to remove partial archive", slog.String("path", output), slogex.Error(err))
	}
}

type zipPacker struct{}

func (zipPacker) pack(string, []string, string, archiver.ExcludeFunc) error {
	return notSupported("pack: zip not supported")
}
