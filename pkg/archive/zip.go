package archive

import (
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/klauspost/compress/zip"
)

// link targets longer than this are not plausible paths
const maxLinkTarget = 4096

type zipReader struct{}

// valid parses the end of central directory record and the central directory.
func (zipReader) valid(filename string) bool {
	// A reader returned next to an error means the directory parsed but some
	// names are insecure. The extractor rejects those.
	zr, _ := zip.OpenReader(filename)
	if zr == nil {
		return false
	}
	zr.Close()
	return true
}

func (zipReader) extract(filename string, x *extractor) ([]string, error) {
	zr, err := zip.OpenReader(filename)
	if zr == nil {
		return nil, x.readErr("", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		name := normalizeName(f.Name)
		if name == "" {
			continue
		}

		mode := f.Mode()
		switch {
		case mode.IsDir() || strings.HasSuffix(f.Name, "/"):
			err = x.mkdir(name, mode.Perm(), f.Modified)
		case mode&fs.ModeSymlink != 0:
			var target string
			if target, err = readZipLink(f); err != nil {
				return nil, x.readErr(name, err)
			}
			err = x.symlink(name, target)
		case mode.IsRegular():
			err = x.writeFile(name, mode.Perm(), f.Modified, int64(f.UncompressedSize64), f.Open)
		default:
			err = x.skip(name, mode.Type().String())
		}
		if err != nil {
			return nil, err
		}
	}

	if err := x.finish(); err != nil {
		return nil, err
	}
	return x.names, nil
}

// readZipLink returns the target of a symlink member, stored as its content.
func readZipLink(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	b, err := io.ReadAll(io.LimitReader(rc, maxLinkTarget+1))
	if err != nil {
		return "", err
	}
	if len(b) > maxLinkTarget {
		return "", fmt.Errorf("link target of %s is too long", f.Name)
	}
	return string(b), nil
}
