package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/acronis/go-applib/pkg/compression"
)

type tarReader struct {
	codec compression.Codec
}

// valid reads the first header. A stream that decodes to nothing is not an archive,
// a stream that decodes to an end-of-archive marker is an empty one.
func (r tarReader) valid(filename string) bool {
	f, err := os.Open(filename)
	if err != nil {
		return false
	}
	defer f.Close()

	cr, err := r.codec.NewReader(f)
	if err != nil {
		return false
	}
	defer cr.Close()

	decoded := compression.NewSourceReader(cr)
	_, err = tar.NewReader(decoded).Next()
	return err == nil || (errors.Is(err, io.EOF) && decoded.BytesRead() > 0)
}

func (r tarReader) extract(filename string, x *extractor) ([]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open %s archive %s: %w", r.codec.Mode("r"), filename, err)
	}
	defer f.Close()

	src := compression.NewSourceReader(f)
	x.sourceErr = src.Err

	cr, err := r.codec.NewReader(src)
	if err != nil {
		return nil, x.readErr("", err)
	}
	defer cr.Close()

	tr := tar.NewReader(cr)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, x.readErr("", err)
		}
		if hdr.Typeflag == tar.TypeXGlobalHeader {
			continue
		}

		name := normalizeName(hdr.Name)
		if name == "" {
			continue
		}

		ensureReadWriteAccess(hdr)
		mode := hdr.FileInfo().Mode() & (fs.ModePerm | fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky)

		switch hdr.Typeflag {
		case tar.TypeDir:
			err = x.mkdir(name, mode, hdr.ModTime)
		case tar.TypeReg:
			err = x.writeFile(name, mode, hdr.ModTime, hdr.Size, func() (io.ReadCloser, error) {
				return io.NopCloser(tr), nil
			})
		case tar.TypeSymlink:
			err = x.symlink(name, hdr.Linkname)
		case tar.TypeLink:
			err = x.hardlink(name, hdr.Linkname)
		default:
			err = x.skip(name, string(hdr.Typeflag))
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

// ensureReadWriteAccess lets the owner traverse directories and read and
// write everything else. Existing bits are never removed.
func ensureReadWriteAccess(hdr *tar.Header) {
	if hdr.Typeflag == tar.TypeDir {
		hdr.Mode |= dirAccess
		return
	}
	hdr.Mode |= fileAccess
}
