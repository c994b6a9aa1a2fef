package testsupp

import (
	"archive/tar"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"

	"github.com/acronis/go-applib/pkg/compression"
)

// Entry describes one archive member for the fixture builders.
type Entry struct {
	Name string
	Body string
	// Mode holds permission bits; zero means 0o755 for directories and 0o644 otherwise.
	Mode fs.FileMode
	Dir  bool
	// Link makes the entry a symlink to Link.
	Link string
	// HardLink makes the entry a hard link to the member named HardLink (tar only).
	HardLink string
	// Type overrides the tar type flag, e.g. tar.TypeFifo.
	Type byte
}

var fixtureTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func (e Entry) mode() fs.FileMode {
	switch {
	case e.Mode != 0:
		return e.Mode
	case e.Dir:
		return 0o755
	}
	return 0o644
}

// WriteTar creates a tar archive at p compressed with codec.
func WriteTar(t *testing.T, p string, codec compression.Codec, entries ...Entry) {
	t.Helper()

	f, err := os.Create(p)
	require.NoError(t, err)
	defer f.Close()

	cw, err := codec.NewWriter(f)
	require.NoError(t, err)
	tw := tar.NewWriter(cw)

	for _, e := range entries {
		if e.Type == tar.TypeXGlobalHeader {
			// only PAX records may be set on a global header
			require.NoError(t, tw.WriteHeader(&tar.Header{
				Name:       e.Name,
				Typeflag:   e.Type,
				PAXRecords: map[string]string{"comment": e.Body},
				Format:     tar.FormatPAX,
			}))
			continue
		}

		hdr := &tar.Header{
			Name:    e.Name,
			Mode:    int64(e.mode()),
			ModTime: fixtureTime,
			Format:  tar.FormatPAX,
		}
		switch {
		case e.Type != 0:
			hdr.Typeflag = e.Type
		case e.Dir:
			hdr.Typeflag = tar.TypeDir
		case e.Link != "":
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.Link
		case e.HardLink != "":
			hdr.Typeflag = tar.TypeLink
			hdr.Linkname = e.HardLink
		default:
			hdr.Typeflag = tar.TypeReg
			hdr.Size = int64(len(e.Body))
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if hdr.Typeflag == tar.TypeReg {
			_, err = tw.Write([]byte(e.Body))
			require.NoError(t, err)
		}
	}

	require.NoError(t, tw.Close())
	require.NoError(t, cw.Close())
}

// WriteZip creates a zip archive at p.
func WriteZip(t *testing.T, p string, entries ...Entry) {
	t.Helper()

	f, err := os.Create(p)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.Name, Method: zip.Deflate, Modified: fixtureTime}
		body := e.Body
		switch {
		case e.Dir:
			hdr.SetMode(fs.ModeDir | e.mode())
			hdr.Method = zip.Store
		case e.Link != "":
			hdr.SetMode(fs.ModeSymlink | 0o777)
			body = e.Link
		default:
			hdr.SetMode(e.mode())
		}
		w, err := zw.CreateHeader(hdr)
		require.NoError(t, err)
		if !e.Dir {
			_, err = w.Write([]byte(body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
}

// WriteCompressed writes data through codec into a new file at p.
func WriteCompressed(t *testing.T, p string, codec compression.Codec, data []byte) {
	t.Helper()

	f, err := os.Create(p)
	require.NoError(t, err)
	defer f.Close()

	cw, err := codec.NewWriter(f)
	require.NoError(t, err)
	_, err = cw.Write(data)
	require.NoError(t, err)
	require.NoError(t, cw.Close())
}

// InitTestFiles creates files below root, keyed by slash-separated relative path.
// Keys ending in "/" create empty directories.
func InitTestFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for name, body := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if name[len(name)-1] == '/' {
			require.NoError(t, os.MkdirAll(p, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
}

// ReadTestFiles returns the content of every regular file below root keyed by
// slash-separated relative path.
func ReadTestFiles(t *testing.T, root string) map[string]string {
	t.Helper()

	files := make(map[string]string)
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return err
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(b)
		return nil
	})
	require.NoError(t, err)
	return files
}
