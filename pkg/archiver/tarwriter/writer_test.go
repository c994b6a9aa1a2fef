package tarwriter

import (
	"archive/tar"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acronis/go-applib/pkg/archiver"
	"github.com/acronis/go-applib/pkg/compression"
	"github.com/acronis/go-applib/pkg/testsupp"
)

func readTar(t *testing.T, p string, codec compression.Codec) map[string]string {
	t.Helper()

	f, err := os.Open(p)
	require.NoError(t, err)
	defer f.Close()

	cr, err := codec.NewReader(f)
	require.NoError(t, err)
	defer cr.Close()

	entries := make(map[string]string)
	tr := tar.NewReader(cr)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		b, err := io.ReadAll(tr)
		require.NoError(t, err)
		entries[hdr.Name] = string(b)
	}
	return entries
}

func TestTarWriter(t *testing.T) {
	testcases := map[string]compression.Codec{
		"gzip":  compression.Gzip,
		"bzip2": compression.Bzip2,
	}

	for name, codec := range testcases {
		t.Run(name, func(t *testing.T) {
			base := t.TempDir()
			testsupp.InitTestFiles(t, base, map[string]string{
				"mypkg-1.0/setup.py":          "setup()",
				"mypkg-1.0/mypkg/__init__.py": "",
				"mypkg-1.0/build/out.o":       "obj",
				"README":                      "readme",
			})

			out := filepath.Join(t.TempDir(), "out", "mypkg.tar")
			aw := New(codec)
			closer, err := aw.Init(out)
			require.NoError(t, err)

			exclude := func(relPath string, d fs.DirEntry) error {
				if relPath == "mypkg-1.0/build" {
					return archiver.SkipDir
				}
				return nil
			}
			require.NoError(t, aw.WriteDirectory(base, "mypkg-1.0", exclude))
			require.NoError(t, aw.WriteFile(base, "README"))
			require.NoError(t, closer.Close())

			require.Equal(t, map[string]string{
				"mypkg-1.0/":                  "",
				"mypkg-1.0/setup.py":          "setup()",
				"mypkg-1.0/mypkg/":            "",
				"mypkg-1.0/mypkg/__init__.py": "",
				"README":                      "readme",
			}, readTar(t, out, codec))
		})
	}
}

func TestTarWriter_SkipFile(t *testing.T) {
	base := t.TempDir()
	testsupp.InitTestFiles(t, base, map[string]string{
		"pkg/keep.txt": "keep",
		"pkg/drop.log": "drop",
	})

	out := filepath.Join(t.TempDir(), "pkg.tgz")
	aw := New(compression.Gzip)
	closer, err := aw.Init(out)
	require.NoError(t, err)

	require.NoError(t, aw.WriteDirectory(base, "pkg", func(relPath string, d fs.DirEntry) error {
		if filepath.Ext(relPath) == ".log" {
			return archiver.SkipFile
		}
		return nil
	}))
	require.NoError(t, closer.Close())

	require.Equal(t, map[string]string{
		"pkg/":         "",
		"pkg/keep.txt": "keep",
	}, readTar(t, out, compression.Gzip))
}

func TestTarWriter_MissingFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "pkg.tgz")
	aw := New(compression.Gzip)
	closer, err := aw.Init(out)
	require.NoError(t, err)
	defer closer.Close()

	require.Error(t, aw.WriteFile(t.TempDir(), "missing.txt"))
}
