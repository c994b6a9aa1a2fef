package packcmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/acronis/go-applib/pkg/archive"
	"github.com/acronis/go-applib/pkg/testsupp"
)

func TestExecute(t *testing.T) {
	base := t.TempDir()
	testsupp.InitTestFiles(t, base, map[string]string{
		"pkg/a.txt":  "a",
		"pkg/b.tmp":  "b",
		"pkg/c/d.go": "package c",
	})

	cfg := viper.New()
	cfg.Set(formatFlag, "bz2")
	cfg.Set(excludeFlag, []string{"*.tmp"})

	out := filepath.Join(t.TempDir(), "pkg.tbz2")
	var buf bytes.Buffer
	require.NoError(t, execute(context.Background(), &buf, cfg, base, out, []string{"pkg"}))
	require.Contains(t, buf.String(), "archive: "+out)
	require.Contains(t, buf.String(), "checksum: xxh3:")

	dir, format, err := archive.Unpack(out, t.TempDir())
	require.NoError(t, err)
	require.Equal(t, archive.FormatBzip2Tar, format)
	require.Equal(t, map[string]string{"a.txt": "a", "c/d.go": "package c"}, testsupp.ReadTestFiles(t, dir))
}

func TestExecute_Zip(t *testing.T) {
	base := t.TempDir()
	testsupp.InitTestFiles(t, base, map[string]string{"pkg/a.txt": "a"})

	cfg := viper.New()
	cfg.Set(formatFlag, "zip")

	err := execute(context.Background(), &bytes.Buffer{}, cfg, base, filepath.Join(base, "pkg.zip"), []string{"pkg"})
	require.ErrorIs(t, err, archive.ErrNotSupported)
}
