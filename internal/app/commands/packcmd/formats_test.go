package packcmd

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acronis/go-applib/pkg/archive"
)

func TestFormatValue(t *testing.T) {
	f := formatValue(archive.FormatGzipTar)
	require.Equal(t, "tgz", f.String())
	require.Equal(t, "format", f.Type())

	require.NoError(t, f.Set("tar.bz2"))
	require.Equal(t, formatValue(archive.FormatBzip2Tar), f)

	require.ErrorIs(t, f.Set("rar"), archive.ErrInvalidArgument)
	require.Equal(t, "bz2", f.String())
}
