package slogex

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	attr := Error(errors.New("boom"))
	require.Equal(t, "error", attr.Key)
	require.Equal(t, "boom", attr.Value.String())

	require.True(t, Error(nil).Equal(slog.Attr{}))
}
