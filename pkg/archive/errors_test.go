package archive

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackError(t *testing.T) {
	type testcase struct {
		err      error
		kind     error
		expected string
	}

	testcases := map[string]testcase{
		"unknown format": {
			err:      unknownFormat("notes.tgz"),
			kind:     ErrUnknownFormat,
			expected: "unknown compression format: notes.tgz",
		},
		"invalid archive": {
			err:      invalidArchive("a.tgz", io.ErrUnexpectedEOF, "entry pkg/a"),
			kind:     ErrInvalidArchive,
			expected: "invalid archive: a.tgz: entry pkg/a: unexpected EOF",
		},
		"multiple top levels": {
			err:      &PackError{Kind: ErrMultipleTopLevels, Paths: []string{"a", "b"}},
			kind:     ErrMultipleTopLevels,
			expected: "more than one top levels: a, b",
		},
		"path not found": {
			err:      pathNotFound("missing.txt"),
			kind:     ErrPathNotFound,
			expected: "path does not exist: missing.txt",
		},
		"not supported": {
			err:      notSupported("pack: zip not supported"),
			kind:     ErrNotSupported,
			expected: "not supported: pack: zip not supported",
		},
	}

	for name, tc := range testcases {
		t.Run(name, func(t *testing.T) {
			require.EqualError(t, tc.err, tc.expected)
			require.ErrorIs(t, tc.err, tc.kind)
			require.NotErrorIs(t, tc.err, ErrInvalidArgument)

			var packErr *PackError
			require.True(t, errors.As(tc.err, &packErr))
			require.Equal(t, tc.kind, packErr.Kind)
		})
	}
}

func TestPackError_Cause(t *testing.T) {
	err := invalidArchive("a.zip", io.ErrUnexpectedEOF, "")
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	require.ErrorIs(t, err, ErrInvalidArchive)
}

func TestInvalidArgument(t *testing.T) {
	err := invalidArgument("%s is not a directory", "dest")
	require.ErrorIs(t, err, ErrInvalidArgument)
	require.EqualError(t, err, "invalid argument: dest is not a directory")
}
