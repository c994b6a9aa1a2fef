package archive

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownFormat     = errors.New("unknown compression format")
	ErrInvalidArchive    = errors.New("invalid archive")
	ErrNoContents        = errors.New("has no contents")
	ErrMultipleTopLevels = errors.New("more than one top levels")
	ErrSingleFileArchive = errors.New("contains a single file")
	ErrPathNotFound      = errors.New("path does not exist")
	ErrNotSupported      = errors.New("not supported")

	// ErrInvalidArgument marks caller misuse (a destination that is not a
	// directory, an unknown format tag). It is never produced by archive content.
	ErrInvalidArgument = errors.New("invalid argument")
)

// PackError is a failure during pack or unpack caused by the archive itself or
// by the requested paths. Kind is one of the Err* sentinels above.
type PackError struct {
	Kind  error
	Path  string
	Paths []string
	Msg   string
	Err   error
}

func (e *PackError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	switch {
	case len(e.Paths) > 0:
		fmt.Fprintf(&b, ": %s", strings.Join(e.Paths, ", "))
	case e.Path != "":
		fmt.Fprintf(&b, ": %s", e.Path)
	}
	if e.Msg != "" {
		fmt.Fprintf(&b, ": %s", e.Msg)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *PackError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func unknownFormat(filename string) error {
	return &PackError{Kind: ErrUnknownFormat, Path: filename}
}

func invalidArchive(filename string, err error, msg string) error {
	return &PackError{Kind: ErrInvalidArchive, Path: filename, Msg: msg, Err: err}
}

func pathNotFound(pth string) error {
	return &PackError{Kind: ErrPathNotFound, Path: pth}
}

func notSupported(msg string) error {
	return &PackError{Kind: ErrNotSupported, Msg: msg}
}
