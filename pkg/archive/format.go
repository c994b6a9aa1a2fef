package archive

import (
	"fmt"
	"strings"

	"github.com/acronis/go-applib/pkg/archiver"
	"github.com/acronis/go-applib/pkg/compression"
)

// Format is an archive format variant.
type Format int

const (
	FormatZip Format = iota + 1
	FormatGzipTar
	FormatBzip2Tar
)

func (f Format) String() string {
	switch f {
	case FormatZip:
		return "zip"
	case FormatGzipTar:
		return "tgz"
	case FormatBzip2Tar:
		return "bz2"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat accepts the format tags ("zip", "tgz", "bz2") and a few
// common spellings of them.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "zip":
		return FormatZip, nil
	case "tgz", "tar.gz", "gz", "gzip":
		return FormatGzipTar, nil
	case "bz2", "tbz2", "tbz", "tar.bz2", "bzip2":
		return FormatBzip2Tar, nil
	}
	return 0, invalidArgument("unknown format %q, must be one of %s", s, strings.Join(FormatNames(), ","))
}

type reader interface {
	// valid is a side-effect free probe, it never reports errors.
	valid(filename string) bool
	// extract writes every member below x's destination and returns the
	// normalized names of the extracted members.
	extract(filename string, x *extractor) ([]string, error)
}

type writer interface {
	pack(baseDir string, paths []string, output string, excludeFn archiver.ExcludeFunc) error
}

type variant struct {
	format Format
	reader reader
	writer writer
}

// variants is probed in order, zip first: a zip file is never mistaken for a
// compressed tar but the other way round is not guaranteed.
var variants = []variant{
	{format: FormatZip, reader: zipReader{}, writer: zipPacker{}},
	{format: FormatGzipTar, reader: tarReader{codec: compression.Gzip}, writer: tarPacker{codec: compression.Gzip}},
	{format: FormatBzip2Tar, reader: tarReader{codec: compression.Bzip2}, writer: tarPacker{codec: compression.Bzip2}},
}

// Formats returns the supported formats in probing order.
func Formats() []Format {
	formats := make([]Format, 0, len(variants))
	for _, v := range variants {
		formats = append(formats, v.format)
	}
	return formats
}

func FormatNames() []string {
	names := make([]string, 0, len(variants))
	for _, v := range variants {
		names = append(names, v.format.String())
	}
	return names
}

func lookup(f Format) (variant, bool) {
	for _, v := range variants {
		if v.format == f {
			return v, true
		}
	}
	return variant{}, false
}

func detect(filename string) (variant, error) {
	for _, v := range variants {
		if v.reader.valid(filename) {
			return v, nil
		}
	}
	return variant{}, unknownFormat(filename)
}
