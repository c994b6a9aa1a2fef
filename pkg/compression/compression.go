package compression

import (
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
)

// Codec is a stream compression scheme wrapped around a tar container.
type Codec struct {
	// Name is the tarfile-style mode suffix ("gz", "bz2").
	Name string

	NewReader func(r io.Reader) (io.ReadCloser, error)
	NewWriter func(w io.Writer) (io.WriteCloser, error)
}

var Gzip = Codec{
	Name: "gz",
	NewReader: func(r io.Reader) (io.ReadCloser, error) {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		return zr, nil
	},
	NewWriter: func(w io.Writer) (io.WriteCloser, error) {
		return gzip.NewWriter(w), nil
	},
}

var Bzip2 = Codec{
	Name: "bz2",
	NewReader: func(r io.Reader) (io.ReadCloser, error) {
		br, err := bzip2.NewReader(r, nil)
		if err != nil {
			return nil, fmt.Errorf("open bzip2 stream: %w", err)
		}
		return br, nil
	},
	NewWriter: func(w io.Writer) (io.WriteCloser, error) {
		bw, err := bzip2.NewWriter(w, nil)
		if err != nil {
			return nil, fmt.Errorf("create bzip2 stream: %w", err)
		}
		return bw, nil
	},
}

// Mode returns the tarfile-style open mode, e.g. "r:gz" or "w:bz2".
func (c Codec) Mode(op string) string {
	return op + ":" + c.Name
}

// SourceReader wraps the raw archive stream and remembers the first error
// it returned, so that decoder failures can be told apart from I/O failures
// of the underlying file.
type SourceReader struct {
	r   io.Reader
	n   int64
	err error
}

func NewSourceReader(r io.Reader) *SourceReader {
	return &SourceReader{r: r}
}

func (s *SourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	s.n += int64(n)
	if err != nil && err != io.EOF && s.err == nil {
		s.err = err
	}
	return n, err
}

// Err returns the first non-EOF error of the underlying stream.
func (s *SourceReader) Err() error {
	return s.err
}

// BytesRead returns the number of raw bytes consumed so far.
func (s *SourceReader) BytesRead() int64 {
	return s.n
}
