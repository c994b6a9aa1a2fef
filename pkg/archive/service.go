package archive

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/acronis/go-applib/internal/pkg/slogex"
	"github.com/acronis/go-applib/pkg/archiver"
	"github.com/acronis/go-applib/pkg/filesys"
)

// Service unpacks and packs archives. The zero configuration, New(), extracts
// straight into the destination without limits. A Service holds no per-call
// state and is safe for concurrent use.
type Service struct {
	maxFileSize int64
	staging     bool
	exclude     []string
}

type Option func(*Service)

// WithMaxFileSize rejects archives holding a file larger than n bytes.
// n <= 0 means no limit.
func WithMaxFileSize(n int64) Option {
	return func(s *Service) {
		s.maxFileSize = n
	}
}

// WithStaging extracts into a hidden directory next to the destination first
// and moves the top-level directory into place only when extraction succeeded.
func WithStaging() Option {
	return func(s *Service) {
		s.staging = true
	}
}

// WithExclude leaves out of packed directories every entry matching one of the
// doublestar patterns. A pattern without "/" also matches base names at any depth.
func WithExclude(patterns ...string) Option {
	return func(s *Service) {
		s.exclude = append(s.exclude, patterns...)
	}
}

func New(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Detect returns the format of filename, trying zip, gzip-tar and bzip2-tar in this order.
func (s *Service) Detect(filename string) (Format, error) {
	if !filesys.IsFile(filename) {
		return 0, invalidArgument("%s is not a regular file", filename)
	}
	v, err := s.detect(filename)
	if err != nil {
		return 0, err
	}
	return v.format, nil
}

func (s *Service) detect(filename string) (variant, error) {
	// probes swallow errors, surface an unreadable file before running them
	f, err := os.Open(filename)
	if err != nil {
		return variant{}, fmt.Errorf("open archive: %w", err)
	}
	f.Close()

	return detect(filename)
}

// Unpack extracts filename into destDir and returns the absolute path of the
// single top-level directory of the archive together with its format.
// An empty destDir means the working directory.
func (s *Service) Unpack(filename string, destDir string) (string, Format, error) {
	if destDir == "" {
		destDir = "."
	}
	if !filesys.IsFile(filename) {
		return "", 0, invalidArgument("%s is not a regular file", filename)
	}
	if !filesys.IsDir(destDir) {
		return "", 0, invalidArgument("%s is not a directory", destDir)
	}

	destDir, err := filepath.Abs(destDir)
	if err != nil {
		return "", 0, fmt.Errorf("resolve destination: %w", err)
	}

	v, err := s.detect(filename)
	if err != nil {
		return "", 0, err
	}

	slog.Debug("Unpacking archive",
		slog.String("archive", filename),
		slog.String("format", v.format.String()),
		slog.String("destination", destDir))

	var dir string
	if s.staging {
		dir, err = s.unpackStaged(v, filename, destDir)
	} else {
		dir, err = s.extract(v, filename, destDir)
	}
	if err != nil {
		return "", 0, err
	}
	return dir, v.format, nil
}

func (s *Service) extract(v variant, filename string, destDir string) (string, error) {
	x := newExtractor(filename, destDir, s.maxFileSize)
	names, err := v.reader.extract(filename, x)
	if err != nil {
		return "", err
	}
	return possibleDirName(filename, destDir, names, x.skipped())
}

func (s *Service) unpackStaged(v variant, filename string, destDir string) (string, error) {
	staging, err := os.MkdirTemp(destDir, ".unpack-*")
	if err != nil {
		return "", fmt.Errorf("create staging directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			slog.Warn("Failed to remove staging directory", slog.String("path", staging), slogex.Error(err))
		}
	}()

	dir, err := s.extract(v, filename, staging)
	if err != nil {
		return "", err
	}

	final := filepath.Join(destDir, filepath.Base(dir))
	if err := filesys.ReplaceWithMove(dir, final); err != nil {
		return "", fmt.Errorf("move %s into place: %w", filepath.Base(dir), err)
	}
	return final, nil
}

// Pack writes files into a new archive filename of the given format. Files are
// either relative to baseDir or absolute paths below it, and are stored under
// their path relative to baseDir. An existing filename is replaced.
func (s *Service) Pack(filename string, files []string, baseDir string, format Format) error {
	if !filesys.IsDir(baseDir) {
		return invalidArgument("%s is not a directory", baseDir)
	}
	v, ok := lookup(format)
	if !ok {
		return invalidArgument("unknown format %v, must be one of %s", format, strings.Join(FormatNames(), ","))
	}

	baseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return fmt.Errorf("resolve base directory: %w", err)
	}
	output, err := filepath.Abs(filename)
	if err != nil {
		return fmt.Errorf("resolve output: %w", err)
	}
	if filesys.IsDir(output) {
		return invalidArgument("output %s is a directory", filename)
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := relativeTo(baseDir, f)
		if err != nil {
			return err
		}
		paths = append(paths, rel)
	}

	excludeFn, err := s.excludeFunc(baseDir, output)
	if err != nil {
		return err
	}

	if err := filesys.Remove(output); err != nil {
		return fmt.Errorf("remove existing archive: %w", err)
	}

	if err := v.writer.pack(baseDir, paths, output, excludeFn); err != nil {
		return err
	}

	slog.Debug("Archive packed",
		slog.String("archive", output),
		slog.String("format", v.format.String()),
		slog.Int("paths", len(paths)))
	return nil
}

func relativeTo(baseDir string, file string) (string, error) {
	rel := filepath.Clean(file)
	if filepath.IsAbs(file) {
		var err error
		if rel, err = filepath.Rel(baseDir, file); err != nil {
			return "", invalidArgument("%s is not below %s", file, baseDir)
		}
	}
	if !filepath.IsLocal(rel) {
		return "", invalidArgument("%s is not below %s", file, baseDir)
	}
	return rel, nil
}

// excludeFunc skips the archive being written and everything matching the
// configured patterns.
func (s *Service) excludeFunc(baseDir string, output string) (archiver.ExcludeFunc, error) {
	for _, pattern := range s.exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, invalidArgument("bad exclude pattern %q", pattern)
		}
	}

	var self string
	if rel, err := filepath.Rel(baseDir, output); err == nil && filepath.IsLocal(rel) {
		self = filepath.ToSlash(rel)
	}

	return func(relPath string, d fs.DirEntry) error {
		if relPath == self {
			return archiver.SkipFile
		}
		for _, pattern := range s.exclude {
			if !matchExclude(pattern, relPath) {
				continue
			}
			if d.IsDir() {
				return archiver.SkipDir
			}
			return archiver.SkipFile
		}
		return nil
	}, nil
}

func matchExclude(pattern string, relPath string) bool {
	if ok, _ := doublestar.Match(pattern, relPath); ok {
		return true
	}
	if strings.Contains(pattern, "/") {
		return false
	}
	ok, _ := doublestar.Match(pattern, path.Base(relPath))
	return ok
}

var defaultService = New()

// Unpack extracts filename into destDir with the default Service.
func Unpack(filename string, destDir string) (string, Format, error) {
	return defaultService.Unpack(filename, destDir)
}

// Pack writes files into filename with the default Service.
func Pack(filename string, files []string, baseDir string, format Format) error {
	return defaultService.Pack(filename, files, baseDir, format)
}

func Detect(filename string) (Format, error) {
	return defaultService.Detect(filename)
}
