package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/acronis/go-applib/internal/pkg/slogex"
	"github.com/acronis/go-applib/pkg/filesys"
)

const (
	// owner bits OR-ed onto every extracted entry
	dirAccess  = 0o700
	fileAccess = 0o600

	// same bound as the kernel's ELOOP
	maxLinkDepth = 40
)

type entryKind int

const (
	kindDir entryKind = iota + 1
	kindFile
	kindLink
	// devices and fifos, recorded but never created
	kindSpecial
)

func (k entryKind) String() string {
	switch k {
	case kindDir:
		return "directory"
	case kindFile:
		return "file"
	case kindLink:
		return "link"
	case kindSpecial:
		return "special file"
	}
	return "entry"
}

type dirAttr struct {
	path  string
	mode  fs.FileMode
	mtime time.Time
}

// extractor materializes archive members below destDir. It is shared by the
// zip and tar readers and keeps track of every path it created so that
// collisions inside one archive are detected whatever the host reports.
type extractor struct {
	archive     string
	destDir     string
	maxFileSize int64

	// sourceErr, when set, returns the first I/O error of the raw archive
	// stream. Decoder errors without one are corruption.
	sourceErr func() error

	seen map[string]entryKind
	// slash-separated targets of the symlinks extracted so far
	links map[string]string
	dirs  []dirAttr
	names []string
}

func newExtractor(archive string, destDir string, maxFileSize int64) *extractor {
	return &extractor{
		archive:     archive,
		destDir:     destDir,
		maxFileSize: maxFileSize,
		seen:        make(map[string]entryKind),
		links:       make(map[string]string),
	}
}

func (x *extractor) invalid(err error, format string, args ...any) error {
	return invalidArchive(x.archive, err, fmt.Sprintf(format, args...))
}

// target checks a normalized member name and returns where it goes on disk.
func (x *extractor) target(name string, kind entryKind) (string, error) {
	if specialName(name) {
		return "", x.invalid(nil, "uses Windows special name (%s)", name)
	}
	if !filepath.IsLocal(filepath.FromSlash(name)) {
		return "", x.invalid(nil, "unsafe path %s", name)
	}

	for dir := path.Dir(name); dir != "."; dir = path.Dir(dir) {
		switch x.seen[dir] {
		case kindLink:
			return "", x.invalid(nil, "%s is below symlink %s", name, dir)
		case kindFile, kindSpecial:
			return "", x.invalid(nil, "duplicate path %s: %s is a file", name, dir)
		}
	}
	if prev, ok := x.seen[name]; ok && prev != kind {
		return "", x.invalid(nil, "duplicate path %s: %s and %s", name, prev, kind)
	}

	p, err := filesys.SecureJoin(x.destDir, filepath.FromSlash(name))
	if err != nil {
		return "", x.invalid(err, "unsafe path %s", name)
	}

	for dir := path.Dir(name); dir != "."; dir = path.Dir(dir) {
		if _, ok := x.seen[dir]; !ok {
			x.seen[dir] = kindDir
		}
	}
	x.seen[name] = kind
	x.names = append(x.names, name)
	return p, nil
}

// writeErr maps a failure to create something on disk. Collisions and names
// the platform refuses are archive faults, everything else is the environment's.
func (x *extractor) writeErr(name string, err error) error {
	switch {
	case isSpecialNameErr(err):
		return x.invalid(err, "uses Windows special name (%s)", name)
	case errors.Is(err, fs.ErrExist), isDuplicateErr(err):
		return x.invalid(err, "duplicate path %s", name)
	}
	return fmt.Errorf("extract %s: %w", name, err)
}

// readErr maps a failure while decoding the archive. I/O errors of the
// archive file propagate, anything the decoders complain about is corruption.
func (x *extractor) readErr(name string, err error) error {
	if x.sourceErr != nil {
		if srcErr := x.sourceErr(); srcErr != nil {
			return fmt.Errorf("read %s: %w", x.archive, srcErr)
		}
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return fmt.Errorf("read %s: %w", x.archive, err)
	}
	if name == "" {
		return x.invalid(err, "")
	}
	return x.invalid(err, "entry %s", name)
}

func (x *extractor) mkdir(name string, mode fs.FileMode, mtime time.Time) error {
	p, err := x.target(name, kindDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(p, os.ModePerm); err != nil {
		return x.writeErr(name, err)
	}
	x.dirs = append(x.dirs, dirAttr{path: p, mode: mode | dirAccess, mtime: mtime})
	return nil
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	n, err := e.w.Write(p)
	if err != nil && e.err == nil {
		e.err = err
	}
	return n, err
}

func (x *extractor) writeFile(name string, mode fs.FileMode, mtime time.Time, size int64, open func() (io.ReadCloser, error)) error {
	if x.maxFileSize > 0 && size > x.maxFileSize {
		return x.invalid(nil, "file too large: %s", name)
	}

	p, err := x.target(name, kindFile)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), os.ModePerm); err != nil {
		return x.writeErr(name, err)
	}
	if err := removeLink(p); err != nil {
		return x.writeErr(name, err)
	}

	src, err := open()
	if err != nil {
		return x.readErr(name, err)
	}
	defer src.Close()

	var r io.Reader = src
	if x.maxFileSize > 0 {
		r = io.LimitReader(src, x.maxFileSize+1)
	}

	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode|fileAccess)
	if err != nil {
		return x.writeErr(name, err)
	}
	dst := &errWriter{w: f}
	n, copyErr := io.Copy(dst, r)
	closeErr := f.Close()
	switch {
	case copyErr != nil && dst.err != nil:
		return x.writeErr(name, copyErr)
	case copyErr != nil:
		return x.readErr(name, copyErr)
	case closeErr != nil:
		return x.writeErr(name, closeErr)
	case x.maxFileSize > 0 && n > x.maxFileSize:
		return x.invalid(nil, "file too large: %s", name)
	}

	// explicit chmod, the umask must not take the owner bits away
	if err := os.Chmod(p, mode|fileAccess); err != nil {
		return fmt.Errorf("chmod %s: %w", p, err)
	}
	if !mtime.IsZero() {
		if err := os.Chtimes(p, mtime, mtime); err != nil {
			return fmt.Errorf("set times %s: %w", p, err)
		}
	}
	return nil
}

func (x *extractor) symlink(name string, linkname string) error {
	p, err := x.target(name, kindLink)
	if err != nil {
		return err
	}
	if !filesys.Within(x.destDir, filepath.Dir(p), filepath.FromSlash(linkname)) {
		return x.invalid(nil, "link %s -> %s escapes destination", name, linkname)
	}
	target := filepath.ToSlash(linkname)
	if _, ok := x.resolveLink(path.Dir(name), target, 0); !ok {
		return x.invalid(nil, "link %s -> %s escapes destination", name, linkname)
	}
	x.links[name] = target
	if err := os.MkdirAll(filepath.Dir(p), os.ModePerm); err != nil {
		return x.writeErr(name, err)
	}
	if err := removeLink(p); err != nil {
		return x.writeErr(name, err)
	}
	if err := os.Symlink(filepath.FromSlash(linkname), p); err != nil {
		return x.writeErr(name, err)
	}
	return nil
}

// resolveLink follows target from dir, both relative to the destination, the
// way the filesystem would: through the symlinks extracted earlier. It reports
// false when the walk leaves the destination or loops.
func (x *extractor) resolveLink(dir string, target string, depth int) (string, bool) {
	if depth > maxLinkDepth || path.IsAbs(target) {
		return "", false
	}

	var parts []string
	if dir != "." && dir != "" {
		parts = strings.Split(dir, "/")
	}
	for _, part := range strings.Split(target, "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(parts) == 0 {
				return "", false
			}
			parts = parts[:len(parts)-1]
			continue
		}

		parts = append(parts, part)
		cur := strings.Join(parts, "/")
		next, ok := x.links[cur]
		if !ok {
			continue
		}
		resolved, ok := x.resolveLink(path.Dir(cur), next, depth+1)
		if !ok {
			return "", false
		}
		parts = nil
		if resolved != "" {
			parts = strings.Split(resolved, "/")
		}
	}
	return strings.Join(parts, "/"), true
}

// hardlink links name to an already extracted regular file of the same archive.
func (x *extractor) hardlink(name string, linkname string) error {
	target := normalizeName(linkname)
	if target == name {
		return x.invalid(nil, "hard link %s -> itself", name)
	}
	if target == "" || x.seen[target] != kindFile {
		return x.invalid(nil, "hard link %s -> %s: no such file in archive", name, linkname)
	}

	p, err := x.target(name, kindFile)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), os.ModePerm); err != nil {
		return x.writeErr(name, err)
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return x.writeErr(name, err)
	}
	if err := os.Link(filepath.Join(x.destDir, filepath.FromSlash(target)), p); err != nil {
		return x.writeErr(name, err)
	}
	return nil
}

// skip records a member that is not materialized, such as a device or a fifo.
// It still counts for the top-level rule.
func (x *extractor) skip(name string, typ string) error {
	if _, err := x.target(name, kindSpecial); err != nil {
		return err
	}
	slog.Debug("Skipping archive member", slog.String("archive", x.archive),
		slog.String("name", name), slog.String("type", typ))
	return nil
}

// skipped returns the members recorded by skip.
func (x *extractor) skipped() map[string]bool {
	skipped := make(map[string]bool)
	for name, kind := range x.seen {
		if kind == kindSpecial {
			skipped[name] = true
		}
	}
	return skipped
}

// finish applies directory modes and times once every entry is written,
// deepest last-created first.
func (x *extractor) finish() error {
	for i := len(x.dirs) - 1; i >= 0; i-- {
		d := x.dirs[i]
		if err := os.Chmod(d.path, d.mode); err != nil {
			return fmt.Errorf("chmod %s: %w", d.path, err)
		}
		if d.mtime.IsZero() {
			continue
		}
		if err := os.Chtimes(d.path, d.mtime, d.mtime); err != nil {
			slog.Debug("Failed to set directory times", slog.String("path", d.path), slogex.Error(err))
		}
	}
	return nil
}

// removeLink removes a symlink left at p by an earlier member. Writes never
// follow links.
func removeLink(p string) error {
	info, err := os.Lstat(p)
	if err != nil || info.Mode()&fs.ModeSymlink == 0 {
		return nil
	}
	return os.Remove(p)
}
