package archive

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// normalizeName turns a member name into a clean slash-separated relative
// path. Leading "/" and "./" are dropped; "" means the member is the archive
// root itself ("./" entries written by `tar -C dir .`).
func normalizeName(name string) string {
	name = path.Clean(strings.TrimLeft(name, "/"))
	if name == "." {
		return ""
	}
	return name
}

// topLevels returns the distinct first components of names in the order they
// first appear. Member names always use "/", whatever the host separator.
func topLevels(names []string) []string {
	tops := orderedmap.New[string, struct{}]()
	for _, name := range names {
		first, _, _ := strings.Cut(name, "/")
		tops.Set(first, struct{}{})
	}

	result := make([]string, 0, tops.Len())
	for pair := tops.Oldest(); pair != nil; pair = pair.Next() {
		result = append(result, pair.Key)
	}
	return result
}

// possibleDirName returns the directory the archive was extracted into.
// skipped holds the members that were recorded but not written, a lone one of
// them is a single-file archive.
func possibleDirName(filename string, destDir string, names []string, skipped map[string]bool) (string, error) {
	tops := topLevels(names)
	switch {
	case len(tops) == 0:
		return "", &PackError{Kind: ErrNoContents, Path: filename}
	case len(tops) > 1:
		return "", &PackError{Kind: ErrMultipleTopLevels, Paths: tops}
	}

	d := filepath.Join(destDir, filepath.FromSlash(tops[0]))
	if skipped[tops[0]] {
		return "", &PackError{Kind: ErrSingleFileArchive, Path: d}
	}
	info, err := os.Stat(d)
	if err != nil {
		// every name went through the extractor, so this is a bug rather than bad input
		return "", fmt.Errorf("missing extracted directory %s: %w", d, err)
	}
	if !info.IsDir() {
		return "", &PackError{Kind: ErrSingleFileArchive, Path: d}
	}
	return d, nil
}
