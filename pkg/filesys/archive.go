package filesys

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SecureJoin joins an archive member name onto dest and makes sure the result
// does not escape dest. name is expected to use the host separator.
func SecureJoin(dest string, name string) (string, error) {
	filePath := filepath.Join(dest, filepath.Clean(name))

	// a string prefix check would accept "dest-other"
	relPath, err := filepath.Rel(dest, filePath)
	if err != nil || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid file path: %s", filePath)
	}
	return filePath, nil
}

// Within reports whether target, once joined to dir, stays inside root. The
// check is lexical, links already on disk below dir are not followed.
func Within(root string, dir string, target string) bool {
	if filepath.IsAbs(target) {
		return false
	}
	resolved := filepath.Join(dir, target)
	rel, err := filepath.Rel(root, resolved)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
