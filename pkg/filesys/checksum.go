package filesys

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/rogpeppe/go-internal/dirhash"
	"github.com/zeebo/xxh3"
)

// hashXXH3 is a dirhash.Hash: one "<sum>  <name>" line per file in name
// order, the whole listing hashed again. It is xxh3 rather than dirhash's
// sha256 because the sums are only compared between runs of applib.
func hashXXH3(files []string, open func(string) (io.ReadCloser, error)) (string, error) {
	h := xxh3.New()
	files = append([]string(nil), files...)
	sort.Strings(files)
	for _, file := range files {
		if strings.Contains(file, "\n") {
			return "", errors.New("dirhash: filenames with newlines are not supported")
		}
		r, err := open(file)
		if err != nil {
			return "", err
		}
		hf := xxh3.New()
		_, err = io.Copy(hf, r)
		r.Close()
		if err != nil {
			return "", err
		}
		fmt.Fprintf(h, "%x  %s\n", hf.Sum(nil), file)
	}
	return "xxh3:" + base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}

// ComputeFileChecksum hashes a single file. `applib pack` prints it for the
// archive it wrote so that a later unpack can be matched against it.
func ComputeFileChecksum(filePath string) (string, error) {
	sum, err := hashXXH3([]string{filePath}, func(name string) (io.ReadCloser, error) {
		return os.Open(name)
	})
	if err != nil {
		return "", fmt.Errorf("checksum %s: %w", filePath, err)
	}
	slog.Debug("Checksum created", slog.String("path", filePath), slog.String("sum", sum))
	return sum, nil
}

// ComputeDirectoryHash hashes the names and contents of every file below dir.
// `applib unpack` prints it for the extracted tree, and two extractions of the
// same archive produce the same hash whatever the format.
func ComputeDirectoryHash(dir string) (string, error) {
	sum, err := dirhash.HashDir(dir, "", hashXXH3)
	if err != nil {
		return "", fmt.Errorf("hash directory %s: %w", dir, err)
	}
	return sum, nil
}
