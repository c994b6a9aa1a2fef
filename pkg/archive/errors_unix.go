//go:build unix

package archive

import (
	"errors"

	"golang.org/x/sys/unix"
)

// isDuplicateErr reports the errors a second entry for an already extracted
// path produces when the kinds differ (EEXIST is covered by fs.ErrExist).
func isDuplicateErr(err error) bool {
	return errors.Is(err, unix.ENOTDIR) || errors.Is(err, unix.EISDIR)
}

func isSpecialNameErr(error) bool {
	return false
}

func specialName(string) bool {
	return false
}
