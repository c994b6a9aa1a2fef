//go:build windows

package archive

import (
	"errors"
	"strings"

	"golang.org/x/sys/windows"
)

func isDuplicateErr(err error) bool {
	return errors.Is(err, windows.ERROR_ALREADY_EXISTS) || errors.Is(err, windows.ERROR_FILE_EXISTS)
}

// isSpecialNameErr matches what windows reports when a path component is a
// device name such as "aux" or "con".
func isSpecialNameErr(err error) bool {
	return errors.Is(err, windows.ERROR_DIRECTORY) || errors.Is(err, windows.ERROR_INVALID_NAME)
}

var reservedNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {}, "CONIN$": {}, "CONOUT$": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {}, "COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {}, "LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// specialName reports whether any component of the slash-separated name can
// not be created on windows.
func specialName(name string) bool {
	for _, part := range strings.Split(name, "/") {
		if strings.ContainsAny(part, `<>:"\|?*`) {
			return true
		}
		base, _, _ := strings.Cut(part, ".")
		base = strings.TrimRight(base, " ")
		if _, ok := reservedNames[strings.ToUpper(base)]; ok {
			return true
		}
	}
	return false
}
