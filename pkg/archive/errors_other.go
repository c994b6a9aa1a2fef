//go:build !unix && !windows

package archive

func isDuplicateErr(error) bool {
	return false
}

func isSpecialNameErr(error) bool {
	return false
}

func specialName(string) bool {
	return false
}
