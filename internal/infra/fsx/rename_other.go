//go:build !linux

package fsx

func renameNoReplace(src, dst string) error {
	return renameCheckThenMove(src, dst)
}
