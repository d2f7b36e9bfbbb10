//go:build unix

package utils

import (
	"io/fs"
	"syscall"
)

// FileID identifies a file by device and inode.
type FileID struct {
	Dev uint64
	Ino uint64
}

// StatFileID returns the device/inode pair of info.
func StatFileID(info fs.FileInfo) (FileID, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return FileID{}, false
	}
	return FileID{Dev: uint64(st.Dev), Ino: uint64(st.Ino)}, true //nolint:unconvert // Dev is int32 on darwin
}
