//go:build !unix

package utils

import "io/fs"

// FileID identifies a file by device and inode.
type FileID struct {
	Dev uint64
	Ino uint64
}

// StatFileID reports no identity; callers fall back to resolved paths.
func StatFileID(fs.FileInfo) (FileID, bool) { return FileID{}, false }
