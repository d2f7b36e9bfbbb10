//go:build !linux && !darwin

package utils

import "errors"

// DiskFree is not supported on this platform.
func DiskFree(string) (int64, error) {
	return 0, errors.New("disk free space is not supported on this platform")
}
