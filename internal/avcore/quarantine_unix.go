//go:build !windows

package avcore

import "os"

// clearProtectedAttributes restores "normal" file attributes after a
// restore (spec §9): POSIX has no hidden/system bit, so the only
// meaningful clear is dropping any restrictive read-only mode bits a
// quarantined file might have been copied with.
func clearProtectedAttributes(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errIO("stat", path, err)
	}
	mode := info.Mode().Perm() | 0o600
	if err := os.Chmod(path, mode); err != nil {
		return errIO("chmod", path, err)
	}
	return nil
}
