//go:build windows

package avcore

import "golang.org/x/sys/windows"

// clearProtectedAttributes restores "normal" file attributes after a
// restore (spec §9): clears hidden, system and read-only bits and
// applies FILE_ATTRIBUTE_NORMAL.
func clearProtectedAttributes(path string) error {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return errIO("attr-convert", path, err)
	}
	if err := windows.SetFileAttributes(p, windows.FILE_ATTRIBUTE_NORMAL); err != nil {
		return errIO("set-attributes", path, err)
	}
	return nil
}
