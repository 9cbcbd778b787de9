// Package avmonitor implements the real-time directory watch (C6): it
// debounces and classifies filesystem events, runs the detection
// pipeline on candidates, and infers ransomware-like burst behavior
// across related files.
package avmonitor

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Kind classifies a FileEvent (spec §3).
type Kind int

const (
	Created Kind = iota
	Modified
	Renamed
	AttributesChanged
)

func (k Kind) String() string {
	switch k {
	case Created:
		return "Created"
	case Modified:
		return "Modified"
	case Renamed:
		return "Renamed"
	case AttributesChanged:
		return "AttributesChanged"
	default:
		return "Unknown"
	}
}

// FileEvent is a normalized, absolute-path filesystem change (spec §3).
type FileEvent struct {
	Path      string
	Kind      Kind
	Timestamp time.Time
}

// fromFSNotify converts an fsnotify.Event into a FileEvent, reporting ok
// = false for operations the spec doesn't classify (e.g. Remove), which
// the monitor drops rather than feeding into the pipeline.
func fromFSNotify(e fsnotify.Event) (FileEvent, bool) {
	abs, err := filepath.Abs(e.Name)
	if err != nil {
		abs = e.Name
	}
	abs = filepath.Clean(abs)

	var kind Kind
	switch {
	case e.Has(fsnotify.Create):
		kind = Created
	case e.Has(fsnotify.Write):
		kind = Modified
	case e.Has(fsnotify.Rename):
		kind = Renamed
	case e.Has(fsnotify.Chmod):
		kind = AttributesChanged
	default:
		return FileEvent{}, false
	}

	return FileEvent{Path: abs, Kind: kind, Timestamp: time.Now()}, true
}

// withinRoot reports whether path is contained within root, per spec §3
// ("the monitor discards events whose path is not within the watched
// root").
func withinRoot(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
