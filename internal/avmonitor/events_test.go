package avmonitor

import (
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"
)

func TestFromFSNotify_Classification(t *testing.T) {
	cases := []struct {
		name string
		op   fsnotify.Op
		ok   bool
		kind Kind
	}{
		{"create", fsnotify.Create, true, Created},
		{"write", fsnotify.Write, true, Modified},
		{"rename", fsnotify.Rename, true, Renamed},
		{"chmod", fsnotify.Chmod, true, AttributesChanged},
		{"remove is dropped", fsnotify.Remove, false, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev, ok := fromFSNotify(fsnotify.Event{Name: "file.txt", Op: tc.op})
			require.Equal(t, tc.ok, ok)
			if ok {
				require.Equal(t, tc.kind, ev.Kind)
			}
		})
	}
}

func TestFromFSNotify_PathIsAbsolute(t *testing.T) {
	ev, ok := fromFSNotify(fsnotify.Event{Name: "relative.txt", Op: fsnotify.Write})
	require.True(t, ok)
	require.True(t, filepath.IsAbs(ev.Path))
}

func TestKind_String(t *testing.T) {
	require.Equal(t, "Created", Created.String())
	require.Equal(t, "Modified", Modified.String())
	require.Equal(t, "Renamed", Renamed.String())
	require.Equal(t, "AttributesChanged", AttributesChanged.String())
}

func TestWithinRoot(t *testing.T) {
	root := filepath.FromSlash("/watched/root")
	cases := []struct {
		path string
		want bool
	}{
		{filepath.Join(root, "file.txt"), true},
		{filepath.Join(root, "sub", "file.txt"), true},
		{root, true},
		{filepath.FromSlash("/watched/rootsibling/file.txt"), false},
		{filepath.FromSlash("/elsewhere/file.txt"), false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, withinRoot(root, tc.path), tc.path)
	}
}
