package avmonitor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jonknoxdotcom/shaman-av/internal/avcore"
)

func TestIsExcludedPath(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{filepath.FromSlash("/home/user/docs/report.txt"), false},
		{filepath.FromSlash("/home/user/AppData/Local/thing.exe"), true},
		{filepath.FromSlash("/home/user/project/.git/HEAD"), true},
		{filepath.FromSlash("/home/user/project/node_modules/pkg/index.js"), true},
		{filepath.FromSlash("/home/user/logs/scan_results.log"), true},
		{filepath.FromSlash("/data/signatures.db"), true},
		{filepath.FromSlash("/opt/app/libfoo.dll"), true},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, isExcludedPath(tc.path), tc.path)
	}
}

func TestHighRiskExtensions(t *testing.T) {
	require.True(t, highRiskExtensions[".exe"])
	require.True(t, highRiskExtensions[".ps1"])
	require.True(t, highRiskExtensions[".application"])
	require.False(t, highRiskExtensions[".txt"])
}

func newTestMonitor(t *testing.T) (*Monitor, avcore.Config) {
	t.Helper()
	dir := t.TempDir()
	cfg := avcore.NewConfig(
		avcore.WithSignatureDBPath(filepath.Join(dir, "signatures.db")),
		avcore.WithQuarantineDir(filepath.Join(dir, "quarantine")),
		avcore.WithMonitorPollInterval(5*time.Millisecond),
	)
	sigs, err := avcore.NewSignatureStore(cfg.SignatureDBPath)
	require.NoError(t, err)
	vault, err := avcore.NewVault(cfg.QuarantineDir, nil)
	require.NoError(t, err)
	pipeline := avcore.NewPipeline(sigs, vault, cfg, nil)
	return NewMonitor(pipeline, vault, cfg, nil), cfg
}

func TestMonitor_StartStopIsIdempotent(t *testing.T) {
	m, _ := newTestMonitor(t)
	root := t.TempDir()

	require.NoError(t, m.Start(root))
	require.Equal(t, Running, m.State())
	require.NoError(t, m.Start(root), "a second Start must be a no-op")
	require.Equal(t, Running, m.State())

	require.NoError(t, m.Stop())
	require.Equal(t, Idle, m.State())
	require.NoError(t, m.Stop(), "a second Stop must be a no-op")
}

func TestMonitor_QuarantinesNewMaliciousFile(t *testing.T) {
	m, _ := newTestMonitor(t)
	root := t.TempDir()

	require.NoError(t, m.Start(root))
	defer m.Stop()

	path := filepath.Join(root, "bad.txt")
	require.NoError(t, os.WriteFile(path, []byte("contains CreateRemoteThread"), 0o644))

	require.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return os.IsNotExist(err)
	}, 2*time.Second, 20*time.Millisecond, "malicious file should be quarantined")
}
