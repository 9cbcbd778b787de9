package avcore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T) (*Pipeline, Config, *Vault) {
	t.Helper()
	dir := t.TempDir()
	cfg := NewConfig(
		WithSignatureDBPath(filepath.Join(dir, "signatures.db")),
		WithQuarantineDir(filepath.Join(dir, "quarantine")),
	)
	sigs, err := NewSignatureStore(cfg.SignatureDBPath)
	require.NoError(t, err)
	vault, err := NewVault(cfg.QuarantineDir, nil)
	require.NoError(t, err)
	return NewPipeline(sigs, vault, cfg, nil), cfg, vault
}

func TestScanFile_SignatureHit(t *testing.T) {
	p, _, _ := newTestPipeline(t)
	path := filepath.Join(t.TempDir(), "malware.bin")
	require.NoError(t, os.WriteFile(path, []byte("totally harmless"), 0o644))

	fp, err := HashFile(path, SHA256, p.Cfg.ScanBufferSize)
	require.NoError(t, err)
	require.NoError(t, p.Sigs.Add(fp))

	verdict := p.ScanFile(path)
	require.Equal(t, Malicious, verdict.Status)
	require.Equal(t, SignatureHit, verdict.Tag)
}

func TestScanFile_CleanFile(t *testing.T) {
	p, _, _ := newTestPipeline(t)
	path := filepath.Join(t.TempDir(), "benign.txt")
	require.NoError(t, os.WriteFile(path, []byte("a perfectly ordinary file"), 0o644))

	verdict := p.ScanFile(path)
	require.Equal(t, Clean, verdict.Status)
	require.NotEmpty(t, verdict.ScanID.String())
}

func TestScanFile_MissingFile(t *testing.T) {
	p, _, _ := newTestPipeline(t)
	verdict := p.ScanFile(filepath.Join(t.TempDir(), "missing"))
	require.Equal(t, Error, verdict.Status)

	code, ok := CodeOf(verdict.Err)
	require.True(t, ok)
	require.Equal(t, CodeNotFound, code)
}

func TestScanFile_Directory(t *testing.T) {
	p, _, _ := newTestPipeline(t)
	verdict := p.ScanFile(t.TempDir())
	require.Equal(t, Error, verdict.Status)
}

func TestScanFile_OversizeSkippedAsClean(t *testing.T) {
	p, cfg, _ := newTestPipeline(t)
	_ = cfg
	p.Cfg.MaxFileSize = 4

	path := filepath.Join(t.TempDir(), "toolarge.bin")
	require.NoError(t, os.WriteFile(path, []byte("this file is definitely bigger than 4 bytes"), 0o644))

	verdict := p.ScanFile(path)
	require.Equal(t, Clean, verdict.Status)
}

func TestScanFile_HighEntropyTag(t *testing.T) {
	p, _, _ := newTestPipeline(t)
	p.Cfg.PipelineEntropyThreshold = 0.0

	path := filepath.Join(t.TempDir(), "anything.bin")
	require.NoError(t, os.WriteFile(path, []byte("not actually random but threshold is zero"), 0o644))

	verdict := p.ScanFile(path)
	require.Equal(t, Malicious, verdict.Status)
	require.Equal(t, HighEntropy, verdict.Tag)
}

func TestScanDirectory_QuarantinesMalicious(t *testing.T) {
	p, _, vault := newTestPipeline(t)
	root := t.TempDir()

	clean := filepath.Join(root, "clean.txt")
	require.NoError(t, os.WriteFile(clean, []byte("fine"), 0o644))

	bad := filepath.Join(root, "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte("contains CreateRemoteThread call"), 0o644))

	summary, err := p.ScanDirectory(root)
	require.NoError(t, err)
	require.Equal(t, 2, summary.FilesScanned)
	require.Equal(t, 1, summary.ThreatsFound)

	names, err := vault.List()
	require.NoError(t, err)
	require.Len(t, names, 1)
	require.NoFileExists(t, bad)
}

func TestVerdict_DurationIsRecorded(t *testing.T) {
	p, _, _ := newTestPipeline(t)
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	verdict := p.ScanFile(path)
	require.GreaterOrEqual(t, verdict.Duration, time.Duration(0))
}
