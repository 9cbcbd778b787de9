package avcore

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	quarantineSuffix = ".quarantine"
	manifestName     = ".manifest"
)

// Vault is an atomic move-in/move-out store with collision-safe naming
// and attribute restoration (C5). No operation deletes an original
// without a durable copy existing in the vault first.
//
// The basename-only naming scheme spec §3 describes
// (<original-basename>.quarantine) cannot by itself recover the original
// directory of a file — two files named report.docx from different
// folders are indistinguishable by name alone. This vault resolves that
// with a single sidecar manifest file (entry name -> original absolute
// path) kept in the vault directory; List/Restore/RestoreAll still operate
// purely off the <name>.quarantine files spec §4.5 describes, the
// manifest is consulted only to recover Restore's destination.
type Vault struct {
	Dir string
	Log Logger

	mu       sync.Mutex
	original map[string]string // entry name -> original absolute path
}

// NewVault creates (if necessary) and returns a Vault rooted at dir.
func NewVault(dir string, log Logger) (*Vault, error) {
	if log == nil {
		log = noopLogger{}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errIO("mkdir", dir, err)
	}
	v := &Vault{Dir: dir, Log: log, original: make(map[string]string)}
	if err := v.loadManifest(); err != nil {
		return nil, err
	}
	return v, nil
}

// Quarantine moves path into the vault as <basename>.quarantine,
// disambiguating with _<n> before the extension on collision (smallest
// n >= 1 not already taken). The move is a rename when source and vault
// share a filesystem; otherwise it copies, fsyncs, and only then unlinks
// the source, surfacing any failure before the unlink (spec §4.5).
func (v *Vault) Quarantine(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errNotFound(path)
		}
		return "", errIO("stat", path, err)
	}
	if info.IsDir() {
		return "", errState("quarantine", "path is a directory")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	v.mu.Lock()
	defer v.mu.Unlock()

	entryName := base + quarantineSuffix
	target := filepath.Join(v.Dir, entryName)
	n := 1
	for {
		if _, err := os.Stat(target); os.IsNotExist(err) {
			break
		}
		entryName = fmt.Sprintf("%s_%d%s%s", stem, n, ext, quarantineSuffix)
		target = filepath.Join(v.Dir, entryName)
		n++
	}

	if err := renameOrCopy(path, target); err != nil {
		return "", err
	}

	v.original[entryName] = absPath
	if err := v.saveManifestLocked(); err != nil {
		v.Log.Warn("manifest write failed", "entry", entryName, "err", err)
	}

	v.Log.Info("quarantined", "source", path, "entry", entryName)
	return entryName, nil
}

// List returns the names currently present in the vault.
func (v *Vault) List() ([]string, error) {
	entries, err := os.ReadDir(v.Dir)
	if err != nil {
		return nil, errIO("readdir", v.Dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || e.Name() == manifestName {
			continue
		}
		if !strings.HasSuffix(e.Name(), quarantineSuffix) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// Restore copies name back to its original location: the manifest's
// recorded original path when known, otherwise derived by stripping the
// .quarantine suffix in the vault's own directory (spec §4.5 fallback).
// If the destination exists, it picks <stem>_restored_<k><ext> with the
// smallest free k. "Normal" file attributes are restored (read-only/
// system/hidden cleared) via the per-platform clearProtectedAttributes.
// The vault entry is removed only after the destination write and
// attribute restore both succeed.
func (v *Vault) Restore(name string) (string, error) {
	if !strings.HasSuffix(name, quarantineSuffix) {
		return "", errState("restore", "not a quarantine entry: "+name)
	}
	source := filepath.Join(v.Dir, name)
	if _, err := os.Stat(source); err != nil {
		if os.IsNotExist(err) {
			return "", errNotFound(source)
		}
		return "", errIO("stat", source, err)
	}

	v.mu.Lock()
	original, known := v.original[name]
	v.mu.Unlock()
	if !known {
		original = filepath.Join(v.Dir, strings.TrimSuffix(name, quarantineSuffix))
	}

	dest := nextFreeRestorePath(original)

	if err := copyFile(source, dest); err != nil {
		return "", err
	}
	if err := clearProtectedAttributes(dest); err != nil {
		os.Remove(dest)
		return "", err
	}
	if err := os.Remove(source); err != nil {
		return "", errIO("remove", source, err)
	}

	v.mu.Lock()
	delete(v.original, name)
	_ = v.saveManifestLocked()
	v.mu.Unlock()

	v.Log.Info("restored", "entry", name, "path", dest)
	return dest, nil
}

// RestoreAll iterates List, restoring each entry and continuing past
// per-entry failures; ok is false if any entry failed.
func (v *Vault) RestoreAll() (ok bool, errs []error) {
	names, err := v.List()
	if err != nil {
		return false, []error{err}
	}
	ok = true
	for _, name := range names {
		if _, rerr := v.Restore(name); rerr != nil {
			ok = false
			errs = append(errs, rerr)
		}
	}
	return ok, errs
}

// loadManifest reads the sidecar entry->original-path index, if present.
// A missing or unreadable manifest is not an error: Restore falls back
// to suffix-stripping for any entry it has no record of.
func (v *Vault) loadManifest() error {
	f, err := os.Open(filepath.Join(v.Dir, manifestName))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return nil
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		idx := strings.IndexByte(line, '\t')
		if idx < 0 {
			continue
		}
		v.original[line[:idx]] = line[idx+1:]
	}
	return nil
}

// saveManifestLocked rewrites the manifest in full. Caller must hold v.mu.
func (v *Vault) saveManifestLocked() error {
	tmp := filepath.Join(v.Dir, manifestName+".tmp")
	f, err := os.Create(tmp)
	if err != nil {
		return errIO("create", tmp, err)
	}
	w := bufio.NewWriter(f)
	for name, orig := range v.original {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", name, orig); err != nil {
			f.Close()
			os.Remove(tmp)
			return errIO("write", tmp, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return errIO("flush", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errIO("close", tmp, err)
	}
	return os.Rename(tmp, filepath.Join(v.Dir, manifestName))
}

// nextFreeRestorePath returns dest if free, else
// <stem>_restored_<k><ext> for the smallest free k >= 1.
func nextFreeRestorePath(dest string) string {
	if _, err := os.Stat(dest); os.IsNotExist(err) {
		return dest
	}
	dir := filepath.Dir(dest)
	base := filepath.Base(dest)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for k := 1; ; k++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_restored_%d%s", stem, k, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// renameOrCopy performs an os.Rename when possible; if the rename fails
// for any reason (typically a cross-device move) it falls back to
// copy+fsync+unlink, surfacing any failure before removing the source
// (spec §4.5).
func renameOrCopy(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return errIO("remove", src, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errIO("open", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errIO("mkdir", filepath.Dir(dst), err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return errIO("create", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return errIO("copy", dst, err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(dst)
		return errIO("fsync", dst, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return errIO("close", dst, err)
	}
	return nil
}
