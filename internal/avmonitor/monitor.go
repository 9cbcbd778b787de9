package avmonitor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jonknoxdotcom/shaman-av/internal/avcore"
)

// State is a position in the monitor's lifecycle state machine
// (spec §4.6: Idle -> Starting -> Running -> Stopping -> Idle).
type State int

const (
	Idle State = iota
	Starting
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Starting:
		return "Starting"
	case Running:
		return "Running"
	case Stopping:
		return "Stopping"
	default:
		return "Idle"
	}
}

// readinessRetries bounds the readiness wait spec §4.6 step 1 describes:
// "poll up to 10 times at 100ms intervals". The interval itself is
// Config.MonitorPollInterval.
const readinessRetries = 10

// highRiskExtensions is the closed list from spec §6.
var highRiskExtensions = map[string]bool{
	".exe": true, ".dll": true, ".scr": true, ".bat": true, ".cmd": true,
	".vbs": true, ".js": true, ".ws": true, ".wsf": true, ".wsh": true,
	".ps1": true, ".msi": true, ".msp": true, ".hta": true, ".jar": true,
	".py": true, ".pyw": true, ".com": true, ".msc": true, ".cpl": true,
	".reg": true, ".inf": true, ".scf": true, ".url": true, ".lnk": true,
	".job": true, ".jse": true, ".pif": true, ".application": true,
}

// exclusionTokens is the closed list of system-area substrings spec §6
// names, matched case-insensitively against a forward-slash-normalized
// path.
var exclusionTokens = []string{
	"/windows/", "/program files/", "/programdata/", "/appdata/", "/temp/",
	"/.quarantine", "/logs/", "/system32/", "/syswow64/", ".dll", ".sys",
	"scan_results.log", "signatures.db", "/.git/", "/node_modules/", "/packages/",
}

func isExcludedPath(path string) bool {
	norm := strings.ToLower(strings.ReplaceAll(path, "\\", "/"))
	for _, tok := range exclusionTokens {
		if strings.Contains(norm, tok) {
			return true
		}
	}
	return false
}

// Monitor watches a directory subtree, debounces and classifies events,
// runs the detection pipeline on candidates, and infers ransomware-like
// burst behavior across related files (C6).
type Monitor struct {
	pipeline *avcore.Pipeline
	vault    *avcore.Vault
	cfg      avcore.Config
	log      avcore.Logger

	mu      sync.Mutex
	state   State
	root    string
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}

	tracker *burstTracker
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}

// NewMonitor builds a Monitor driving pipeline and vault with cfg. A nil
// log is replaced with a no-op one.
func NewMonitor(pipeline *avcore.Pipeline, vault *avcore.Vault, cfg avcore.Config, log avcore.Logger) *Monitor {
	if log == nil {
		log = noopLogger{}
	}
	return &Monitor{
		pipeline: pipeline,
		vault:    vault,
		cfg:      cfg,
		log:      log,
		state:    Idle,
		tracker:  newBurstTracker(),
	}
}

// State returns the monitor's current lifecycle state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Start opens a recursive watch on root and begins the monitor loop.
// Idempotent: a call while already Starting/Running logs a WARNING and
// returns nil, per spec §4.6 and §8 ("repeated start() calls ... are
// no-ops").
func (m *Monitor) Start(root string) error {
	m.mu.Lock()
	if m.state != Idle {
		m.mu.Unlock()
		m.log.Warn("monitor already running, ignoring start()")
		return nil
	}
	m.state = Starting
	m.mu.Unlock()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = root
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		m.mu.Lock()
		m.state = Idle
		m.mu.Unlock()
		return fmt.Errorf("create watcher: %w", err)
	}

	if err := filepath.WalkDir(absRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if werr := watcher.Add(path); werr != nil {
				m.log.Warn("unable to register directory", "path", path, "err", werr)
			}
		}
		return nil
	}); err != nil {
		watcher.Close()
		m.mu.Lock()
		m.state = Idle
		m.mu.Unlock()
		return fmt.Errorf("walk root: %w", err)
	}

	m.mu.Lock()
	m.root = absRoot
	m.watcher = watcher
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	m.state = Running
	m.mu.Unlock()

	go m.loop()

	m.log.Info("real-time monitoring started", "root", absRoot)
	return nil
}

// Stop cancels the watch, joins the worker, and closes handles.
// Idempotent.
func (m *Monitor) Stop() error {
	m.mu.Lock()
	if m.state != Running {
		m.mu.Unlock()
		return nil
	}
	m.state = Stopping
	stopCh := m.stopCh
	doneCh := m.doneCh
	watcher := m.watcher
	m.mu.Unlock()

	close(stopCh)
	if watcher != nil {
		watcher.Close()
	}
	<-doneCh

	m.mu.Lock()
	m.state = Idle
	m.watcher = nil
	m.mu.Unlock()

	m.log.Info("real-time monitoring stopped")
	return nil
}

// loop is the monitor's single dedicated worker goroutine (spec §5).
func (m *Monitor) loop() {
	defer close(m.doneCh)

	m.mu.Lock()
	watcher := m.watcher
	stopCh := m.stopCh
	m.mu.Unlock()

	for {
		select {
		case <-stopCh:
			return

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			m.log.Error("watch error", "err", err)

		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			m.handleFSEvent(ev)
		}
	}
}

func (m *Monitor) handleFSEvent(raw fsnotify.Event) {
	event, ok := fromFSNotify(raw)
	if !ok {
		return
	}
	if !withinRoot(m.root, event.Path) {
		return
	}

	info, err := os.Stat(event.Path)
	if err == nil && info.IsDir() {
		if werr := m.watcher.Add(event.Path); werr != nil {
			m.log.Warn("unable to register directory", "path", event.Path, "err", werr)
		}
		return
	}

	if !m.waitReady(event.Path) {
		m.log.Debug("file never became ready, dropping event", "path", event.Path)
		return
	}

	excluded := isExcludedPath(event.Path)
	ext := strings.ToLower(filepath.Ext(event.Path))
	highRisk := highRiskExtensions[ext]

	if excluded {
		m.log.Info("system path detected, downgraded", "path", event.Path)
	}

	if highRisk || !excluded {
		if m.aggressiveScan(event.Path) {
			return
		}
	}

	m.updateBurst(event.Path)
}

// waitReady polls up to readinessRetries times at cfg.MonitorPollInterval
// for path to exist with non-zero size (spec §4.6 step 1).
func (m *Monitor) waitReady(path string) bool {
	for i := 0; i < readinessRetries; i++ {
		info, err := os.Stat(path)
		if err == nil && info.Size() > 0 {
			return true
		}
		time.Sleep(m.cfg.MonitorPollInterval)
	}
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}

// aggressiveScan runs the monitor's high-risk gate (spec §4.6 step 3):
// entropy check, pipeline scan, then a best-effort shellcode scan. It
// returns true if the file was quarantined.
func (m *Monitor) aggressiveScan(path string) bool {
	entropy, err := avcore.Entropy(path)
	if err == nil && entropy > m.cfg.MonitorEntropyThreshold {
		m.log.Warn("high entropy detected", "path", path, "entropy", entropy)
		m.quarantine(path, "HighEntropy")
		return true
	}

	verdict := m.pipeline.ScanFile(path)
	if verdict.Status == avcore.Malicious {
		m.log.Warn("threat detected", "path", path, "tag", verdict.Tag.String())
		m.quarantine(path, verdict.Tag.String())
		return true
	}

	if avcore.HasShellcodePattern(path) {
		m.log.Warn("shellcode pattern detected", "path", path)
		m.quarantine(path, "ShellcodePattern")
		return true
	}

	return false
}

// updateBurst feeds the change tracker and, when it signals a burst
// candidate, checks sibling activity in the same directory (spec §4.6
// step 4).
func (m *Monitor) updateBurst(path string) {
	now := time.Now()
	if !m.tracker.touch(path, now) {
		return
	}

	dir := filepath.Dir(path)
	siblings := m.tracker.recentSiblingCount(dir, path, now)
	if siblings > burstSiblingThreshold {
		m.log.Warn("ransomware burst pattern detected", "path", path, "siblings", siblings)
		m.quarantine(path, "RansomwareBurst")
	}
}

func (m *Monitor) quarantine(path, reason string) {
	if m.vault == nil {
		return
	}
	if _, err := m.vault.Quarantine(path); err != nil {
		m.log.Error("quarantine failed", "path", path, "reason", reason, "err", err)
	}
}
