// Package avcore implements the detection pipeline, signature store,
// heuristic predicates and quarantine vault that make up the scanner core.
package avcore

import "time"

// Config holds the tunables spec.md calls out in its "Configuration
// constants" section. Defaults match the spec exactly; callers override
// individual fields through the With* functional options below.
type Config struct {
	// ScanBufferSize is the chunk size used when streaming a file through
	// a digest (C1 Hasher). Must not load the whole file into memory.
	ScanBufferSize int

	// PipelineEntropyThreshold gates the detection pipeline's coarse
	// entropy check (C4 step 3). Default 6.5 bits/byte.
	PipelineEntropyThreshold float64

	// MonitorEntropyThreshold gates the monitor's "high-entropy scan"
	// (C6 step 3a). Default 7.0 bits/byte.
	MonitorEntropyThreshold float64

	// MaxFileSize is the largest file the pipeline will scan. Files
	// above this are skipped with a WARNING log and treated as Clean.
	MaxFileSize int64

	// MonitorPollInterval is the readiness-wait poll period (C6 step 1).
	MonitorPollInterval time.Duration

	// NetworkBufferSize is reserved for a future network-facing
	// component; the file-scanning core never uses it.
	NetworkBufferSize int

	// QuarantineDir is the single, unified vault directory (spec §9,
	// Open Question (c) — the source's monitor and app vaults differ;
	// this implementation uses one configurable path for both).
	QuarantineDir string

	// SignatureDBPath is the backing text file for the signature store.
	SignatureDBPath string

	// ScanLogPath is the append-only audit log spec §6 describes.
	ScanLogPath string
}

// DefaultConfig returns the spec-mandated defaults.
func DefaultConfig() Config {
	return Config{
		ScanBufferSize:           8 * 1024,
		PipelineEntropyThreshold: 6.5,
		MonitorEntropyThreshold:  7.0,
		MaxFileSize:              100 * 1024 * 1024,
		MonitorPollInterval:      100 * time.Millisecond,
		NetworkBufferSize:        64 * 1024,
		QuarantineDir:            "data/quarantine",
		SignatureDBPath:          "data/signatures.db",
		ScanLogPath:              "logs/scan_results.log",
	}
}

// Option customizes a Config produced by DefaultConfig.
type Option func(*Config)

func WithSignatureDBPath(path string) Option {
	return func(c *Config) { c.SignatureDBPath = path }
}

func WithQuarantineDir(dir string) Option {
	return func(c *Config) { c.QuarantineDir = dir }
}

func WithScanLogPath(path string) Option {
	return func(c *Config) { c.ScanLogPath = path }
}

func WithPipelineEntropyThreshold(t float64) Option {
	return func(c *Config) { c.PipelineEntropyThreshold = t }
}

func WithMonitorEntropyThreshold(t float64) Option {
	return func(c *Config) { c.MonitorEntropyThreshold = t }
}

func WithMaxFileSize(n int64) Option {
	return func(c *Config) { c.MaxFileSize = n }
}

func WithMonitorPollInterval(d time.Duration) Option {
	return func(c *Config) { c.MonitorPollInterval = d }
}

// NewConfig builds a Config from DefaultConfig with the given overrides
// applied in order.
func NewConfig(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
