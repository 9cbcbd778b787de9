package avcore

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Status is the terminal classification of a Verdict.
type Status int

const (
	Clean Status = iota
	Malicious
	Error
)

// Tag distinguishes the trigger for a Malicious verdict (spec §3).
type Tag int

const (
	NoTag Tag = iota
	SignatureHit
	HighEntropy
	SuspiciousPE
	PackerSignature
	SuspiciousStrings
	ShellcodePattern
	RansomwareBurst
)

func (t Tag) String() string {
	switch t {
	case SignatureHit:
		return "SignatureHit"
	case HighEntropy:
		return "HighEntropy"
	case SuspiciousPE:
		return "SuspiciousPE"
	case PackerSignature:
		return "PackerSignature"
	case SuspiciousStrings:
		return "SuspiciousStrings"
	case ShellcodePattern:
		return "ShellcodePattern"
	case RansomwareBurst:
		return "RansomwareBurst"
	default:
		return "None"
	}
}

// Verdict is the pipeline's terminal classification for a file. Error is
// never a substitute for Clean — it is a distinct outcome (spec §3).
type Verdict struct {
	Status   Status
	Tag      Tag
	Reason   string
	Err      error
	Path     string
	ScanID   uuid.UUID
	Duration time.Duration
}

func cleanVerdict(path string, scanID uuid.UUID, start time.Time) Verdict {
	return Verdict{Status: Clean, Path: path, ScanID: scanID, Duration: time.Since(start)}
}

func maliciousVerdict(path string, scanID uuid.UUID, start time.Time, tag Tag, reason string) Verdict {
	return Verdict{Status: Malicious, Tag: tag, Reason: reason, Path: path, ScanID: scanID, Duration: time.Since(start)}
}

func errorVerdict(path string, scanID uuid.UUID, start time.Time, err error) Verdict {
	return Verdict{Status: Error, Err: err, Path: path, ScanID: scanID, Duration: time.Since(start)}
}

// ScanSummary totals a scanDirectory walk (spec §4.4).
type ScanSummary struct {
	FilesScanned int
	ThreatsFound int
}

// Logger is the narrow logging interface the pipeline and vault depend
// on, satisfied by *avlog.Logger. Kept here rather than importing avlog
// directly so avcore has no dependency on the CLI-facing logging glue.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}

// Pipeline composes the Hasher, Signature Store and Heuristics into a
// per-file verdict (C4).
type Pipeline struct {
	Sigs  *SignatureStore
	Cfg   Config
	Log   Logger
	Vault *Vault
}

// NewPipeline builds a Pipeline over sigs and vault using cfg. A nil
// Logger is replaced with a no-op one.
func NewPipeline(sigs *SignatureStore, vault *Vault, cfg Config, log Logger) *Pipeline {
	if log == nil {
		log = noopLogger{}
	}
	return &Pipeline{Sigs: sigs, Cfg: cfg, Log: log, Vault: vault}
}

// ScanFile runs the detection procedure from spec §4.4:
//  1. missing file -> Error(NotFound)
//  2. SHA-256 signature hit -> Malicious(SignatureHit)
//  3. heuristic gate, first match wins (deterministic tag, spec §9)
//  4. otherwise Clean
func (p *Pipeline) ScanFile(path string) Verdict {
	start := time.Now()
	scanID := uuid.New()

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			p.Log.Error("scan failed for path", "path", path, "reason", "not found")
			return errorVerdict(path, scanID, start, errNotFound(path))
		}
		p.Log.Error("scan failed for path", "path", path, "err", err)
		return errorVerdict(path, scanID, start, errIO("stat", path, err))
	}
	if info.IsDir() {
		return errorVerdict(path, scanID, start, errState("scanFile", "path is a directory"))
	}
	if info.Size() > p.Cfg.MaxFileSize {
		p.Log.Warn("file exceeds max scan size, skipping", "path", path, "size", info.Size())
		return cleanVerdict(path, scanID, start)
	}

	fp, err := HashFile(path, SHA256, p.Cfg.ScanBufferSize)
	if err != nil {
		p.Log.Error("scan failed for path", "path", path, "err", err)
		return errorVerdict(path, scanID, start, err)
	}
	if p.Sigs != nil && p.Sigs.Contains(fp) {
		return maliciousVerdict(path, scanID, start, SignatureHit, "signature match "+string(fp))
	}

	return p.heuristicGate(path, scanID, start)
}

// heuristicGate runs the heuristic predicates in the fixed order spec §4.4
// and §9 require, short-circuiting on the first positive signal so the
// resulting tag is deterministic for a given input.
func (p *Pipeline) heuristicGate(path string, scanID uuid.UUID, start time.Time) Verdict {
	entropy, err := Entropy(path)
	if err == nil && entropy > p.Cfg.PipelineEntropyThreshold {
		return maliciousVerdict(path, scanID, start, HighEntropy, "entropy above pipeline threshold")
	}

	if InspectPE(path) {
		return maliciousVerdict(path, scanID, start, SuspiciousPE, "suspicious PE header")
	}

	if HasPackerSignature(path) {
		return maliciousVerdict(path, scanID, start, PackerSignature, "packer signature present")
	}

	if HasSuspiciousStrings(path) {
		return maliciousVerdict(path, scanID, start, SuspiciousStrings, "suspicious API strings present")
	}

	return cleanVerdict(path, scanID, start)
}

// ScanDirectory recursively walks root, scanning every regular file
// exactly once (spec §4.4). A positive verdict triggers quarantine. A
// per-file error is logged and does not abort the walk.
func (p *Pipeline) ScanDirectory(root string) (ScanSummary, error) {
	var summary ScanSummary

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			p.Log.Error("walk error", "path", path, "err", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		summary.FilesScanned++
		verdict := p.ScanFile(path)
		switch verdict.Status {
		case Malicious:
			summary.ThreatsFound++
			p.Log.Warn("threat detected", "path", path, "tag", verdict.Tag.String())
			if p.Vault != nil {
				if _, qerr := p.Vault.Quarantine(path); qerr != nil {
					p.Log.Error("quarantine failed", "path", path, "err", qerr)
				}
			}
		case Error:
			p.Log.Error("scan failed for path", "path", path, "err", verdict.Err)
		}
		return nil
	})
	if err != nil {
		return summary, errIO("walk", root, err)
	}
	return summary, nil
}
