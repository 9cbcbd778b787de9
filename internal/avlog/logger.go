/*
Copyright © 2025 Jon Knox <jon@k2x.io>
*/

// Package avlog provides the scanner's two logging surfaces: structured
// JSON diagnostics on slog, and the append-only plain-text scan audit
// trail spec §6 requires.
package avlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger satisfies avcore.Logger and avmonitor's logging needs: every
// call goes to the slog JSON handler and also appends a line to the
// plain-text audit log (spec §6: "a line per detection and per scan
// summary, never truncated or rotated by this tool" — DEBUG, INFO,
// WARNING and ERROR all land there, matching the original Logger.h's
// unconditional logDebug/logInfo/logWarning/logError file appends).
type Logger struct {
	base *slog.Logger

	mu        sync.Mutex
	auditFile *os.File
}

// New builds a Logger writing structured JSON to w at the given level,
// and (if auditPath is non-empty) appending plain-text audit lines to
// auditPath.
func New(w io.Writer, level slog.Level, auditPath string) (*Logger, error) {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	l := &Logger{base: slog.New(handler)}

	if auditPath != "" {
		if err := os.MkdirAll(filepath.Dir(auditPath), 0o755); err != nil {
			return nil, fmt.Errorf("create audit log directory: %w", err)
		}
		f, err := os.OpenFile(auditPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open audit log: %w", err)
		}
		l.auditFile = f
	}

	return l, nil
}

// Close releases the audit log file handle, if one is open.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.auditFile != nil {
		return l.auditFile.Close()
	}
	return nil
}

func (l *Logger) Debug(msg string, args ...any) {
	l.base.Debug(msg, args...)
	l.audit("DEBUG", msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.base.Info(msg, args...)
	l.audit("INFO", msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.base.Warn(msg, args...)
	l.audit("WARNING", msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.base.Error(msg, args...)
	l.audit("ERROR", msg, args...)
}

// audit appends "[YYYY-MM-DD HH:MM:SS] LEVEL: message key=value ..." to
// the plain-text scan log (spec §6). Best-effort: a failure here is
// logged to the JSON stream, not propagated, since the audit trail is
// diagnostic rather than load-bearing.
func (l *Logger) audit(level, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.auditFile == nil {
		return
	}

	line := fmt.Sprintf("[%s] %s: %s", time.Now().Format("2006-01-02 15:04:05"), level, msg)
	for i := 0; i+1 < len(args); i += 2 {
		line += fmt.Sprintf(" %v=%v", args[i], args[i+1])
	}
	line += "\n"

	if _, err := l.auditFile.WriteString(line); err != nil {
		l.base.Error("audit log write failed", "err", err)
	}
}
