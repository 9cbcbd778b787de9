package avcore

import (
	"bytes"
	"io"
	"os"
)

// shellcodeHeadSize is how much of the file the shellcode scan (C7,
// "Behavior Analyzer (file-only)") reads — spec §4.3 specifies the first
// 8 KiB.
const shellcodeHeadSize = 8 * 1024

// shellcodePatterns is the closed list of byte patterns spec §4.3
// enumerates, adapted from original_source's BehaviorAnalyzer::scanForShellcode.
var shellcodePatterns = [][]byte{
	{0x33, 0xC0, 0x50, 0x68}, // XOR EAX,EAX; PUSH EAX; PUSH
	{0x55, 0x8B, 0xEC},       // PUSH EBP; MOV EBP,ESP
	{0x90, 0x90, 0x90, 0x90}, // NOP sled
	{0xE8, 0x00, 0x00, 0x00}, // CALL $+5
	{0xEB},                   // JMP SHORT
	{0xFF, 0xD0},             // CALL EAX
	{0xB8, 0x00, 0x00, 0x00}, // MOV EAX, immediate
}

// HasShellcodePattern scans the first 8 KiB of path for any of the
// closed byte patterns. Best-effort: a read error returns false rather
// than propagating, matching every other C3/C7 predicate's fail-closed
// contract.
func HasShellcodePattern(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, shellcodeHeadSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false
	}
	head := buf[:n]

	for _, pattern := range shellcodePatterns {
		if bytes.Contains(head, pattern) {
			return true
		}
	}
	return false
}
