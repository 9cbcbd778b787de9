package avcore

import (
	"bytes"
	"os"
)

// packerTokens is the closed list of packer magic tokens spec §6
// authoritatively enumerates.
var packerTokens = [][]byte{
	[]byte("UPX!"),
	[]byte("ASPack"),
	[]byte("FSG!"),
	[]byte("PECompact"),
	[]byte("MEW"),
	[]byte("MPRESS"),
	[]byte("PACK"),
	[]byte("Themida"),
	[]byte("Obsidium"),
	[]byte("VMProtect"),
}

// HasPackerSignature reads path fully and returns true if any packer
// magic token (spec §6) appears anywhere in the content. Fails closed on
// a read error, per spec §4.3.
func HasPackerSignature(path string) bool {
	data, ok := readAllFailClosed(path)
	if !ok {
		return false
	}
	for _, tok := range packerTokens {
		if bytes.Contains(data, tok) {
			return true
		}
	}
	return false
}

// Suspicious-API categories, spec §4.3 / §6. Every token from the
// original source's seven categories is carried over verbatim.
var (
	processPatterns = []string{
		"CreateRemoteThread", "WriteProcessMemory", "VirtualAllocEx",
		"OpenProcess", "CreateProcess", "ShellExecute", "WinExec",
		"SetWindowsHookEx", "GetAsyncKeyState", "RegisterHotKey",
	}
	networkPatterns = []string{
		"WSAStartup", "socket", "connect", "InternetOpen",
		"HttpSendRequest", "URLDownloadToFile", "InternetReadFile",
	}
	filePatterns = []string{
		"CreateFile", "WriteFile", "CopyFile", "MoveFile",
		"DeleteFile", "RegCreateKey", "RegSetValue",
	}
	antiAnalysisPatterns = []string{
		"IsDebuggerPresent", "CheckRemoteDebuggerPresent",
		"OutputDebugString", "GetTickCount", "QueryPerformanceCounter",
	}
	injectionPatterns = []string{
		"VirtualProtect", "VirtualAlloc", "LoadLibrary",
		"GetProcAddress", "CreateThread", "CreateMutex",
	}
	spywarePatterns = []string{
		"GetForegroundWindow", "GetKeyState", "GetClipboardData",
		"SetClipboardData", "GetWindowText", "BitBlt", "GetDC",
	}
	ransomwarePatterns = []string{
		"CryptEncrypt", "CryptDecrypt", "CryptGenKey",
		"BCryptEncrypt", "BCryptDecrypt", "wincrypt.h",
	}
)

const (
	base64Alphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/="
	base64RunThresh = 100
)

// HasSuspiciousStrings searches path for any token from the seven closed
// categories, or for a base64-alphabet run longer than 100 bytes
// (spec §4.3). Fails closed on a read error.
func HasSuspiciousStrings(path string) bool {
	data, ok := readAllFailClosed(path)
	if !ok {
		return false
	}

	if hasBase64Run(data, base64RunThresh) {
		return true
	}

	categories := [][]string{
		processPatterns, networkPatterns, filePatterns,
		antiAnalysisPatterns, injectionPatterns, spywarePatterns,
		ransomwarePatterns,
	}
	for _, cat := range categories {
		for _, tok := range cat {
			if bytes.Contains(data, []byte(tok)) {
				return true
			}
		}
	}
	return false
}

func hasBase64Run(data []byte, threshold int) bool {
	run := 0
	for _, b := range data {
		if bytes.IndexByte([]byte(base64Alphabet), b) >= 0 {
			run++
			if run > threshold {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}

// readAllFailClosed reads path in full, reporting ok=false on any error
// so every predicate built on it fails closed per spec §4.3.
func readAllFailClosed(path string) (data []byte, ok bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return b, true
}
