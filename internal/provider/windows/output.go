// Package windows prepares the Windows host: optional features, the WSL
// default version, the Linux distribution and its wsl.conf.
package windows

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// decodeOutput normalizes wsl.exe output, which is UTF-16LE unless
// WSL_UTF8=1 is set, into plain text with Unix line endings.
func decodeOutput(out string) string {
	if strings.ContainsRune(out, 0) {
		if decoded, err := utf16le.NewDecoder().String(out); err == nil {
			out = decoded
		}
	}
	out = strings.TrimPrefix(out, "\ufeff")
	return strings.ReplaceAll(out, "\r", "")
}

// lines splits decoded output into trimmed, non-empty lines.
func lines(out string) []string {
	var result []string
	for _, line := range strings.Split(decodeOutput(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			result = append(result, line)
		}
	}
	return result
}
