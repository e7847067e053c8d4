package util

import (
	"regexp"
	"strings"
	"unicode"

	"go-project-hub/internal/model"
)

const maxFilenameRunes = 120

var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\s]+`)

var windowsReservedNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {}, "COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {}, "LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// SanitizeFilename reduces an uploaded file name to a single safe path segment.
func SanitizeFilename(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", model.NewFieldError("file", "filename cannot be empty")
	}
	if strings.Contains(trimmed, "\x00") {
		return "", model.NewFieldError("file", "filename contains null bytes")
	}

	builder := strings.Builder{}
	builder.Grow(len(trimmed))
	for _, char := range trimmed {
		if unicode.IsControl(char) || isInvisibleUnicode(char) {
			continue
		}
		builder.WriteRune(char)
	}

	cleaned := strings.Trim(invalidFilenameChars.ReplaceAllString(builder.String(), "_"), "_")
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return "", model.NewFieldError("file", "filename is invalid after sanitization")
	}

	// Keep the extension when truncating by runes.
	runes := []rune(cleaned)
	if len(runes) > maxFilenameRunes {
		ext := []rune(extension(cleaned))
		if len(ext) >= maxFilenameRunes {
			ext = nil
		}
		runes = append(runes[:maxFilenameRunes-len(ext)], ext...)
		cleaned = string(runes)
	}

	if strings.HasPrefix(cleaned, ".") {
		return "", model.NewFieldError("file", "hidden filenames are not allowed")
	}

	stem := cleaned
	if idx := strings.Index(cleaned, "."); idx >= 0 {
		stem = cleaned[:idx]
	}
	if _, exists := windowsReservedNames[strings.ToUpper(stem)]; exists {
		return "", model.NewFieldError("file", "reserved filename is not allowed")
	}

	return cleaned, nil
}

// ReplaceExtension swaps the final extension of name for ext (which includes the dot).
func ReplaceExtension(name string, ext string) string {
	return strings.TrimSuffix(name, extension(name)) + ext
}

func extension(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 {
		return ""
	}
	return name[idx:]
}

// isInvisibleUnicode reports zero-width and other formatting characters.
func isInvisibleUnicode(r rune) bool {
	switch r {
	case '\u200B', '\u200C', '\u200D', '\u200E', '\u200F',
		'\u2060', '\u2061', '\u2062', '\u2063', '\u2064',
		'\uFEFF', '\uFFF9', '\uFFFA', '\uFFFB':
		return true
	}

	return unicode.Is(unicode.Cf, r)
}
