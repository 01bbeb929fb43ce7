package utils

import (
	"os"
	"regexp"
	"strings"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._\s\-çãáéíóúâêôàü]`)

// SanitizeFilename cleans an uploaded filename for safe storage: trims
// spaces and dots, removes parent directory references, and filters out
// characters outside a safe set. Accented characters common in Portuguese
// evidence names are preserved.
func SanitizeFilename(filename string) string {
	sanitized := strings.Trim(filename, " .")
	sanitized = strings.ReplaceAll(sanitized, "..", "")
	sanitized = unsafeFilenameChars.ReplaceAllString(sanitized, "")
	if len(sanitized) > 255 {
		sanitized = sanitized[:255]
	}
	return sanitized
}

// VerifyFileExists checks that path points at a regular file.
func VerifyFileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
