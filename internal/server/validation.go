// validation.go - Input validation and sanitization helpers
package server

import (
	"fmt"
	"regexp"
	"strings"
)

// maxFileSizeBytes caps declared upload sizes at 100 MiB.
const maxFileSizeBytes = 100 * 1024 * 1024

const maxFilenameLength = 255

var (
	pinPattern    = regexp.MustCompile(`^\d{4}$`)
	mimePattern   = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9!#$&\-^_.]*/[a-zA-Z0-9][a-zA-Z0-9!#$&\-^_.]*$`)
	fileIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

	// Everything outside this set is replaced when building storage keys.
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
	leadingPath         = regexp.MustCompile(`^.*[\\/]`)
)

// validatePIN checks the shared-secret format: exactly 4 decimal digits.
func validatePIN(pin string) (bool, string) {
	if pin == "" {
		return false, "PIN must be a string"
	}
	if !pinPattern.MatchString(pin) {
		return false, "PIN must be exactly 4 digits"
	}
	return true, ""
}

// validateFilename checks a display filename before it is stored or used
// to derive a storage key. Raw path traversal is rejected outright;
// sanitizeFilename handles the rest.
func validateFilename(filename string) (bool, string) {
	if strings.TrimSpace(filename) == "" {
		return false, "Filename cannot be empty"
	}
	if len(filename) > maxFilenameLength {
		return false, fmt.Sprintf("Filename too long (max %d characters)", maxFilenameLength)
	}
	if strings.Contains(filename, "..") || strings.Contains(filename, "/") || strings.Contains(filename, "\\") {
		return false, "Filename contains invalid characters"
	}
	return true, ""
}

func validateFileSize(size int64) (bool, string) {
	if size <= 0 {
		return false, "File size must be greater than 0"
	}
	if size > maxFileSizeBytes {
		return false, fmt.Sprintf("File size exceeds maximum of %dMB", maxFileSizeBytes/1024/1024)
	}
	return true, ""
}

// validateMimeType checks basic token/token syntax only. The declared
// type is client-reported and never verified against the uploaded bytes.
func validateMimeType(mimeType string) (bool, string) {
	if mimeType == "" {
		return false, "MIME type must be a string"
	}
	if !mimePattern.MatchString(mimeType) {
		return false, "Invalid MIME type format"
	}
	return true, ""
}

// validateFileID checks the 24-hex-character file id format before any
// catalog lookup.
func validateFileID(id string) (bool, string) {
	if id == "" {
		return false, "ID must be a string"
	}
	if !fileIDPattern.MatchString(id) {
		return false, "Invalid ID format"
	}
	return true, ""
}

// sanitizeFilename reduces a filename to [a-zA-Z0-9._-] for use inside a
// storage key. Path components are stripped first, so traversal input
// like "../../etc/passwd" collapses to "passwd".
func sanitizeFilename(filename string) string {
	sanitized := leadingPath.ReplaceAllString(filename, "")
	sanitized = unsafeFilenameChars.ReplaceAllString(sanitized, "_")

	if len(sanitized) > maxFilenameLength {
		ext := ""
		if idx := strings.LastIndex(sanitized, "."); idx >= 0 {
			ext = sanitized[idx:]
		}
		sanitized = sanitized[:maxFilenameLength-len(ext)] + ext
	}

	return sanitized
}
