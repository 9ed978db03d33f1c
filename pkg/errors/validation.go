package errors

import (
	"strings"
	"unicode"
)

// maxNameLength bounds member names accepted from the CLI and the HTTP API.
const maxNameLength = 256

// ValidateName checks that a member name is present after trimming.
// It returns the trimmed name on success.
//
// The rules are deliberately minimal:
//   - No empty or whitespace-only names
//   - No control characters
//   - Maximum length of 256 characters
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", New(ErrCodeInvalidInput, "enter a name")
	}

	if len(name) > maxNameLength {
		return "", New(ErrCodeInvalidInput, "name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return "", New(ErrCodeInvalidInput, "name contains invalid control characters")
		}
	}

	return name, nil
}

// ValidateRequired checks that a selection (member id, relation kind) is present.
// field names the selection in the error message.
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return New(ErrCodeInvalidInput, "select %s", field)
	}
	return nil
}

// ValidateFilename validates a snapshot filename for safety.
// It ensures the filename is a simple basename without path components.
func ValidateFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidPath, "filename cannot be empty")
	}

	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidPath, "filename cannot contain path separators")
	}

	if strings.Contains(filename, "..") {
		return New(ErrCodeInvalidPath, "filename cannot contain path traversal sequences (..)")
	}

	for _, r := range filename {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "filename contains invalid characters")
		}
	}

	if !strings.HasSuffix(strings.ToLower(filename), ".json") {
		return New(ErrCodeInvalidPath, "filename must end in .json")
	}

	return nil
}
