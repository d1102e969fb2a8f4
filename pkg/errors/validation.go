package errors

import (
	"strconv"
	"strings"
	"unicode"
)

// maxBodyBytes caps the size of a plan accepted over HTTP.
const maxBodyBytes = 8 << 20

// MaxBodyBytes returns the largest request body the HTTP API accepts.
func MaxBodyBytes() int64 { return maxBodyBytes }

// ValidateInputPath validates a plan file path given on the command line.
//
// The rules are conservative:
//   - No empty paths
//   - No control characters or null bytes
//   - Maximum length of 1024 characters
func ValidateInputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "input path cannot be empty")
	}
	if len(path) > 1024 {
		return New(ErrCodeInvalidPath, "input path too long (max 1024 characters)")
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "input path contains invalid control characters")
		}
	}
	return nil
}

// ParseCourseID parses a course id supplied by a user, e.g. the select
// query parameter of the render endpoint. Ids are integers; negative ids
// name synthetic courses and are accepted.
func ParseCourseID(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, New(ErrCodeInvalidInput, "course id cannot be empty")
	}
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, New(ErrCodeInvalidInput, "invalid course id: %q", s)
	}
	return id, nil
}
