package errors

import (
	"strings"
	"unicode"
)

// ValidateGraphPath validates the path of an exchange-format graph file.
//
// The rules are intentionally conservative:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - Must name a file, not a directory (no trailing separator)
func ValidateGraphPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "graph path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "graph path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "graph path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, "\\") {
		return New(ErrCodeInvalidPath, "graph path must name a file: %q", path)
	}

	return nil
}

// ValidateNodeID checks that id is a usable segment identifier.
// Segment identifiers in the exchange format are positive integers.
func ValidateNodeID(id int) error {
	if id <= 0 {
		return New(ErrCodeInvalidInput, "node id must be positive, got %d", id)
	}
	return nil
}

// ValidateRadius checks that r is a usable extraction radius.
// Radius 0 selects only the center node.
func ValidateRadius(r int) error {
	if r < 0 {
		return New(ErrCodeInvalidInput, "radius must be >= 0, got %d", r)
	}
	return nil
}

// ValidateGenomeName validates a genome name as it appears in ORI tags.
// Names are separated by ';' in the file, so they cannot contain one, and
// whitespace would split the record.
func ValidateGenomeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "genome name cannot be empty")
	}
	if len(name) > 1024 {
		return New(ErrCodeInvalidInput, "genome name too long (max 1024 characters)")
	}
	for _, r := range name {
		if r == ';' || unicode.IsSpace(r) || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "genome name contains invalid characters: %q", name)
		}
	}
	return nil
}
