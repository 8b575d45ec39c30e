// Package validation checks user supplied paths before they reach the file
// system.
package validation

import (
	"path/filepath"
	"strings"

	"github.com/conneroisu/dashvars/internal/errors"
)

// ValidatePath cleans path and rejects empty paths and paths with a ".."
// segment. Names that merely contain dots, like "my..dir", are allowed.
func ValidatePath(path string) (string, error) {
	if path == "" {
		return "", errors.ErrInvalidPath(path)
	}

	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return "", errors.ErrPathTraversal(path)
		}
	}

	return filepath.Clean(path), nil
}
