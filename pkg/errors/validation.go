package errors

import (
	"path"
	"slices"
	"strings"
	"unicode"
)

// MeshExtensions lists the file extensions the loaders understand.
var MeshExtensions = []string{".off", ".obj", ".xyz"}

// ValidateMeshFilename validates an uploaded geometry filename.
// It must be a plain basename with one of [MeshExtensions].
func ValidateMeshFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidInput, "filename cannot be empty")
	}
	if len(filename) > 255 {
		return New(ErrCodeInvalidInput, "filename too long (max 255 characters)")
	}
	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidInput, "filename cannot contain path separators")
	}
	for _, r := range filename {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "filename contains invalid control characters")
		}
	}
	if strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidInput, "filename cannot be a hidden file")
	}

	ext := strings.ToLower(path.Ext(filename))
	if !slices.Contains(MeshExtensions, ext) {
		return New(ErrCodeUnsupported, "unsupported file type %q (want one of %s)", ext, strings.Join(MeshExtensions, ", "))
	}
	return nil
}

// ValidateFormatName checks that name is one of the allowed output formats.
// Comparison is case-sensitive; callers lower-case user input first.
func ValidateFormatName(name string, allowed []string) error {
	if name == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	if !slices.Contains(allowed, name) {
		return New(ErrCodeInvalidFormat, "unknown format %q (want one of %s)", name, strings.Join(allowed, ", "))
	}
	return nil
}

// ValidatePath validates a relative output path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
