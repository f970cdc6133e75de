package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// hexColorRegex matches #RGB and #RRGGBB with or without the leading hash.
var hexColorRegex = regexp.MustCompile(`^#?([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// ValidateHexColor validates a hex color string as accepted by the fill engine.
// Surrounding whitespace is tolerated; the hash is optional.
func ValidateHexColor(color string) error {
	c := strings.TrimSpace(color)
	if c == "" {
		return New(ErrCodeInvalidColor, "color cannot be empty")
	}
	if !hexColorRegex.MatchString(c) {
		return New(ErrCodeInvalidColor, "invalid hex color: %q", color)
	}
	return nil
}

// regionIDRegex matches the identifiers assigned by the region registry.
var regionIDRegex = regexp.MustCompile(`^shape-(0|[1-9][0-9]*)$`)

// ValidateRegionID validates the shape of a region identifier.
// It does not check that the region exists.
func ValidateRegionID(id string) error {
	if !regionIDRegex.MatchString(id) {
		return New(ErrCodeUnknownRegion, "invalid region id: %q", id)
	}
	return nil
}

// patternIDRegex matches pattern ids usable as XML id suffixes.
var patternIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidatePatternID validates a pattern id for use inside a drawing.
// Pattern ids end up in element ids and url(#...) references, so the
// accepted alphabet is deliberately narrow.
func ValidatePatternID(id string) error {
	if id == "" {
		return New(ErrCodeUnknownPattern, "pattern id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeUnknownPattern, "pattern id too long (max 128 characters)")
	}
	if !patternIDRegex.MatchString(id) {
		return New(ErrCodeUnknownPattern, "invalid pattern id: %q", id)
	}
	return nil
}

// ValidateName validates a human-readable pattern name.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of 256 characters
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "name contains invalid control characters")
		}
	}

	return nil
}

// ValidateZoomLevel validates a zoom level index (0-9).
func ValidateZoomLevel(level int) error {
	if level < 0 || level > 9 {
		return New(ErrCodeInvalidInput, "zoom level must be between 0 and 9, got %d", level)
	}
	return nil
}

// ValidateTileSize validates a pattern tile edge length in drawing units.
func ValidateTileSize(size int) error {
	if size <= 0 {
		return New(ErrCodeInvalidInput, "tile size must be positive, got %d", size)
	}
	if size > 4096 {
		return New(ErrCodeInvalidInput, "tile size too large (max 4096), got %d", size)
	}
	return nil
}

// ValidatePath validates an asset path relative to a pattern directory.
// It prevents path traversal and ensures reasonable path length.
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
