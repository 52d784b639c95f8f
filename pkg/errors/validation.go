package errors

import (
	"math"
	"slices"
	"strings"
	"unicode"
)

// MaxNodeIDLength bounds node IDs and names accepted from documents and
// interaction targets.
const MaxNodeIDLength = 512

// ValidateNodeID validates a node reference (ID or name) taken from user
// input, such as an interaction target.
//
// The validation rules are intentionally conservative:
//   - No empty references
//   - No control characters or null bytes
//   - Maximum length of MaxNodeIDLength bytes
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node reference cannot be empty")
	}

	if len(id) > MaxNodeIDLength {
		return New(ErrCodeInvalidInput, "node reference too long (max %d characters)", MaxNodeIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node reference contains invalid control characters")
		}
	}

	return nil
}

// ValidateFormat checks that format is one of the supported formats,
// case-insensitively.
func ValidateFormat(format string, supported []string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	if !slices.Contains(supported, strings.ToLower(format)) {
		return New(ErrCodeInvalidFormat, "unsupported format %q (supported: %s)",
			format, strings.Join(supported, ", "))
	}
	return nil
}

// MaxViewportSide bounds viewport dimensions.
const MaxViewportSide = 1 << 16

// ValidateViewport checks that a viewport has finite, positive dimensions
// no larger than MaxViewportSide.
func ValidateViewport(width, height float64) error {
	for _, v := range []float64{width, height} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return New(ErrCodeInvalidOption, "viewport must be positive, got %vx%v", width, height)
		}
		if v > MaxViewportSide {
			return New(ErrCodeInvalidOption, "viewport too large (max %d per side)", MaxViewportSide)
		}
	}
	return nil
}
