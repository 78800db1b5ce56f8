package errors

import (
	"math"
	"strings"
	"unicode"
)

// MaxItems bounds the number of items accepted by a single layout request.
const MaxItems = 100_000

// ValidateWeights checks that every weight is finite and non-negative and that
// there are at most MaxItems of them. The layout engine itself tolerates bad
// weights by clamping; callers that want to reject them validate first.
func ValidateWeights(weights []float64) error {
	if len(weights) > MaxItems {
		return New(ErrCodeInvalidInput, "too many items: %d (max %d)", len(weights), MaxItems)
	}
	for i, w := range weights {
		switch {
		case math.IsNaN(w):
			return New(ErrCodeInvalidWeight, "item %d: weight is NaN", i)
		case math.IsInf(w, 0):
			return New(ErrCodeInvalidWeight, "item %d: weight is infinite", i)
		case w < 0:
			return New(ErrCodeInvalidWeight, "item %d: negative weight %g", i, w)
		}
	}
	return nil
}

// ValidateContainer checks that width and height are finite and positive.
func ValidateContainer(width, height float64) error {
	for _, d := range []struct {
		name string
		v    float64
	}{{"width", width}, {"height", height}} {
		if math.IsNaN(d.v) || math.IsInf(d.v, 0) {
			return New(ErrCodeInvalidContainer, "%s must be finite", d.name)
		}
		if d.v <= 0 {
			return New(ErrCodeInvalidContainer, "%s must be positive, got %g", d.name, d.v)
		}
	}
	return nil
}

// ValidateWeightKey validates the field name used to read weights from
// loosely typed records. It must not collide with the geometry fields the
// layout adds.
func ValidateWeightKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return New(ErrCodeInvalidInput, "weight key cannot be empty")
	}
	switch key {
	case "x", "y", "w", "h":
		return New(ErrCodeInvalidInput, "weight key %q collides with a layout field", key)
	}
	return nil
}

// ValidatePath validates an output or input file path supplied by a user.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

// ValidateLayoutID checks an identifier taken from a URL before it reaches
// a store.
func ValidateLayoutID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "layout id cannot be empty")
	}
	if len(id) > 64 {
		return New(ErrCodeInvalidInput, "layout id too long")
	}
	for _, r := range id {
		if !(r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return New(ErrCodeInvalidInput, "layout id contains invalid characters")
		}
	}
	return nil
}
