package errors

import (
	"math"
	"unicode"
)

// maxIDLength bounds item identifiers so they stay usable as Redis keys,
// Mongo _id values and URL path segments.
const maxIDLength = 128

// ValidateID validates an item identifier.
//
// Validation rules:
//   - No empty identifiers
//   - Maximum length of 128 bytes
//   - No control characters or whitespace
//   - No slashes (identifiers appear as URL path segments)
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeValidation, "item id cannot be empty")
	}

	if len(id) > maxIDLength {
		return New(ErrCodeValidation, "item id too long (max %d characters)", maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeValidation, "item id %q contains whitespace or control characters", id)
		}
		if r == '/' || r == '\\' {
			return New(ErrCodeValidation, "item id %q cannot contain slashes", id)
		}
	}

	return nil
}

// ValidateLabel validates an item label. Labels are rendered on a single
// line, so line breaks are rejected along with empty strings.
func ValidateLabel(id, label string) error {
	if label == "" {
		return New(ErrCodeValidation, "item %q: label cannot be empty", id)
	}

	for _, r := range label {
		if r == '\n' || r == '\r' || r == '\x00' {
			return New(ErrCodeValidation, "item %q: label must be a single line", id)
		}
	}

	return nil
}

// ValidateValue rejects NaN and infinities; every other float64 is a valid
// position on the number line.
func ValidateValue(id string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return New(ErrCodeValidation, "item %q: value must be finite, got %v", id, value)
	}
	return nil
}
