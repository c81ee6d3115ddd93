package errors

import "strings"

// Category classifies errors for propagation policy decisions.
// Configuration and not-found errors abort the whole call; data errors
// are absorbed locally via documented defaults and never surface here.
type Category string

const (
	// CategoryConfig marks caller mistakes detected before per-candidate work.
	CategoryConfig Category = "config"

	// CategoryNotFound marks requests keyed by an id absent from the store.
	CategoryNotFound Category = "not_found"

	// CategoryData marks degraded per-candidate input (missing embedding,
	// missing skills). These are handled with defaults and rarely constructed.
	CategoryData Category = "data"

	// CategoryInternal marks unexpected internal failures.
	CategoryInternal Category = "internal"
)

// Error codes. The prefix encodes the category.
const (
	// Configuration errors (fail fast, no partial work).
	CodeConfigInvalid        = "ERR_CONFIG_INVALID"
	CodeConfigInvalidWeights = "ERR_CONFIG_INVALID_WEIGHTS"
	CodeConfigInvalidLimit   = "ERR_CONFIG_INVALID_LIMIT"
	CodeConfigInvalidRange   = "ERR_CONFIG_INVALID_RANGE"

	// Not-found errors.
	CodeNotFound = "ERR_NOT_FOUND"

	// Data errors (degraded, non-fatal).
	CodeDataMissing = "ERR_DATA_MISSING"

	// Internal errors.
	CodeInternal = "ERR_INTERNAL"
)

// categoryFromCode derives a Category from a code prefix.
func categoryFromCode(code string) Category {
	switch {
	case strings.HasPrefix(code, "ERR_CONFIG"):
		return CategoryConfig
	case strings.HasPrefix(code, "ERR_NOT_FOUND"):
		return CategoryNotFound
	case strings.HasPrefix(code, "ERR_DATA"):
		return CategoryData
	default:
		return CategoryInternal
	}
}
