package application

import (
	"fmt"
	"strings"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		displayName := formatFieldName(fieldName)
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", displayName),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "inputTree" -> "input tree")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"inputTree":    "input tree",
		"outputTree":   "output tree",
		"taxonomyFile": "taxonomy file",
		"trustedTaxa":  "trusted taxa file",
		"maxRDDiff":    "maximum relative divergence difference",
		"minChildren":  "minimum children",
		"minSupport":   "minimum support",
		"runID":        "run ID",
		"taxon":        "taxon",
		"leaf":         "leaf",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}

	return fieldName
}

// ValidateRange checks that value lies within [lo, hi].
func ValidateRange(fieldName string, value, lo, hi float64) error {
	if value < lo || value > hi {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s must be between %g and %g, got %g", formatFieldName(fieldName), lo, hi, value),
		}
	}
	return nil
}

// ValidateNonNegative checks that an integer option is not negative.
func ValidateNonNegative(fieldName string, value int) error {
	if value < 0 {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s must not be negative, got %d", formatFieldName(fieldName), value),
		}
	}
	return nil
}
