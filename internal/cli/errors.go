package cli

import (
	"errors"
	"fmt"
	"strings"

	engerrors "github.com/annybogatova/tmanagement/internal/engine/errors"
)

// ErrorFormatter provides user-friendly error formatting.
type ErrorFormatter struct {
	verbose bool
}

// NewErrorFormatter creates a new error formatter.
func NewErrorFormatter(verbose bool) *ErrorFormatter {
	return &ErrorFormatter{verbose: verbose}
}

// Format converts an error to a user-friendly message, mapping the engine's
// typed error kinds (§7) to operator-facing guidance.
func (e *ErrorFormatter) Format(err error) string {
	if err == nil {
		return ""
	}

	var validationErr *engerrors.ValidationError
	if errors.As(err, &validationErr) {
		return fmt.Sprintf("Invalid configuration: %s\nHint: check your graph file and engine flags.", validationErr.Error())
	}

	var orderErr *engerrors.InvalidOrderError
	if errors.As(err, &orderErr) {
		return fmt.Sprintf("Internal scheduling error: %s\nThis indicates a bug in the orderer, not bad input.", orderErr.Error())
	}

	var workerErr *engerrors.WorkerFailure
	if errors.As(err, &workerErr) {
		return fmt.Sprintf("A simulation worker failed and the run was aborted: %s\nHint: retry with --workers 1 to isolate the failing seed.", workerErr.Error())
	}

	var logErr *engerrors.LogWriteFailure
	if errors.As(err, &logErr) {
		return fmt.Sprintf("Could not write the best-order log file: %s\nThe simulation result itself is still valid.", logErr.Error())
	}

	errStr := err.Error()

	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "context deadline exceeded") {
		return "Operation timed out. Try increasing the timeout with --timeout flag."
	}

	if strings.Contains(errStr, "connection") || strings.Contains(errStr, "network") {
		return "Network connection failed (likely the MongoDB store). Please check connectivity and --mongo-uri."
	}

	if e.verbose {
		return fmt.Sprintf("Error: %s", err.Error())
	}

	if parts := strings.Split(errStr, ":"); len(parts) > 1 {
		return strings.TrimSpace(parts[len(parts)-1])
	}

	return err.Error()
}

// FormatValidationError formats validation errors with helpful context.
func FormatValidationError(field, value, reason string) error {
	return fmt.Errorf("validation failed for %s '%s': %s", field, value, reason)
}

// WrapWithSuggestion wraps an error with a helpful suggestion.
func WrapWithSuggestion(err error, suggestion string) error {
	return fmt.Errorf("%w\nHint: %s", err, suggestion)
}
