package config

import (
	"fmt"
	"strings"
)

// ConfigurationError describes one configuration key that could not be
// loaded or parsed.
type ConfigurationError struct {
	Key         string   `json:"key"`         // Configuration key, e.g. GIT_SYNC_INTERVAL
	Source      string   `json:"source"`      // "file" or "env"
	ErrorType   string   `json:"errorType"`   // parse, io, validation
	Message     string   `json:"message"`     // Human-readable error message
	Suggestions []string `json:"suggestions"` // Actionable suggestions to fix the error
}

// Error implements the error interface
func (ce ConfigurationError) Error() string {
	if ce.Source == "" {
		return fmt.Sprintf("%s: %s", ce.Key, ce.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", ce.Source, ce.Key, ce.Message)
}

// DetailedError returns a detailed error message with all context
func (ce ConfigurationError) DetailedError() string {
	parts := []string{
		fmt.Sprintf("Configuration Error for %s", ce.Key),
		fmt.Sprintf("  Type: %s", ce.ErrorType),
		fmt.Sprintf("  Error: %s", ce.Message),
	}
	if ce.Source != "" {
		parts = append(parts, fmt.Sprintf("  Source: %s", ce.Source))
	}
	if len(ce.Suggestions) > 0 {
		parts = append(parts, "  Suggestions:")
		for _, suggestion := range ce.Suggestions {
			parts = append(parts, fmt.Sprintf("    - %s", suggestion))
		}
	}
	return strings.Join(parts, "\n")
}

// ConfigurationErrorCollection holds multiple configuration errors
type ConfigurationErrorCollection struct {
	Errors []ConfigurationError `json:"errors"`
}

// Error implements the error interface for the collection
func (cec ConfigurationErrorCollection) Error() string {
	if len(cec.Errors) == 0 {
		return "no configuration errors"
	}

	if len(cec.Errors) == 1 {
		return cec.Errors[0].Error()
	}

	return fmt.Sprintf("%d configuration errors: %s (and %d more)",
		len(cec.Errors), cec.Errors[0].Error(), len(cec.Errors)-1)
}

// HasErrors returns true if there are any errors in the collection
func (cec *ConfigurationErrorCollection) HasErrors() bool {
	return len(cec.Errors) > 0
}

// Add adds a new error to the collection
func (cec *ConfigurationErrorCollection) Add(err ConfigurationError) {
	cec.Errors = append(cec.Errors, err)
}

// DetailedError joins the detailed message of every error.
func (cec ConfigurationErrorCollection) DetailedError() string {
	parts := make([]string, 0, len(cec.Errors))
	for _, err := range cec.Errors {
		parts = append(parts, err.DetailedError())
	}
	return strings.Join(parts, "\n\n")
}
