package config

import (
	"fmt"
	"net/url"
	"strings"

	"git-sync-operator/pkg/logging"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// Validate checks the loaded configuration and reports every problem at once.
func (c Config) Validate() error {
	var errs ValidationErrors

	if strings.TrimSpace(c.Repo) == "" {
		errs.Add(KeyRepo, "is required")
	}
	if len(c.ManagedNamespaces) == 0 {
		errs.Add(KeyManagedNamespaces, "must list at least one namespace")
	}
	seen := make(map[string]bool, len(c.ManagedNamespaces))
	for _, ns := range c.ManagedNamespaces {
		if seen[ns] {
			errs.Add(KeyManagedNamespaces, fmt.Sprintf("namespace %q listed twice", ns), ns)
		}
		seen[ns] = true
	}
	if strings.TrimSpace(c.Dir) == "" {
		errs.Add(KeyDir, "must not be empty")
	}
	if strings.TrimSpace(c.Branch) == "" {
		errs.Add(KeyBranch, "must not be empty")
	}
	if c.Interval <= 0 {
		errs.Add(KeyInterval, "must be a positive number of seconds", c.Interval)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs.Add(KeyLogFormat, "must be text or json", c.LogFormat)
	}
	if _, ok := logging.ParseLevel(c.LogLevel); !ok {
		errs.Add(KeyLogLevel, "must be one of debug, info, warn, error", c.LogLevel)
	}
	if c.FieldManager == "" {
		errs.Add(KeyFieldManager, "must not be empty")
	}
	if c.WebhookURL != "" {
		u, err := url.Parse(c.WebhookURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs.Add(KeyWebhookURL, "must be an absolute http(s) URL", c.WebhookURL)
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
