// Package errors defines the typed error taxonomy shared by the tariff,
// quote and import layers. Batch callers use the Is* helpers to decide
// between skipping a bad row and aborting the run.
package errors

import (
	"errors"
	"fmt"
)

// MalformedCodeError indicates a tariff code that cannot be parsed into
// segments at all. It is never retried; the source row must be fixed.
type MalformedCodeError struct {
	Code string
}

func (e *MalformedCodeError) Error() string {
	return fmt.Sprintf("malformed tariff code %q", e.Code)
}

// InvalidInputError indicates a negative monetary, weight or dimension input,
// or a tax rate outside [0,1]. Inputs are rejected before any arithmetic runs.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Field, e.Reason)
}

// MissingConfigurationError indicates a required configuration value (such as
// the freight rate per pound) is absent. Fatal for the calculation requesting
// it; other items are unaffected.
type MissingConfigurationError struct {
	Key string
}

func (e *MissingConfigurationError) Error() string {
	return fmt.Sprintf("required configuration %q is not set", e.Key)
}

// IsMalformedCode reports whether err is (or wraps) a MalformedCodeError.
func IsMalformedCode(err error) bool {
	var target *MalformedCodeError
	return errors.As(err, &target)
}

// IsInvalidInput reports whether err is (or wraps) an InvalidInputError.
func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}

// IsMissingConfiguration reports whether err is (or wraps) a MissingConfigurationError.
func IsMissingConfiguration(err error) bool {
	var target *MissingConfigurationError
	return errors.As(err, &target)
}
