package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigurationError indicates a malformed date-query value: unknown mode,
// missing required parameter or invalid timezone. FieldID and Operator are
// set once the error has passed through a filter leaf.
type ConfigurationError struct {
	FieldID  string
	Operator Operator
	Mode     DateMode
	Reason   string
}

func NewConfigurationError(mode DateMode, reason string) *ConfigurationError {
	return &ConfigurationError{Mode: mode, Reason: reason}
}

// WithLeaf returns a copy of the error attributed to a field and operator
func (e *ConfigurationError) WithLeaf(fieldID string, operator Operator) *ConfigurationError {
	annotated := *e
	annotated.FieldID = fieldID
	annotated.Operator = operator
	return &annotated
}

func (e *ConfigurationError) Error() string {
	var details []string
	if e.FieldID != "" {
		details = append(details, "field "+e.FieldID)
	}
	if e.Operator != "" {
		details = append(details, "operator "+string(e.Operator))
	}
	if e.Mode != "" {
		details = append(details, "mode "+string(e.Mode))
	}
	if len(details) == 0 {
		return fmt.Sprintf("invalid date filter: %s", e.Reason)
	}
	return fmt.Sprintf("invalid date filter (%s): %s", strings.Join(details, ", "), e.Reason)
}

// IsConfigurationError checks if the error is a ConfigurationError.
func IsConfigurationError(err error) bool {
	var e *ConfigurationError
	return errors.As(err, &e)
}

// UnsupportedOperatorError indicates the operator is not valid for the field's type.
type UnsupportedOperatorError struct {
	FieldID  string
	Kind     string
	Operator Operator
}

func NewUnsupportedOperatorError(fieldID, kind string, operator Operator) *UnsupportedOperatorError {
	return &UnsupportedOperatorError{FieldID: fieldID, Kind: kind, Operator: operator}
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("operator %s is not supported for %s field %s", e.Operator, e.Kind, e.FieldID)
}

// IsUnsupportedOperatorError checks if the error is an UnsupportedOperatorError.
func IsUnsupportedOperatorError(err error) bool {
	var e *UnsupportedOperatorError
	return errors.As(err, &e)
}

// UnknownFieldError indicates a filter or sort references a field that is not
// part of the supplied descriptors, e.g. a field deleted after the view was saved.
type UnknownFieldError struct {
	FieldID string
}

func NewUnknownFieldError(fieldID string) *UnknownFieldError {
	return &UnknownFieldError{FieldID: fieldID}
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("field not found with ID: %s", e.FieldID)
}

// IsUnknownFieldError checks if the error is an UnknownFieldError.
func IsUnknownFieldError(err error) bool {
	var e *UnknownFieldError
	return errors.As(err, &e)
}

// InvalidValueError indicates a filter value failed type coercion.
type InvalidValueError struct {
	FieldID  string
	Operator Operator
	Value    string
	Reason   string
}

func NewInvalidValueError(fieldID string, operator Operator, value, reason string) *InvalidValueError {
	return &InvalidValueError{FieldID: fieldID, Operator: operator, Value: value, Reason: reason}
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %s for operator %s on field %s: %s", e.Value, e.Operator, e.FieldID, e.Reason)
}

// IsInvalidValueError checks if the error is an InvalidValueError.
func IsInvalidValueError(err error) bool {
	var e *InvalidValueError
	return errors.As(err, &e)
}
