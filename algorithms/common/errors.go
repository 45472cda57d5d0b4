package common

import (
	"errors"
	"fmt"
)

// Error categories. Use errors.Is to test which category an error belongs to.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrComputation   = errors.New("computation error")
)

// ConfigurationError reports an invalid analysis parameter
type ConfigurationError struct {
	Param  string
	Value  any
	Reason string
}

// NewConfigurationError builds a ConfigurationError for param
func NewConfigurationError(param string, value any, reason string) *ConfigurationError {
	return &ConfigurationError{Param: param, Value: value, Reason: reason}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Param, e.Value, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// ComputationError reports a numerical failure inside a pipeline stage
type ComputationError struct {
	Op     string
	Reason string
	Err    error
}

// NewComputationError builds a ComputationError for op
func NewComputationError(op, reason string) *ComputationError {
	return &ComputationError{Op: op, Reason: reason}
}

func (e *ComputationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *ComputationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrComputation, e.Err}
	}
	return []error{ErrComputation}
}
