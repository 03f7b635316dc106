package models

import "fmt"

// DataIntegrityError indicates corrupt or out-of-order input data.
// It aborts a run before any computation happens.
type DataIntegrityError struct {
	Symbol string
	Reason string
}

func NewDataIntegrityError(symbol, format string, a ...interface{}) *DataIntegrityError {
	return &DataIntegrityError{Symbol: symbol, Reason: fmt.Sprintf(format, a...)}
}

func (e *DataIntegrityError) Error() string {
	if e.Symbol == "" {
		return "data integrity: " + e.Reason
	}
	return fmt.Sprintf("data integrity [%s]: %s", e.Symbol, e.Reason)
}

// ConfigurationError indicates an invalid run configuration.
// It is raised before simulation starts.
type ConfigurationError struct {
	Field  string
	Reason string
}

func NewConfigurationError(field, format string, a ...interface{}) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, a...)}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration [%s]: %s", e.Field, e.Reason)
}
