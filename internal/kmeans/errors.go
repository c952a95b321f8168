package kmeans

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration is returned when the run parameters are unusable.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrEmptyDataset is returned when the dataset has no points.
	ErrEmptyDataset = errors.New("empty dataset")
)

// ConfigError describes which parameter made a configuration invalid.
//
// It unwraps to ErrInvalidConfiguration.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfiguration }

func configErrorf(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
