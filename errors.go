package kmviz

import (
	"errors"
	"fmt"

	"github.com/hupe1980/kmviz/internal/kmeans"
)

var (
	// ErrInvalidConfiguration is returned when a request or option cannot be
	// run: k out of range, a manual seed count mismatch, an unknown method,
	// non-finite coordinates.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrEmptyDataset is returned when a request has no points.
	ErrEmptyDataset = errors.New("empty dataset")
)

// ConfigError names the offending parameter of an invalid configuration.
//
// errors.Is(err, ErrInvalidConfiguration) holds for every ConfigError. The
// underlying error (if any) can be accessed via errors.Unwrap.
type ConfigError struct {
	Field  string
	Reason string
	cause  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrInvalidConfiguration.
func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfiguration }

func (e *ConfigError) Unwrap() error { return e.cause }

func configErrorf(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var ce *kmeans.ConfigError
	if errors.As(err, &ce) {
		return &ConfigError{Field: ce.Field, Reason: ce.Reason, cause: err}
	}
	if errors.Is(err, kmeans.ErrInvalidConfiguration) {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	if errors.Is(err, kmeans.ErrEmptyDataset) {
		return ErrEmptyDataset
	}

	return err
}
