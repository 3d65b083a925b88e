package tensor

import (
	"github.com/pkg/errors"
)

// Error kinds returned by the clip operators.
//
// Every failure is detected before any numeric work and wraps exactly one of
// these sentinels, so callers test with errors.Is.
var (
	// ErrTypeMismatch reports an unsupported or inconsistent element type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrShapeMismatch reports operand shapes that cannot be broadcast together.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrUsage reports an invalid argument combination, such as a raw Go value
	// where a program variable is required.
	ErrUsage = errors.New("usage error")
)

// TypeMismatchf wraps ErrTypeMismatch with a formatted message.
func TypeMismatchf(format string, args ...any) error {
	return errors.Wrapf(ErrTypeMismatch, format, args...)
}

// ShapeMismatchf wraps ErrShapeMismatch with a formatted message.
func ShapeMismatchf(format string, args ...any) error {
	return errors.Wrapf(ErrShapeMismatch, format, args...)
}

// Usagef wraps ErrUsage with a formatted message.
func Usagef(format string, args ...any) error {
	return errors.Wrapf(ErrUsage, format, args...)
}
