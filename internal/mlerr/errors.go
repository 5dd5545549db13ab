// Package mlerr defines the validation failures raised by every pipeline stage.
//
// All of them are local and non-retryable: the caller must fix the input and
// call again. Detail is attached with errors.Wrapf so errors.Is keeps working.
package mlerr

import (
	"github.com/pkg/errors"
)

var (
	// ErrInvalidSample reports a raw input that is malformed or incompatible
	// with the extractor configuration.
	ErrInvalidSample = errors.New("invalid sample")

	// ErrEmptyTrainingSet reports a fit request without data.
	ErrEmptyTrainingSet = errors.New("empty training set")

	// ErrShapeMismatch reports a feature vector whose length disagrees with
	// the length a model was trained on.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrUnsupportedCapability reports a capability (scores, decoding)
	// requested from a model variant that lacks it.
	ErrUnsupportedCapability = errors.New("unsupported capability")

	// ErrLengthMismatch reports paired inputs of different arity.
	ErrLengthMismatch = errors.New("length mismatch")
)

// InvalidSample wraps ErrInvalidSample with the offending sample id.
func InvalidSample(id string, format string, args ...any) error {
	return errors.Wrapf(ErrInvalidSample, "sample %q: "+format, append([]any{id}, args...)...)
}

// ShapeMismatch wraps ErrShapeMismatch with the expected and actual lengths.
func ShapeMismatch(row, want, got int) error {
	return errors.Wrapf(ErrShapeMismatch, "row %d: expected %d features, got %d", row, want, got)
}

// LengthMismatch wraps ErrLengthMismatch with both lengths.
func LengthMismatch(what string, a, b int) error {
	return errors.Wrapf(ErrLengthMismatch, "%s: %d vs %d", what, a, b)
}

// Unsupported wraps ErrUnsupportedCapability naming the model and capability.
func Unsupported(model, capability string) error {
	return errors.Wrapf(ErrUnsupportedCapability, "%s does not support %s", model, capability)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
