package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Dataset shape errors
	ErrEmptyDataset     = errors.New("dataset has no columns")
	ErrColumnNotFound   = errors.New("column not found")
	ErrLabelRequired    = errors.New("dataset has no label column")
	ErrNoSharedFeatures = errors.New("train and test datasets share no feature columns")

	// Computation errors
	ErrInsufficientSamples = errors.New("insufficient samples for analysis")

	// Prediction errors
	ErrMissingPrediction = errors.New("response has no prediction field")
)

// NewColumnNotFoundError names the column that could not be resolved
func NewColumnNotFoundError(column string) error {
	return fmt.Errorf("%w: %q", ErrColumnNotFound, column)
}

// NewInsufficientSamplesError reports how many samples were available against how many are needed
func NewInsufficientSamplesError(what string, have, need int) error {
	return fmt.Errorf("%w: %s has %d samples, need at least %d", ErrInsufficientSamples, what, have, need)
}

// IsDatasetError reports whether err stems from an incompatible dataset layout
func IsDatasetError(err error) bool {
	return errors.Is(err, ErrEmptyDataset) ||
		errors.Is(err, ErrColumnNotFound) ||
		errors.Is(err, ErrLabelRequired) ||
		errors.Is(err, ErrNoSharedFeatures) ||
		errors.Is(err, ErrInsufficientSamples)
}
