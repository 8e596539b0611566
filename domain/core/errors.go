package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Validation errors
	ErrInvalidCredMass     = errors.New("credible mass must be a finite value strictly between 0 and 1")
	ErrUnsupportedFamily   = errors.New("unsupported distribution family")
	ErrInvalidSapwoodCount = errors.New("sapwood count must be a non-negative integer")

	// Reference data errors
	ErrEmptyReferenceData      = errors.New("reference histogram contains no observations")
	ErrUnknownReferenceDataset = errors.New("unknown reference dataset")
	ErrMalformedReferenceFile  = errors.New("malformed reference file")

	// Projection and aggregation errors
	ErrInsufficientModelSupport = errors.New("observed sapwood count exceeds model support")
	ErrEmptyInputSet            = errors.New("no series records survived filtering")
)

// NewUnsupportedFamilyError reports an unknown distribution family by name
func NewUnsupportedFamilyError(name string) error {
	return fmt.Errorf("%w: %q", ErrUnsupportedFamily, name)
}

// NewInvalidCredMassError reports a credible mass outside the open unit interval
func NewInvalidCredMassError(credMass float64) error {
	return fmt.Errorf("%w: got %v", ErrInvalidCredMass, credMass)
}

// NewMalformedReferenceFileError wraps a parse failure with row context
func NewMalformedReferenceFileError(path string, row int, reason string) error {
	return fmt.Errorf("%w: %s row %d: %s", ErrMalformedReferenceFile, path, row, reason)
}

// NewUnknownReferenceDatasetError reports a dataset name with no catalog entry
func NewUnknownReferenceDatasetError(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownReferenceDataset, name)
}

// Error checking helpers
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidCredMass) ||
		errors.Is(err, ErrUnsupportedFamily) ||
		errors.Is(err, ErrInvalidSapwoodCount)
}

func IsReferenceDataError(err error) bool {
	return errors.Is(err, ErrEmptyReferenceData) ||
		errors.Is(err, ErrUnknownReferenceDataset) ||
		errors.Is(err, ErrMalformedReferenceFile)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrUnknownReferenceDataset)
}
