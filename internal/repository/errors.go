package repository

import "errors"

// ErrNotFound indicates that the requested record does not exist
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates that a record with the same key or uniqueness key already exists
var ErrAlreadyExists = errors.New("record already exists")

// ErrConditionFailed indicates that a conditional write was rejected because the
// stored record no longer satisfies the predicate. Callers re-read to find out why.
var ErrConditionFailed = errors.New("conditional write failed: record changed or predicate not met")

// IsNotFoundError checks if an error indicates a record was not found
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExistsError checks if an error indicates a uniqueness violation
func IsAlreadyExistsError(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsConditionFailedError checks if an error is a predicate failure
func IsConditionFailedError(err error) bool {
	return errors.Is(err, ErrConditionFailed)
}
