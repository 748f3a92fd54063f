package errors

import (
	"fmt"
)

// Helper functions for common error types

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewRangeParseError reports a malformed postcode range declaration.
func NewRangeParseError(line int, value string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, fmt.Sprintf("invalid postcode range %q", value), cause).
		WithContext("line", line).
		WithContext("range", value)
}

// NewMissingSnapshotError reports an expected monthly input that is absent.
func NewMissingSnapshotError(month, path string) *AppError {
	return NewAppError(ErrTypeMissingSnapshot, fmt.Sprintf("snapshot for month %s not found", month), nil).
		WithContext("month", month).
		WithContext("path", path)
}

// NewSeasonLookupError reports a month that the season table does not cover,
// or a season code whose letter has no name.
func NewSeasonLookupError(month, detail string) *AppError {
	return NewAppError(ErrTypeSeasonLookup, fmt.Sprintf("no season for month %s: %s", month, detail), nil).
		WithContext("month", month)
}

// NewJoinMissError describes a left-join miss. It is never returned from a
// stage; enrichment records it and null-propagates.
func NewJoinMissError(kind, key string) *AppError {
	return NewAppError(ErrTypeJoinMiss, fmt.Sprintf("%s %s has no match", kind, key), nil).
		WithContext("kind", kind).
		WithContext("key", key)
}

// NewRankInputError describes a row that cannot take part in ranking.
func NewRankInputError(group, reason string) *AppError {
	return NewAppError(ErrTypeRankInput, fmt.Sprintf("group %s: %s", group, reason), nil).
		WithContext("group", group)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
