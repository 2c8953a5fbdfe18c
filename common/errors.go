package common

import (
	"errors"
	"fmt"
)

var ErrTransferNotFound = errors.New("transfer not found")
var ErrTransferTooLarge = errors.New("transfer too large")
var ErrNotYetUploaded = errors.New("transfer not yet uploaded")
var ErrValidation = errors.New("invalid transfer request")
var ErrObjectNotFound = errors.New("object not found")
var ErrEmailDisabled = errors.New("email notifications are disabled")

// ValidationError describes a rejected request. Nothing has been written when one is returned.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func NewValidationError(field string, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: ErrValidation}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// StorageError wraps a failure talking to the object store (signing, reads other than a
// missing key, writes).
type StorageError struct {
	Op  string
	Key string
	Err error
}

func NewStorageError(op string, key string, err error) *StorageError {
	return &StorageError{Op: op, Key: key, Err: err}
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage %s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func IsStorageError(err error) bool {
	var serr *StorageError
	return errors.As(err, &serr)
}
