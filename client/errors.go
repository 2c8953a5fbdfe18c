package client

import (
	"fmt"
	"net/http"

	"github.com/t2bot/transfer-repo/common"
)

// TransportError is a failed exchange with the API or the object store. StatusCode is zero when
// no response arrived.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("transport error: %v", e.Err)
	}
	return fmt.Sprintf("transport error (HTTP %d): %v", e.StatusCode, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type apiError struct {
	Code    string `json:"errcode"`
	Message string `json:"error"`
	kind    error
}

func (e *apiError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

func (e *apiError) Unwrap() error {
	return e.kind
}

func kindForStatus(status int) error {
	switch status {
	case http.StatusBadRequest:
		return common.ErrValidation
	case http.StatusRequestEntityTooLarge:
		return common.ErrTransferTooLarge
	case http.StatusNotFound:
		return common.ErrTransferNotFound
	case http.StatusConflict:
		return common.ErrNotYetUploaded
	default:
		return nil
	}
}
