package responses

import "github.com/t2bot/transfer-repo/common"

type EmptyResponse struct{}

type DoNotCacheResponse struct {
	Payload interface{}
}

// CreatedResponse renders its payload with 201 Created.
type CreatedResponse struct {
	Payload interface{}
}

type RedirectResponse struct {
	ToUrl string
}

func Redirect(url string) *RedirectResponse {
	return &RedirectResponse{ToUrl: url}
}

type ErrorResponse struct {
	Code         string `json:"errcode"`
	Message      string `json:"error"`
	InternalCode string `json:"-"`
}

func InternalServerError(message string) *ErrorResponse {
	return &ErrorResponse{common.ErrCodeUnknown, message, common.ErrCodeUnknown}
}

func MethodNotAllowed() *ErrorResponse {
	return &ErrorResponse{common.ErrCodeUnknown, "Method Not Allowed", common.ErrCodeMethodNotAllowed}
}

func RateLimitReached() *ErrorResponse {
	return &ErrorResponse{common.ErrCodeRateLimitExceeded, "Rate Limited", common.ErrCodeRateLimitExceeded}
}

func NotFoundError() *ErrorResponse {
	return &ErrorResponse{common.ErrCodeNotFound, "Not found", common.ErrCodeNotFound}
}

func TooLarge(message string) *ErrorResponse {
	return &ErrorResponse{common.ErrCodeTooLarge, message, common.ErrCodeTooLarge}
}

func BadRequest(message string) *ErrorResponse {
	return &ErrorResponse{common.ErrCodeBadRequest, message, common.ErrCodeBadRequest}
}

func BadJson(message string) *ErrorResponse {
	return &ErrorResponse{common.ErrCodeBadJson, message, common.ErrCodeBadRequest}
}

func NotYetUploaded() *ErrorResponse {
	return &ErrorResponse{common.ErrCodeNotYetUploaded, "The file has not finished uploading yet", common.ErrCodeNotYetUploaded}
}
