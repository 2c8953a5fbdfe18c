package common

const ErrCodeNotFound = "M_NOT_FOUND"
const ErrCodeTooLarge = "M_TOO_LARGE"
const ErrCodeMethodNotAllowed = "M_METHOD_NOT_ALLOWED"
const ErrCodeBadRequest = "M_BAD_REQUEST"
const ErrCodeBadJson = "M_BAD_JSON"
const ErrCodeNotYetUploaded = "M_NOT_YET_UPLOADED"
const ErrCodeRateLimitExceeded = "M_LIMIT_EXCEEDED"
const ErrCodeUnknown = "M_UNKNOWN"
