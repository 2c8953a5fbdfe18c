package common

type TransferContextKey string

const (
	ContextLogger       TransferContextKey = "tr.logger"
	ContextServerConfig TransferContextKey = "tr.serverConfig"
	ContextRequest      TransferContextKey = "tr.request"
	ContextAction       TransferContextKey = "tr.action"
	ContextRequestId    TransferContextKey = "tr.request_id"
	ContextStatusCode   TransferContextKey = "tr.status_code"
	ContextStartTime    TransferContextKey = "tr.start_time"
)
