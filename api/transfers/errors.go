package transfers

import (
	"errors"

	"github.com/t2bot/transfer-repo/api/responses"
	"github.com/t2bot/transfer-repo/common"
)

func errorResponse(err error) *responses.ErrorResponse {
	switch {
	case errors.Is(err, common.ErrTransferTooLarge):
		return responses.TooLarge(err.Error())
	case errors.Is(err, common.ErrValidation):
		return responses.BadRequest(err.Error())
	case errors.Is(err, common.ErrTransferNotFound):
		return responses.NotFoundError()
	case errors.Is(err, common.ErrNotYetUploaded):
		return responses.NotYetUploaded()
	default:
		return responses.InternalServerError("unexpected error handling transfer")
	}
}
