package transfers

import (
	"net/http"

	"github.com/t2bot/transfer-repo/api/routers"
	"github.com/t2bot/transfer-repo/common/rcontext"
	"github.com/t2bot/transfer-repo/controllers/transfer_controller"
)

type ConfirmTransferResponse struct {
	OK bool `json:"ok"`
}

func ConfirmTransfer(controller *transfer_controller.Controller) routers.GeneratorFn {
	return func(r *http.Request, rctx rcontext.RequestContext) interface{} {
		if err := controller.Confirm(rctx, routers.GetParam("id", r)); err != nil {
			return errorResponse(err)
		}
		return &ConfirmTransferResponse{OK: true}
	}
}
