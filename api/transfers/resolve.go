package transfers

import (
	"net/http"

	"github.com/t2bot/transfer-repo/api/responses"
	"github.com/t2bot/transfer-repo/api/routers"
	"github.com/t2bot/transfer-repo/common/rcontext"
	"github.com/t2bot/transfer-repo/controllers/transfer_controller"
	"github.com/t2bot/transfer-repo/types"
)

type ResolveTransferResponse struct {
	Meta        *types.Transfer `json:"meta"`
	DownloadUrl string          `json:"downloadUrl"`
	ShareUrl    string          `json:"shareUrl"`
}

func ResolveTransfer(controller *transfer_controller.Controller) routers.GeneratorFn {
	return func(r *http.Request, rctx rcontext.RequestContext) interface{} {
		res, err := controller.Resolve(rctx, routers.GetParam("id", r))
		if err != nil {
			return errorResponse(err)
		}
		return &ResolveTransferResponse{
			Meta:        res.Transfer,
			DownloadUrl: res.DownloadUrl,
			ShareUrl:    res.ShareUrl,
		}
	}
}

// ShareLink sends browsers following a share link straight to the artifact.
func ShareLink(controller *transfer_controller.Controller) routers.GeneratorFn {
	return func(r *http.Request, rctx rcontext.RequestContext) interface{} {
		res, err := controller.Resolve(rctx, routers.GetParam("id", r))
		if err != nil {
			return errorResponse(err)
		}
		return responses.Redirect(res.DownloadUrl)
	}
}
