package custom

import (
	"net/http"

	"github.com/t2bot/transfer-repo/api/responses"
	"github.com/t2bot/transfer-repo/common/rcontext"
)

type HealthzResponse struct {
	OK     bool   `json:"ok"`
	Status string `json:"status"`
}

func GetHealthz(r *http.Request, rctx rcontext.RequestContext) interface{} {
	return &responses.DoNotCacheResponse{
		Payload: &HealthzResponse{
			OK:     true,
			Status: "Probably not dead",
		},
	}
}
