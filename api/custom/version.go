package custom

import (
	"net/http"

	"github.com/t2bot/transfer-repo/api/responses"
	"github.com/t2bot/transfer-repo/common/rcontext"
	"github.com/t2bot/transfer-repo/common/version"
)

func GetVersion(r *http.Request, rctx rcontext.RequestContext) interface{} {
	return &responses.DoNotCacheResponse{
		Payload: map[string]interface{}{
			"Version":   version.Version,
			"GitCommit": version.GitCommit,
		},
	}
}
