package transfers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/t2bot/transfer-repo/api/responses"
	"github.com/t2bot/transfer-repo/api/routers"
	"github.com/t2bot/transfer-repo/common/rcontext"
	"github.com/t2bot/transfer-repo/controllers/transfer_controller"
	"github.com/t2bot/transfer-repo/types"
	"github.com/t2bot/transfer-repo/util"
)

const maxRequestBodyBytes = 64 * 1024

type CreateTransferRequest struct {
	Filename    string                `json:"filename"`
	Size        int64                 `json:"size"`
	ContentType string                `json:"contentType"`
	Sender      *types.SenderIdentity `json:"sender,omitempty"`

	// Older clients send the sender as one of these instead
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
}

func (r *CreateTransferRequest) senderIdentity() types.SenderIdentity {
	if r.Sender != nil && !r.Sender.IsZero() {
		return *r.Sender
	}
	if r.Email != "" {
		return types.EmailSender(r.Email)
	}
	if r.Username != "" {
		return types.DisplayNameSender(r.Username)
	}
	return types.SenderIdentity{}
}

type CreateTransferResponse struct {
	Id        string `json:"id"`
	UploadUrl string `json:"uploadUrl"`
	ShareUrl  string `json:"shareUrl"`
}

func CreateTransfer(controller *transfer_controller.Controller) routers.GeneratorFn {
	return func(r *http.Request, rctx rcontext.RequestContext) interface{} {
		req := CreateTransferRequest{}
		decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
		if err := decoder.Decode(&req); err != nil {
			rctx.Log.Debug("Error parsing create request: ", err)
			return responses.BadJson("request body must be a JSON object")
		}

		res, err := controller.Create(rctx, &transfer_controller.CreateRequest{
			Filename:    req.Filename,
			SizeBytes:   req.Size,
			ContentType: req.ContentType,
			Sender:      req.senderIdentity(),
		})
		if err != nil {
			rctx.Log.Info("Rejected transfer: ", err)
			return errorResponse(err)
		}

		rctx.Log.WithFields(logrus.Fields{
			"transferId": res.Transfer.Id,
			"uploadUrl":  util.LogSafeUrl(res.UploadUrl),
		}).Debug("Issued upload URL")
		return &responses.CreatedResponse{
			Payload: &CreateTransferResponse{
				Id:        res.Transfer.Id,
				UploadUrl: res.UploadUrl,
				ShareUrl:  res.ShareUrl,
			},
		}
	}
}
