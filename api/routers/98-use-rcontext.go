package routers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/t2bot/transfer-repo/api/responses"
	"github.com/t2bot/transfer-repo/common"
	"github.com/t2bot/transfer-repo/common/config"
	"github.com/t2bot/transfer-repo/common/rcontext"
)

type GeneratorFn = func(r *http.Request, ctx rcontext.RequestContext) interface{}

type RContextRouter struct {
	generatorFn GeneratorFn
	config      *config.TransferRepoConfig
	next        http.Handler
}

func NewRContextRouter(cfg *config.TransferRepoConfig, generatorFn GeneratorFn, next http.Handler) *RContextRouter {
	return &RContextRouter{generatorFn: generatorFn, config: cfg, next: next}
}

func (c *RContextRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := GetLogger(r)
	rctx := rcontext.RequestContext{
		Context: r.Context(),
		Log:     log,
		Config:  c.config,
		Request: r,
	}

	var res interface{}
	res = c.generatorFn(r, rctx)
	if res == nil {
		res = &responses.EmptyResponse{}
	}

	// Responses carry short-lived signed URLs, so nothing is cacheable
	headers := w.Header()
	headers.Set("Cache-Control", "no-store")
	proposedStatusCode := http.StatusOK

	if wrappedRes, isNoCache := res.(*responses.DoNotCacheResponse); isNoCache {
		res = wrappedRes.Payload
	}
	if createdRes, isCreated := res.(*responses.CreatedResponse); isCreated {
		proposedStatusCode = http.StatusCreated
		res = createdRes.Payload
	}

	if redirect, isRedirect := res.(*responses.RedirectResponse); isRedirect {
		log.Infof("Replying with redirect")
		http.Redirect(w, r, redirect.ToUrl, http.StatusFound)
		r = withStatusCode(r, http.StatusFound)
		if c.next != nil {
			c.next.ServeHTTP(w, r)
		}
		return
	}

	// Try to find a suitable error code, if one is needed
	if errRes, isError := res.(responses.ErrorResponse); isError {
		res = &errRes // just fix it
	}
	if errRes, isError := res.(*responses.ErrorResponse); isError {
		proposedStatusCode = StatusCodeFor(errRes)
	}
	log.Infof("Replying with result: %T %+v", res, res)

	b, err := json.Marshal(res)
	if err != nil {
		panic(err) // blow up this request
	}

	headers.Set("Content-Type", "application/json")
	headers.Set("Content-Length", strconv.Itoa(len(b)))

	r = writeStatusCode(w, r, proposedStatusCode)
	if _, err = io.Copy(w, bytes.NewReader(b)); err != nil {
		panic(errors.New("error sending response: " + err.Error()))
	}

	if c.next != nil {
		c.next.ServeHTTP(w, r)
	}
}

func StatusCodeFor(errRes *responses.ErrorResponse) int {
	switch errRes.InternalCode {
	case common.ErrCodeNotFound:
		return http.StatusNotFound
	case common.ErrCodeTooLarge:
		return http.StatusRequestEntityTooLarge
	case common.ErrCodeBadRequest, common.ErrCodeBadJson:
		return http.StatusBadRequest
	case common.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case common.ErrCodeNotYetUploaded:
		return http.StatusConflict
	case common.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	default: // Treat as unknown (a generic server error)
		return http.StatusInternalServerError
	}
}

func GetStatusCode(r *http.Request) int {
	x, ok := r.Context().Value(common.ContextStatusCode).(int)
	if !ok {
		return http.StatusOK
	}
	return x
}

func writeStatusCode(w http.ResponseWriter, r *http.Request, statusCode int) *http.Request {
	w.WriteHeader(statusCode)
	return withStatusCode(r, statusCode)
}

func withStatusCode(r *http.Request, statusCode int) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), common.ContextStatusCode, statusCode))
}
