package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/t2bot/transfer-repo/api/responses"
	"github.com/t2bot/transfer-repo/api/routers"
	"github.com/t2bot/transfer-repo/metrics"
	"github.com/t2bot/transfer-repo/util"
)

func buildPrimaryRouter() *httprouter.Router {
	router := httprouter.New()
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false // ids are case sensitive
	router.MethodNotAllowed = http.HandlerFunc(methodNotAllowedFn)
	router.NotFound = http.HandlerFunc(notFoundFn)
	router.HandleOPTIONS = true
	router.GlobalOPTIONS = routers.NewInstallHeadersRouter(http.HandlerFunc(finishCorsFn))
	router.PanicHandler = panicFn
	return router
}

func countInvalidRequest(r *http.Request) {
	metrics.InvalidHttpRequests.With(prometheus.Labels{
		"action": routers.GetActionName(r),
		"method": r.Method,
	}).Inc()
}

func writeError(w http.ResponseWriter, res *responses.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(routers.StatusCodeFor(res))
	b, err := json.Marshal(res)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("error preparing %s: %v", res.InternalCode, err))
		logrus.Errorf("error preparing %s: %v", res.InternalCode, err)
		return
	}
	_, _ = w.Write(b)
}

func methodNotAllowedFn(w http.ResponseWriter, r *http.Request) {
	countInvalidRequest(r)
	writeError(w, responses.MethodNotAllowed())
}

func notFoundFn(w http.ResponseWriter, r *http.Request) {
	countInvalidRequest(r)
	writeError(w, responses.NotFoundError())
}

func finishCorsFn(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func panicFn(w http.ResponseWriter, r *http.Request, i interface{}) {
	logrus.Errorf("Panic received on %s %s: %s", r.Method, util.GetLogSafeUrl(r), i)

	//goland:noinspection GoTypeAssertionOnErrors
	if e, ok := i.(error); ok {
		sentry.CaptureException(e)
	} else {
		sentry.CaptureMessage(fmt.Sprintf("Unknown panic received: %T %s %+v", i, i, i))
	}

	writeError(w, responses.InternalServerError("unexpected error"))
}
