package routers

import (
	"context"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/t2bot/transfer-repo/common"
	"github.com/t2bot/transfer-repo/util"
)

type RequestCounter struct {
	lastId atomic.Uint64
}

func (c *RequestCounter) NextId() string {
	return "REQ-" + strconv.FormatUint(c.lastId.Add(1)-1, 10)
}

type InstallMetadataRouter struct {
	next       http.Handler
	actionName string
	counter    *RequestCounter
}

func NewInstallMetadataRouter(actionName string, counter *RequestCounter, next http.Handler) *InstallMetadataRouter {
	return &InstallMetadataRouter{
		next:       next,
		actionName: actionName,
		counter:    counter,
	}
}

func (i *InstallMetadataRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestId := i.counter.NextId()
	logger := logrus.WithFields(logrus.Fields{
		"method":        r.Method,
		"host":          r.Host,
		"resource":      r.URL.Path,
		"contentType":   r.Header.Get("Content-Type"),
		"contentLength": r.ContentLength,
		"queryString":   util.GetLogSafeQueryString(r),
		"requestId":     requestId,
		"remoteAddr":    r.RemoteAddr,
		"userAgent":     r.UserAgent(),
	})

	ctx := r.Context()
	ctx = context.WithValue(ctx, common.ContextRequestId, requestId)
	ctx = context.WithValue(ctx, common.ContextAction, i.actionName)
	ctx = context.WithValue(ctx, common.ContextLogger, logger)
	ctx = context.WithValue(ctx, common.ContextStartTime, time.Now())
	r = r.WithContext(ctx)

	if i.next != nil {
		i.next.ServeHTTP(w, r)
	}
}

func GetActionName(r *http.Request) string {
	x, ok := r.Context().Value(common.ContextAction).(string)
	if !ok {
		return "<UNKNOWN>"
	}
	return x
}

func GetLogger(r *http.Request) *logrus.Entry {
	x, ok := r.Context().Value(common.ContextLogger).(*logrus.Entry)
	if !ok {
		return logrus.WithFields(logrus.Fields{"nocontext": true})
	}
	return x
}

func GetStartTime(r *http.Request) time.Time {
	x, ok := r.Context().Value(common.ContextStartTime).(time.Time)
	if !ok {
		return time.Time{}
	}
	return x
}
