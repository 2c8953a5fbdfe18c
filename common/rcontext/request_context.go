package rcontext

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/t2bot/transfer-repo/common"
	"github.com/t2bot/transfer-repo/common/config"
)

func Initial(cfg *config.TransferRepoConfig) RequestContext {
	return RequestContext{
		Context: context.Background(),
		Log:     logrus.WithFields(logrus.Fields{"nocontext": true}),
		Config:  cfg,
		Request: nil,
	}.populate()
}

func Background(ctx context.Context, log *logrus.Entry, cfg *config.TransferRepoConfig) RequestContext {
	return RequestContext{
		Context: ctx,
		Log:     log,
		Config:  cfg,
	}.populate()
}

type RequestContext struct {
	context.Context

	// These are also stored on the context object itself
	Log     *logrus.Entry              // tr.logger
	Config  *config.TransferRepoConfig // tr.serverConfig
	Request *http.Request              // tr.request
}

func (c RequestContext) populate() RequestContext {
	c.Context = context.WithValue(c.Context, common.ContextLogger, c.Log)
	c.Context = context.WithValue(c.Context, common.ContextServerConfig, c.Config)
	c.Context = context.WithValue(c.Context, common.ContextRequest, c.Request)
	return c
}

func (c RequestContext) ReplaceLogger(log *logrus.Entry) RequestContext {
	ctx := context.WithValue(c.Context, common.ContextLogger, log)
	return RequestContext{
		Context: ctx,
		Log:     log,
		Config:  c.Config,
		Request: c.Request,
	}
}

func (c RequestContext) LogWithFields(fields logrus.Fields) RequestContext {
	return c.ReplaceLogger(c.Log.WithFields(fields))
}

// WithContext swaps the underlying context, keeping logger and config. Used to attach deadlines.
func (c RequestContext) WithContext(ctx context.Context) RequestContext {
	c.Context = ctx
	return c.populate()
}
