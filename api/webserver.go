package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/didip/tollbooth/v7"
	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/sirupsen/logrus"
	"github.com/t2bot/transfer-repo/common/config"
	"github.com/t2bot/transfer-repo/limits"
)

var srv *http.Server
var waitGroup = &sync.WaitGroup{}

// BuildHandler assembles the full middleware stack around the routes.
func BuildHandler(cfg *config.TransferRepoConfig, deps *Dependencies) http.Handler {
	handler := buildRoutes(cfg, deps)

	if cfg.RateLimit.Enabled {
		logrus.Debug("Enabling rate limit")
		requestLimiter := limits.NewRequestLimiter(cfg.RateLimit)
		requestLimiter.SetOnLimitReached(func(w http.ResponseWriter, r *http.Request) {
			logrus.WithField("remoteAddr", limits.GetRequestIP(requestLimiter, r)).Warn("Rate limited request to ", r.URL.Path)
		})
		handler = tollbooth.LimitHandler(requestLimiter, handler)
	}

	// Note: we bind Sentry here to ensure we capture *everything*
	sentryHandler := sentryhttp.New(sentryhttp.Options{})
	return sentryHandler.Handle(handler)
}

func Init(cfg *config.TransferRepoConfig, deps *Dependencies) *sync.WaitGroup {
	address := net.JoinHostPort(cfg.General.BindAddress, strconv.Itoa(cfg.General.Port))

	srv = &http.Server{
		Addr:              address,
		Handler:           BuildHandler(cfg, deps),
		ReadHeaderTimeout: 30 * time.Second,
	}

	waitGroup.Add(1)
	go func() {
		//goland:noinspection HttpUrlsUsage
		logrus.WithField("address", address).Info("Started up. Listening at http://" + address)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			sentry.CaptureException(err)
			logrus.Fatal(err)
		}

		srv = nil
		waitGroup.Done()
	}()

	return waitGroup
}

func Stop() {
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logrus.Error("Error stopping web server: ", err)
		}
	}
}
