package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/t2bot/transfer-repo/common/config"
)

var srv *http.Server

func Handler() http.Handler {
	inner := promhttp.Handler()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		runBeforeMetricsRequested()
		inner.ServeHTTP(w, r)
	})
}

func Init(conf config.MetricsConfig) {
	if !conf.Enabled {
		logrus.Info("Metrics disabled")
		return
	}
	rtr := http.NewServeMux()
	rtr.Handle("/metrics", Handler())
	rtr.Handle("/_transfer/metrics", Handler())

	address := conf.BindAddress + ":" + strconv.Itoa(conf.Port)
	srv = &http.Server{Addr: address, Handler: rtr, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logrus.WithField("address", address).Info("Started metrics listener. Listening at http://" + address)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logrus.Fatal(err)
		}
	}()
}

func Stop() {
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logrus.Error("Error stopping metrics listener: ", err)
		}
		srv = nil
	}
}
