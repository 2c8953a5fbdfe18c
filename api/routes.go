package api

import (
	"net/http"
	"os"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/t2bot/transfer-repo/api/custom"
	"github.com/t2bot/transfer-repo/api/debug"
	"github.com/t2bot/transfer-repo/api/routers"
	"github.com/t2bot/transfer-repo/api/transfers"
	"github.com/t2bot/transfer-repo/common/config"
	"github.com/t2bot/transfer-repo/controllers/transfer_controller"
	"github.com/t2bot/transfer-repo/datastores"
)

var prefixes = []string{"/transfer", "/api/transfer"}

// Dependencies are the services the HTTP surface dispatches to.
type Dependencies struct {
	Controller *transfer_controller.Controller

	// LocalStorage serves signed URLs for the local driver. Nil for remote object stores.
	LocalStorage http.Handler
}

func buildRoutes(cfg *config.TransferRepoConfig, deps *Dependencies) http.Handler {
	counter := &routers.RequestCounter{}
	router := buildPrimaryRouter()

	pprofSecret := os.Getenv("TRANSFER_PPROF_SECRET_KEY")
	if pprofSecret != "" {
		logrus.Warn("Enabling pprof/debug http endpoints")
		debug.BindPprofEndpoints(router, pprofSecret)
	}

	mk := func(generator routers.GeneratorFn, name string) http.Handler {
		return makeRoute(cfg, generator, name, counter)
	}

	register([]string{"POST"}, "", router, mk(transfers.CreateTransfer(deps.Controller), "create_transfer"))
	register([]string{"GET"}, "/:id", router, mk(transfers.ResolveTransfer(deps.Controller), "resolve_transfer"))
	register([]string{"POST"}, "/:id/confirm", router, mk(transfers.ConfirmTransfer(deps.Controller), "confirm_transfer"))
	router.Handler("GET", "/d/:id", mk(transfers.ShareLink(deps.Controller), "share_link"))

	router.Handler("GET", "/version", mk(custom.GetVersion, "get_version"))
	healthzRoute := mk(custom.GetHealthz, "healthz")
	router.Handler("GET", "/healthz", healthzRoute)
	router.Handler("HEAD", "/healthz", healthzRoute)

	if deps.LocalStorage != nil {
		storageRoute := routers.NewHostRouter(cfg.General.TrustAnyForward, routers.NewInstallHeadersRouter(deps.LocalStorage))
		for _, method := range []string{"GET", "HEAD", "PUT"} {
			router.Handler(method, datastores.LocalPathPrefix+"*key", storageRoute)
		}
	}

	return router
}

func makeRoute(cfg *config.TransferRepoConfig, generator routers.GeneratorFn, name string, counter *routers.RequestCounter) http.Handler {
	return routers.NewInstallMetadataRouter(name, counter,
		routers.NewInstallHeadersRouter(
			routers.NewHostRouter(cfg.General.TrustAnyForward,
				routers.NewMetricsRequestRouter(
					routers.NewRContextRouter(cfg, generator, routers.NewMetricsResponseRouter(nil)),
				),
			),
		))
}

func register(methods []string, postfix string, router *httprouter.Router, handler http.Handler) {
	for _, method := range methods {
		for _, prefix := range prefixes {
			path := prefix + postfix
			router.Handler(method, path, handler)
			logrus.Debug("Registering route: ", method, path)
		}
	}
}
