package routers

import (
	"net/http"
)

type InstallHeadersRouter struct {
	next http.Handler
}

func NewInstallHeadersRouter(next http.Handler) *InstallHeadersRouter {
	return &InstallHeadersRouter{next: next}
}

func (i *InstallHeadersRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	headers := w.Header()
	headers.Set("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept")
	headers.Set("Access-Control-Allow-Methods", "GET, HEAD, POST, PUT, OPTIONS")
	headers.Set("Access-Control-Allow-Origin", "*")
	headers.Set("X-Content-Type-Options", "nosniff")
	headers.Set("X-Robots-Tag", "noindex, nofollow, noarchive, noimageindex")
	headers.Set("Server", "transfer-repo")

	if i.next != nil {
		i.next.ServeHTTP(w, r)
	}
}
