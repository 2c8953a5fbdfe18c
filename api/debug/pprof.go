package debug

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"net/http/pprof"
	"strings"

	"github.com/julienschmidt/httprouter"
)

const prefix = "/_transfer"

func BindPprofEndpoints(httpMux *httprouter.Router, secret string) {
	httpMux.Handler("GET", prefix+"/debug/pprof/", pprofServe(pprof.Index, secret))
	for _, name := range []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"} {
		httpMux.Handler("GET", prefix+"/debug/pprof/"+name, pprofServe(pprof.Index, secret))
	}
	httpMux.Handler("GET", prefix+"/debug/pprof/cmdline", pprofServe(pprof.Cmdline, secret))
	httpMux.Handler("GET", prefix+"/debug/pprof/profile", pprofServe(pprof.Profile, secret))
	httpMux.Handler("GET", prefix+"/debug/pprof/trace", pprofServe(pprof.Trace, secret))
}

type generatorFn = func(w http.ResponseWriter, r *http.Request)

type requestContainer struct {
	secret string
	fn     generatorFn
}

func pprofServe(fn generatorFn, secret string) http.Handler {
	return &requestContainer{
		secret: secret,
		fn:     fn,
	}
}

func (c *requestContainer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		auth = "Bearer " + r.URL.Query().Get("access_token")
	}
	if subtle.ConstantTimeCompare([]byte(auth), []byte("Bearer "+c.secret)) != 1 {
		// Order is important: Set headers before sending responses
		w.Header().Set("Content-Type", "application/json; charset=UTF-8")
		w.WriteHeader(http.StatusUnauthorized)

		encoder := json.NewEncoder(w)
		_ = encoder.Encode(&map[string]bool{"success": false})
		return
	}

	// pprof.Index works out the profile name from the path
	r.URL.Path = strings.TrimPrefix(r.URL.Path, prefix)
	c.fn(w, r)
}
