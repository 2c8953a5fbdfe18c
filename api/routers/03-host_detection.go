package routers

import (
	"net"
	"net/http"
	"strings"

	"github.com/sebest/xff"
)

// HostRouter normalises the Host header and resolves the client address through trusted proxies.
type HostRouter struct {
	next            http.Handler
	trustAnyForward bool
}

func NewHostRouter(trustAnyForward bool, next http.Handler) *HostRouter {
	return &HostRouter{next: next, trustAnyForward: trustAnyForward}
}

func (h *HostRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Host = strings.Split(r.Host, ":")[0]

	var raddr string
	if h.trustAnyForward {
		raddr = strings.TrimSpace(strings.Split(r.Header.Get("X-Forwarded-For"), ",")[0])
	} else {
		raddr = xff.GetRemoteAddr(r)
	}
	if raddr == "" {
		raddr = r.RemoteAddr
	}
	host, _, err := net.SplitHostPort(raddr)
	if err != nil {
		// Already a bare address
		host = raddr
	}
	r.RemoteAddr = host

	if h.next != nil {
		h.next.ServeHTTP(w, r)
	}
}
