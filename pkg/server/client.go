package server

import (
	"net"
	"net/http"
)

// clientIP identifies the caller by its socket address. Proxy headers only count when
// TRUST_PROXY is set, in which case chi's RealIP has already folded them into RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
