// Package httputil holds small HTTP request helpers shared by the API layer.
package httputil

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the client IP address for a request. When trustProxy is
// true the X-Forwarded-For chain is consulted first and the leftmost entry
// that parses as an IP wins, then X-Real-IP; otherwise only RemoteAddr is
// used. Enable trustProxy only behind a trusted reverse proxy, since the
// forwarding headers are client-controlled.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		for _, part := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
			candidate := strings.TrimSpace(part)
			if net.ParseIP(candidate) != nil {
				return candidate
			}
		}
		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
			return xri
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
