package mw

import (
	"net"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/mdnspanel/internal/logger"
)

// EnforceHost serves the panel only under the configured host names.
// Patterns may use a leading wildcard ("*.lan"). The port and letter case of
// the Host header are ignored. An empty list disables the check.
func EnforceHost(allowedHosts []string, log logger.Logger) func(http.Handler) http.Handler {
	if len(allowedHosts) == 0 {
		log.Debug("host guard disabled")
		return func(next http.Handler) http.Handler { return next }
	}

	patterns := make([]string, len(allowedHosts))
	for i, p := range allowedHosts {
		patterns[i] = strings.ToLower(p)
	}
	log.Debug("host guard enabled", logger.Strings("hosts", patterns))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := hostname(r.Host)
			for _, pattern := range patterns {
				if matchHost(host, pattern) {
					next.ServeHTTP(w, r)
					return
				}
			}

			log.Warn("panel request rejected",
				logger.String("guard", "host"),
				logger.String("host", r.Host),
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path))
			forbidden(w, "host not allowed")
		})
	}
}

// hostname drops the port and lowercases a Host header.
func hostname(hostport string) string {
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		hostport = h
	}
	return strings.ToLower(strings.Trim(hostport, "[]"))
}

// matchHost reports whether host equals pattern or, for "*.suffix", is a subdomain of it.
func matchHost(host, pattern string) bool {
	if host == pattern {
		return true
	}
	if suffix, ok := strings.CutPrefix(pattern, "*"); ok && strings.HasPrefix(suffix, ".") {
		return strings.HasSuffix(host, suffix)
	}
	return false
}

// forbidden writes the API's JSON error body with a 403.
func forbidden(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}` + "\n"))
}
