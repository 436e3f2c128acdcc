package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/mdnspanel/internal/logger"
	"github.com/MrSnakeDoc/mdnspanel/internal/utils"
)

// AllowOnlyCIDRS keeps the panel reachable only from the configured networks.
// trustProxy makes X-Forwarded-For and X-Real-IP authoritative; set it only
// behind a reverse proxy that rewrites them. An empty list disables the check.
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	m := utils.NewIPMatcher(allowed)
	if m.IsEmpty() {
		log.Debug("network guard disabled")
		return func(next http.Handler) http.Handler { return next }
	}

	log.Debug("network guard enabled",
		logger.Strings("cidrs", allowed),
		logger.Bool("trust_proxy", trustProxy))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if m.Allow(ip) {
				next.ServeHTTP(w, r)
				return
			}

			log.Warn("panel request rejected",
				logger.String("guard", "network"),
				logger.String("client_ip", ip),
				logger.String("remote_addr", r.RemoteAddr),
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path))
			forbidden(w, "client address not allowed")
		})
	}
}
