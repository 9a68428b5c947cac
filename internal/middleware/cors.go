package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

const (
	corsAllowMethods = "GET, POST, PATCH, DELETE, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization"
)

// CORSPolicy decides which browser origins may call the API.
type CORSPolicy struct {
	// AllowedOrigins are matched exactly against the Origin header.
	AllowedOrigins []string
	// PreviewSuffix admits any origin whose host ends with it, e.g. ".vercel.app".
	PreviewSuffix string
}

// Allows reports whether origin may call the API.
func (p CORSPolicy) Allows(origin string) bool {
	for _, allowed := range p.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}

	if p.PreviewSuffix == "" {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Hostname()), strings.ToLower(p.PreviewSuffix))
}

// CORS applies the policy. Requests without an Origin header pass untouched;
// disallowed origins are rejected with 403.
func CORS(policy CORSPolicy, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Add("Vary", "Origin")

			if !policy.Allows(origin) {
				logger.Warn().
					Str("origin", origin).
					Str("path", r.URL.Path).
					Msg("origin rejected by CORS policy")
				writeError(w, http.StatusForbidden, "Not allowed by CORS")
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
			w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)

			// Handle preflight requests
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
