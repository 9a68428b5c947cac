package router

import (
	"net/http"

	"pharma-plus/internal/handler"
	"pharma-plus/internal/middleware"

	"github.com/rs/zerolog"
)

// Handlers groups the endpoint handlers the router mounts.
type Handlers struct {
	Product *handler.ProductHandler
	Auth    *handler.AuthHandler
	Health  *handler.HealthHandler
}

// Options configures cross-cutting behaviour.
type Options struct {
	CORS middleware.CORSPolicy

	// ProtectWrites requires a bearer token on product mutations.
	ProtectWrites bool
	Verifier      middleware.TokenVerifier

	// Metrics, when set, observes every request and MetricsHandler is
	// mounted at /metrics.
	Metrics        middleware.RequestObserver
	MetricsHandler http.Handler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	protect := func(next http.HandlerFunc) http.Handler {
		if !opts.ProtectWrites {
			return next
		}
		return middleware.RequireAuth(opts.Verifier, logger)(next)
	}

	// Liveness
	mux.HandleFunc("GET /{$}", h.Health.Root)
	mux.HandleFunc("GET /api/health", h.Health.Health)

	// Products
	mux.HandleFunc("GET /api/products", h.Product.List)
	mux.HandleFunc("GET /api/products/{id}", h.Product.Get)
	mux.Handle("POST /api/products", protect(h.Product.Create))
	mux.Handle("PATCH /api/products/{id}", protect(h.Product.Update))
	mux.Handle("DELETE /api/products/{id}", protect(h.Product.Delete))

	// Auth
	mux.HandleFunc("POST /api/auth/signup", h.Auth.Signup)
	mux.HandleFunc("POST /api/auth/register", h.Auth.Signup)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)

	// Anything else under /api is a JSON 404
	mux.HandleFunc("/api/", handler.NotFound)

	if opts.MetricsHandler != nil {
		mux.Handle("GET /metrics", opts.MetricsHandler)
	}

	// Apply middleware in order: Recovery -> RequestID -> Logging -> Metrics -> CORS
	var handler http.Handler = mux
	handler = middleware.CORS(opts.CORS, logger)(handler)
	if opts.Metrics != nil {
		handler = middleware.Metrics(opts.Metrics)(handler)
	}
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
