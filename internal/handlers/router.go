package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/marble-idols/storefront/internal/platform/httpx"
)

// RouteRegistrar adds routes to r.
type RouteRegistrar func(r chi.Router)

type routeGroup struct {
	path      string
	name      string
	registrar RouteRegistrar
}

type routerConfig struct {
	apiPrefix   string
	middlewares []func(http.Handler) http.Handler
	corsOrigins []string
	trustProxy  bool
	health      *HealthHandlers

	public   RouteRegistrar
	checkout RouteRegistrar
	root     []RouteRegistrar
}

// Option customises the router before construction.
type Option func(*routerConfig)

const (
	defaultAPIPrefix  = "/api/v1"
	defaultTimeout    = 60 * time.Second
	errorNotFoundCode = "route_not_found"
)

// NewRouter builds the storefront router. Versioned groups without a registrar answer 501 so
// clients can tell a disabled feature from a typo.
func NewRouter(opts ...Option) chi.Router {
	cfg := routerConfig{apiPrefix: defaultAPIPrefix}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.health == nil {
		cfg.health = NewHealthHandlers()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if cfg.trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Timeout(defaultTimeout))
	if len(cfg.corsOrigins) > 0 {
		r.Use(corsMiddleware(cfg.corsOrigins))
	}
	for _, mw := range cfg.middlewares {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError(errorNotFoundCode, fmt.Sprintf("no route for %s", req.URL.Path), http.StatusNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("method_not_allowed", fmt.Sprintf("method %s not allowed on %s", req.Method, req.URL.Path), http.StatusMethodNotAllowed))
	})

	r.Get("/healthz", cfg.health.Healthz)
	r.Get("/readyz", cfg.health.Readyz)

	for _, registrar := range cfg.root {
		if registrar != nil {
			registrar(r)
		}
	}

	groups := []routeGroup{
		{path: "/public", name: "public", registrar: cfg.public},
		{path: "/checkout", name: "checkout", registrar: cfg.checkout},
	}
	r.Route(cfg.apiPrefix, func(api chi.Router) {
		for _, group := range groups {
			api.Route(group.path, func(sub chi.Router) {
				if group.registrar == nil {
					registerNotImplemented(sub, group.name)
					return
				}
				group.registrar(sub)
			})
		}
	})

	return r
}

// WithMiddlewares runs mw after the built-in middleware and CORS.
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithCORSOrigins allows browser calls from the listed origins. "*" allows any origin.
func WithCORSOrigins(origins ...string) Option {
	return func(cfg *routerConfig) {
		cfg.corsOrigins = append(cfg.corsOrigins, origins...)
	}
}

// WithTrustedProxy rewrites RemoteAddr from X-Forwarded-For or X-Real-IP. Without it those
// headers are ignored.
func WithTrustedProxy(trusted bool) Option {
	return func(cfg *routerConfig) {
		cfg.trustProxy = trusted
	}
}

// WithHealthHandlers replaces the /healthz and /readyz handlers.
func WithHealthHandlers(h *HealthHandlers) Option {
	return func(cfg *routerConfig) {
		cfg.health = h
	}
}

// WithPublicRoutes mounts the catalog and page endpoints under /api/v1/public.
func WithPublicRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.public = reg
	}
}

// WithCheckoutRoutes mounts the hand-off endpoints under /api/v1/checkout.
func WithCheckoutRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.checkout = reg
	}
}

// WithRootRoutes registers routes outside the versioned prefix, such as /buy/{slug}.
func WithRootRoutes(reg ...RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.root = append(cfg.root, reg...)
	}
}

func registerNotImplemented(r chi.Router, name string) {
	notImplemented := func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("not_implemented", fmt.Sprintf("%s routes are not enabled", name), http.StatusNotImplemented))
	}
	r.HandleFunc("/", notImplemented)
	r.HandleFunc("/*", notImplemented)
	r.NotFound(notImplemented)
	r.MethodNotAllowed(notImplemented)
}
