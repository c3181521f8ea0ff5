package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/brewops/brewery-server/internal/auth"
	"github.com/brewops/brewery-server/internal/billing"
	"github.com/brewops/brewery-server/internal/cache"
	"github.com/brewops/brewery-server/internal/config"
	"github.com/brewops/brewery-server/internal/metrics"
	"github.com/brewops/brewery-server/internal/oauth"
	"github.com/brewops/brewery-server/internal/storage"
	"github.com/brewops/brewery-server/internal/tenant"
	"github.com/brewops/brewery-server/internal/validation"
)

// RESTServer represents the REST API server
type RESTServer struct {
	config    *config.Config
	store     storage.Store
	cache     cache.Cache
	auth      *auth.JWTManager
	refresh   *auth.RefreshManager
	resolver  *tenant.Resolver
	providers *oauth.Registry
	payments  billing.Provider
	validator *validation.Validator
	router    chi.Router
	server    *http.Server
}

// NewRESTServer creates a new REST API server
func NewRESTServer(cfg *config.Config, store storage.Store, c cache.Cache, providers *oauth.Registry, payments billing.Provider) *RESTServer {
	s := &RESTServer{
		config:    cfg,
		store:     store,
		cache:     c,
		auth:      auth.NewJWTManager(&cfg.JWT),
		refresh:   auth.NewRefreshManager(store, cfg.JWT.RefreshTokenTTL),
		resolver:  tenant.NewResolver(store),
		providers: providers,
		payments:  payments,
		validator: validation.NewValidator(),
		router:    chi.NewRouter(),
	}

	s.setupRoutes()

	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all routes
func (s *RESTServer) setupRoutes() {
	// Middleware
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(metrics.Middleware)

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", tenant.HeaderName},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.router.Handle("/metrics", metrics.Handler())

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		s.setupAPIRoutes(r)
	})
}

// Handler exposes the router (used by tests)
func (s *RESTServer) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the server
func (s *RESTServer) ListenAndServe(addr string) error {
	s.server.Addr = addr
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *RESTServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// authMiddleware validates the bearer token and stores its claims
func (s *RESTServer) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			s.respondError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			s.respondError(w, http.StatusUnauthorized, "invalid authorization header")
			return
		}

		claims, err := s.auth.ValidateToken(parts[1])
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.NewContext(r.Context(), claims)))
	})
}

// tenantMiddleware resolves the tenant scope for the request. Handlers
// behind it never touch headers or claims for tenant identity; an
// unresolved tenant fails closed with 401 before any data access.
func (s *RESTServer) tenantMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.FromContext(r.Context())
		if !ok {
			s.respondError(w, http.StatusUnauthorized, "missing authentication")
			return
		}

		tenantID, err := s.resolver.Resolve(r.Context(), r.Header.Get(tenant.HeaderName), claims.TenantID, claims.UserID)
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "tenant could not be resolved")
			return
		}

		next.ServeHTTP(w, r.WithContext(tenant.NewContext(r.Context(), tenantID)))
	})
}
