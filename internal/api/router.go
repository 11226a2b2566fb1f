package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/popeat/popeat/internal/api/handler"
	"github.com/popeat/popeat/internal/api/middleware"
	"github.com/popeat/popeat/internal/auth/role"
	"github.com/popeat/popeat/internal/config"
	"github.com/popeat/popeat/internal/security"
	"github.com/popeat/popeat/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles everything the router needs.
type Services struct {
	Auth       service.AuthService
	Order      service.OrderService
	Restaurant service.RestaurantService
	User       service.UserService
	Stats      service.StatsService
	System     service.SystemService
	Audit      security.Recorder
	Limiter    *security.RateLimiter
}

// NewRouter assembles the HTTP surface under /api/v1.
func NewRouter(logger *slog.Logger, services Services, cfg *config.Config) http.Handler {
	if services.Auth == nil {
		panic("router requires AuthService")
	}
	if services.Order == nil {
		panic("router requires OrderService")
	}
	if services.Restaurant == nil {
		panic("router requires RestaurantService")
	}
	if services.User == nil {
		panic("router requires UserService")
	}
	if services.Stats == nil {
		panic("router requires StatsService")
	}
	if services.System == nil {
		panic("router requires SystemService")
	}

	r := chi.NewRouter()

	mCfg := middleware.DefaultMetricsConfig()
	if cfg.Metrics.Namespace != "" {
		mCfg.Namespace = cfg.Metrics.Namespace
	}
	if cfg.Metrics.Subsystem != "" {
		mCfg.Subsystem = cfg.Metrics.Subsystem
	}
	if len(cfg.Metrics.Buckets) > 0 {
		mCfg.Buckets = cfg.Metrics.Buckets
	}

	r.Use(
		chiMiddleware.RequestID,
		chiMiddleware.RealIP,
	)

	var metrics *middleware.Metrics
	if cfg.Metrics.Enabled {
		metrics = middleware.NewMetrics(mCfg)
		r.Use(metrics.Middleware(mCfg))
	}

	rateCfg := middleware.DefaultRateLimitConfig()
	if cfg.Security.RequestsPerMinute > 0 {
		rateCfg.Limit = cfg.Security.RequestsPerMinute
	}

	r.Use(
		middleware.CORS(middleware.DefaultCORSConfig()),
		middleware.BodyLimit(cfg.HTTP.BodyLimitBytes),
		middleware.RateLimit(services.Limiter, rateCfg),
		middleware.StructuredLogger(middleware.LoggingConfig{
			Logger:        logger,
			SlowThreshold: 500 * time.Millisecond,
			SkipPaths:     []string{"/healthz", "/metrics"},
		}),
		chiMiddleware.Recoverer,
		chiMiddleware.Compress(5),
	)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		handler.Health(w)
	})
	if cfg.Metrics.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	passport := handler.NewPassportHandler(services.Auth)
	orders := handler.NewOrderHandler(services.Order)
	deliveries := handler.NewDeliveryHandler(services.Order)
	restaurants := handler.NewRestaurantHandler(services.Restaurant)
	adminUsers := handler.NewAdminUserHandler(services.User)
	adminStats := handler.NewAdminStatHandler(services.Stats)
	adminSystem := handler.NewAdminSystemHandler(services.System)

	authenticated := middleware.Authenticator(services.Auth)
	anyRole := middleware.RequireRoles(services.Audit)
	clientOnly := middleware.RequireRoles(services.Audit, role.Client)
	restaurateurOnly := middleware.RequireRoles(services.Audit, role.Restaurateur)
	adminOnly := middleware.RequireRoles(services.Audit, role.Admin)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/passport", func(r chi.Router) {
			r.Post("/register", passport.Register)
			r.Post("/login", passport.Login)
			r.With(authenticated, anyRole).Get("/me", passport.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticated)

			r.Route("/orders", func(r chi.Router) {
				r.With(clientOnly).Post("/", orders.Create)
				r.With(anyRole).Get("/", orders.List)
				r.With(anyRole).Get("/{id}", orders.Get)
				r.With(anyRole).Put("/{id}/status", orders.UpdateStatus)
			})

			r.Route("/restaurants", func(r chi.Router) {
				r.With(anyRole).Get("/", restaurants.List)
				r.With(anyRole).Get("/{id}", restaurants.Get)
				r.With(anyRole).Get("/{id}/articles", restaurants.Articles)
				r.With(restaurateurOnly).Post("/", restaurants.Create)
				r.With(restaurateurOnly).Put("/{id}", restaurants.Update)
				r.With(restaurateurOnly).Post("/{id}/articles", restaurants.CreateArticle)
			})

			r.Route("/articles", func(r chi.Router) {
				r.With(restaurateurOnly).Put("/{id}", restaurants.UpdateArticle)
				r.With(restaurateurOnly).Delete("/{id}", restaurants.DeleteArticle)
			})

			r.With(adminOnly).Post("/deliveries/{id}/assign", deliveries.Assign)

			r.Route("/admin", func(r chi.Router) {
				r.Use(adminOnly)
				r.Get("/users", adminUsers.List)
				r.Get("/users/{id}", adminUsers.Get)
				r.Post("/users/{id}/roles", adminUsers.GrantRole)
				r.Delete("/users/{id}/roles/{role}", adminUsers.RevokeRole)
				r.Get("/stats", adminStats.Overview)
				r.Get("/system", adminSystem.Status)
			})
		})
	})

	return r
}
