package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ogsoda/delivery-backend/api/controllers"
	"github.com/ogsoda/delivery-backend/api/middleware"
	"github.com/ogsoda/delivery-backend/internal/admin"
	"github.com/ogsoda/delivery-backend/internal/auth"
	"github.com/ogsoda/delivery-backend/internal/customers"
	"github.com/ogsoda/delivery-backend/internal/orders"
	"github.com/ogsoda/delivery-backend/internal/users"
	"github.com/ogsoda/delivery-backend/pkg/auth/session"
	"github.com/ogsoda/delivery-backend/pkg/config"
	"github.com/ogsoda/delivery-backend/pkg/logger"
	"github.com/ogsoda/delivery-backend/pkg/metrics"
	"github.com/ogsoda/delivery-backend/pkg/redis"
)

// RouterParams carries everything the HTTP surface depends on.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    *redis.Client
	Sessions session.AccessSessionChecker

	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
	AuthMetrics *metrics.AuthMetrics

	Auth       auth.Service
	Customers  customers.Service
	Orders     orders.Service
	OrderTemp  orders.Service
	Aggregator orders.Aggregator
	Users      users.Service
	Admin      admin.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg, logg := p.Config, p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Recoverer(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
		middleware.Metrics(p.HTTPMetrics),
	)

	var cache controllers.Pinger
	loginLimit := func(next http.Handler) http.Handler { return next }
	if p.Redis != nil {
		cache = p.Redis
		loginPolicy := middleware.NewAuthRateLimitPolicy(
			"login",
			cfg.AuthRateLimit.LoginWindow,
			cfg.AuthRateLimit.LoginIPLimit,
			cfg.AuthRateLimit.LoginIdentifierLimit,
		)
		loginLimit = middleware.AuthRateLimit(loginPolicy, p.Redis, p.AuthMetrics, logg)
	}

	authenticated := middleware.Auth(cfg.JWT, p.Sessions, logg)
	adminOnly := middleware.RequireAdmin(logg)

	r.Get("/health", controllers.Health(cfg, p.DB, cache, logg))
	if p.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/auth", func(r chi.Router) {
		r.With(loginLimit).Post("/login", controllers.AuthLogin(p.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.Auth, logg))
		r.With(authenticated).Post("/logout", controllers.AuthLogout(p.Auth, logg))
		r.With(authenticated).Get("/me", controllers.AuthMe(p.Auth, logg))
	})

	r.Route("/customers", func(r chi.Router) {
		r.Post("/", controllers.CustomerCreate(p.Customers, logg))
		r.Get("/", controllers.CustomerList(p.Customers, logg))
		r.Get("/{id}", controllers.CustomerGet(p.Customers, logg))
		r.Put("/{id}", controllers.CustomerUpdate(p.Customers, logg))
		r.Delete("/{id}", controllers.CustomerDelete(p.Customers, logg))
	})

	r.Route("/orders", func(r chi.Router) {
		mountOrderRoutes(r, p.Orders, logg)
		r.Get("/agent/{user_id}/summary", controllers.OrderAgentSummary(p.Aggregator, logg))
		r.Get("/summary/by-date", controllers.OrderDateSummary(p.Aggregator, logg))
	})

	r.Route("/order-temp", func(r chi.Router) {
		mountOrderRoutes(r, p.OrderTemp, logg)
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", controllers.UserList(p.Users, logg))
		r.Post("/", controllers.UserCreate(p.Users, logg))
		r.Get("/exclude-poweradmin", controllers.UserListExcludingPowerAdmin(p.Users, logg))
		r.Get("/role/{role}", controllers.UserListByRole(p.Users, logg))
		r.With(authenticated, adminOnly).Get("/password-hash", controllers.UserPasswordHash(p.Users, logg))
		r.Get("/{id}", controllers.UserGet(p.Users, logg))
		r.Put("/{id}", controllers.UserUpdate(p.Users, logg))
		r.Delete("/{id}", controllers.UserDelete(p.Users, logg))
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticated, adminOnly)
		r.Get("/metrics", controllers.AdminMetrics(p.Admin, logg))
	})

	return r
}

func mountOrderRoutes(r chi.Router, svc orders.Service, logg *logger.Logger) {
	r.Post("/", controllers.OrderCreate(svc, logg))
	r.Get("/", controllers.OrderList(svc, logg))
	r.Get("/customer/{id}", controllers.OrderListByCustomer(svc, logg))
	r.Get("/delivered-by/{id}", controllers.OrderListByDeliveredBy(svc, logg))
	r.Get("/{id}", controllers.OrderGet(svc, logg))
	r.Put("/{id}", controllers.OrderUpdate(svc, logg))
	r.Delete("/{id}", controllers.OrderDelete(svc, logg))
}
