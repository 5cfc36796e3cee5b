package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Raymond9734/customer-registry/internal/service"
	"github.com/Raymond9734/customer-registry/internal/telemetry"
)

// RouterConfig collects the dependencies served by the HTTP API
type RouterConfig struct {
	CustomerService     service.CustomerService
	RegistrationService service.RegistrationService
	ImportService       service.ImportService
	DB                  HealthChecker
	Redis               HealthChecker
	Metrics             *telemetry.Metrics
	Gatherer            prometheus.Gatherer
	Logger              *slog.Logger
}

// NewRouter builds the chi router with all routes and middleware
func NewRouter(cfg RouterConfig) http.Handler {
	customerHandler := NewCustomerHandler(cfg.CustomerService, cfg.ImportService, cfg.Logger)
	registrationHandler := NewRegistrationHandler(cfg.RegistrationService, cfg.Logger)
	healthHandler := NewHealthHandler(cfg.DB, cfg.Redis, cfg.Logger)

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()

	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(MetricsMiddleware(cfg.Metrics))
	r.Use(CORSMiddleware)

	r.Get("/health", healthHandler.Health)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/customers", func(r chi.Router) {
			r.Get("/", customerHandler.ListCustomers)
			r.Post("/", customerHandler.AddCustomer)
			r.Post("/bulk", customerHandler.SaveCustomers)
			r.Post("/import", customerHandler.ImportCustomers)
			r.Get("/username/{userName}", customerHandler.GetCustomerByUserName)
			r.Get("/phone/{phoneNumber}", customerHandler.GetCustomerByPhoneNumber)
			r.Get("/{id}", customerHandler.GetCustomer)
			r.Put("/{id}", customerHandler.UpdateCustomer)
			r.Delete("/{id}", customerHandler.DeleteCustomer)
		})

		r.Post("/customer-registration", registrationHandler.Register)
	})

	return r
}
