package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/msmolicek/App-UZama-Grill-Secured/internal/auth"
	rpcmw "github.com/msmolicek/App-UZama-Grill-Secured/internal/middleware"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/report"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/service"
)

// Services groups everything the router mounts.
type Services struct {
	Health  HealthHandler
	Ledger  *service.LedgerService
	Admin   *service.AdminService
	Auth    *service.AuthService
	Reports report.Handler
	JWT     *auth.JWTManager
}

// NewRouter wires HTTP routes and middleware.
func NewRouter(s Services) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(isRPC))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type",
			"Connect-Protocol-Version", "Connect-Timeout-Ms"},
		ExposedHeaders: []string{"Connect-Protocol-Version", "Connect-Timeout-Ms"},
		MaxAge:         300,
	}))
	r.Use(httprate.LimitByIP(600, 1*time.Minute))

	s.Health.RegisterRoutes(r)
	r.Method("GET", "/metrics", promhttp.Handler())

	logging := rpcmw.LoggingInterceptor()
	opts := service.HandlerOptions(logging)
	s.Ledger.RegisterRoutes(r, opts)
	s.Auth.RegisterRoutes(r, opts)
	s.Admin.RegisterRoutes(r, service.HandlerOptions(logging, rpcmw.RequireAdmin(s.JWT)))

	r.Group(func(ar chi.Router) {
		ar.Use(rpcmw.RequireAdminHTTP(s.JWT))
		s.Reports.RegisterRoutes(ar)
	})

	return r
}

func isRPC(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/grill.v1.")
}
