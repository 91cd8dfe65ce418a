package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"fieldreport/internal/http/handlers"
	"fieldreport/internal/middleware"
)

// Options carries the request-scoped middleware settings.
type Options struct {
	AllowedOrigins  []string
	RateLimitPerMin int
	DefaultLocale   string
	CountryLookup   middleware.CountryLookup
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID(app.Logger),
		middleware.Logger(app.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	// Health
	r.Get("/health", app.Health)
	r.Get("/v1/healthz", app.Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", app.Status)
		r.Get("/submissions/{jobID}", app.Submission)
		r.Group(func(r chi.Router) {
			if opts.RateLimitPerMin > 0 {
				r.Use(middleware.RateLimit(opts.RateLimitPerMin, opts.RateLimitPerMin, 10*time.Minute))
			}
			r.Post("/submit", app.Submit)
		})
	})

	return r
}
