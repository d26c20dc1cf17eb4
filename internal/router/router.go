package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Reissam/ajuda-tech-hub/internal/access"
	"github.com/Reissam/ajuda-tech-hub/internal/config"
	"github.com/Reissam/ajuda-tech-hub/internal/handlers"
	"github.com/Reissam/ajuda-tech-hub/internal/metrics"
	"github.com/Reissam/ajuda-tech-hub/internal/middleware"
	"github.com/Reissam/ajuda-tech-hub/internal/repository"
	"github.com/Reissam/ajuda-tech-hub/internal/service"
	"github.com/Reissam/ajuda-tech-hub/internal/session"
	"github.com/Reissam/ajuda-tech-hub/internal/utils"
)

// Deps is everything the HTTP layer needs, built once in main.
type Deps struct {
	Log      zerolog.Logger
	Config   config.Config
	Metrics  *metrics.Recorder
	Gatherer prometheus.Gatherer
	Auth     *service.AuthService
	Sessions *session.Manager
	Profiles repository.ProfileRepository
	Checks   map[string]handlers.Pinger
}

func New(d Deps) http.Handler {
	cfg := d.Config
	r := chi.NewRouter()

	r.Use(middleware.RequestID(d.Log))
	r.Use(middleware.RequestLogger(d.Metrics))
	r.Use(middleware.Recoverer(d.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "X-Total-Count"},
		AllowCredentials: true,
	}))
	r.Use(httprate.Limit(cfg.RateLimitPerMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			utils.Error(w, http.StatusTooManyRequests, "too many requests")
		}),
	))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.Error(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/healthz", handlers.Health(d.Checks))
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	ah := handlers.NewAuthHTTP(d.Auth, !cfg.IsDev())
	th := handlers.NewTicketHTTP()
	ch := handlers.NewClientHTTP()
	uh := handlers.NewUserHTTP(d.Profiles, d.Sessions)
	rh := handlers.NewReportsHTTP()

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.WithAuth(d.Log, cfg.SessionSecret))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", ah.SignUp())
			r.Post("/signin", ah.SignIn())
			r.Post("/signout", ah.SignOut())
			r.With(middleware.RequireWorkspace(d.Sessions)).Get("/me", ah.Me())
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.RequireWorkspace(d.Sessions))

			r.Route("/tickets", func(r chi.Router) {
				r.Get("/", th.List())
				r.Post("/", th.Create())
				r.Post("/reload", th.Reload())
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", th.Get())
					r.Patch("/", th.Update())
					r.Post("/assign", th.Assign())
					r.Post("/comments", th.AddComment())
					r.Get("/transitions", th.Transitions())
				})
			})

			r.Route("/clients", func(r chi.Router) {
				r.Use(middleware.RequirePermission(access.CanAccessClientDirectory))
				r.Get("/", ch.List())
				r.Post("/", ch.Create())
				r.Post("/reload", ch.Reload())
				r.Get("/{id}", ch.Get())
				r.Patch("/{id}", ch.Update())
			})

			r.Route("/users", func(r chi.Router) {
				manage := middleware.RequirePermission(access.CanManageUsers)
				r.With(manage).Get("/", uh.List())
				r.Route("/{id}", func(r chi.Router) {
					r.With(manage).Patch("/role", uh.UpdateRole())
					r.With(manage).Patch("/active", uh.SetActive())
					r.With(middleware.RequireSelfOr(access.CanManageUsers)).Patch("/basic", uh.UpdateBasic())
				})
			})

			r.Get("/reports/summary", rh.Summary())
		})
	})

	return r
}
