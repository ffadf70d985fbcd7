// Package httpapi exposes the chat operations over HTTP with JSON bodies.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"chat-sync/auth"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

func NewRouter(log *slog.Logger, h *Handler, authenticator auth.Authenticator, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(cfg.AllowedOrigins))
	r.Use(Metrics())
	if cfg.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	}

	r.NotFound(h.NotFound)

	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/auth", h.Authenticate)

	r.Group(func(r chi.Router) {
		r.Use(RequireSession(authenticator))

		r.Get("/me", h.Me)
		r.Get("/users", h.Users)
		r.Route("/messages", func(r chi.Router) {
			r.Get("/history", h.History)
			r.Get("/new", h.Since)
			r.Post("/send", h.Send)
			r.Delete("/delete", h.Delete)
		})
	})

	return r
}

// NewServer wraps the router in an http.Server with conservative timeouts.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
