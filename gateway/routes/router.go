package routes

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lendvault/gateway/middleware"
	"lendvault/native/lending"
)

// Config gathers the collaborators the router mounts handlers against.
type Config struct {
	Engine      *lending.Engine
	Oracle      *lending.ManualOracle
	RateLimiter *middleware.RateLimiter
	Logger      *slog.Logger
}

// New builds the gateway HTTP handler.
func New(cfg Config) (http.Handler, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("configure routes: nil engine")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(cfg.Logger))
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Middleware())
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	lr := newLendingRoutes(cfg.Engine, cfg.Oracle)
	r.Route("/v1", func(sub chi.Router) {
		lr.mount(sub)
		sub.Route("/admin", func(admin chi.Router) {
			lr.mountAdmin(admin)
		})
	})

	return r, nil
}
