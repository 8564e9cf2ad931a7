package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/wakala/partner-recon/internal/config"
	"github.com/wakala/partner-recon/internal/reconciliation"
	"github.com/wakala/partner-recon/internal/repository"
)

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(
	svc *reconciliation.Service,
	runs *repository.RunRepo,
	cfg *config.Configuration,
	log *zap.Logger,
) http.Handler {
	h := &Handlers{
		svc:  svc,
		runs: runs,
		cfg:  cfg,
		log:  log,
	}

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(CORS(cfg.Server.CORSOrigin))
	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	r.Route("/api/v1", func(r chi.Router) {
		// Reconciliation.
		r.Post("/reconcile", h.Reconcile)

		// Single-file normalization previews.
		r.Post("/normalize/statement", h.NormalizeStatement)
		r.Post("/normalize/settlement", h.NormalizeSettlement)

		// Audit ledger.
		r.Get("/runs", h.ListRuns)
		r.Get("/runs/{id}", h.GetRun)

		// Health.
		r.Get("/health", h.Health)
	})

	return r
}
