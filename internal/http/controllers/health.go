package controllers

import (
	"net/http"

	httperrors "github.com/digipraman/loantrack/internal/http/errors"
	"github.com/digipraman/loantrack/internal/http/helpers"
	"github.com/digipraman/loantrack/internal/observability/logger"
	"github.com/digipraman/loantrack/internal/store/core"
)

type HealthController struct {
	repo core.Repository
}

// Root handles GET / with a service banner.
func (c *HealthController) Root(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Loan Verification Workflow API",
	})
}

// Health handles GET /health. Process liveness only; no dependencies touched.
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// HealthDB handles GET /health/db and round-trips the store.
func (c *HealthController) HealthDB(w http.ResponseWriter, r *http.Request) {
	if err := c.repo.Ping(r.Context()); err != nil {
		logger.From(r.Context()).Warn("store ping failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrStoreUnavailable)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]string{
		"status":   "healthy",
		"database": "connected",
	})
}
