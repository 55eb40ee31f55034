// Package controllers translates HTTP verbs into repository calls: absence
// becomes 404, uniqueness conflicts 409, validation failures 422. Store errors
// pass through as a generic 500.
package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/digipraman/loantrack/internal/cache"
	httperrors "github.com/digipraman/loantrack/internal/http/errors"
	"github.com/digipraman/loantrack/internal/store/core"
)

// Limits bounds list pagination; values come from config.
type Limits struct {
	DefaultLimit int
	MaxLimit     int
}

// Controllers groups the per-entity handlers around shared dependencies.
// The repository is injected explicitly; there is no ambient global store.
type Controllers struct {
	Organizations *OrganizationsController
	Schemes       *SchemesController
	Users         *UsersController
	Devices       *DevicesController
	Health        *HealthController
}

func New(repo core.Repository, c cache.Cache, ttl time.Duration, limits Limits) *Controllers {
	if limits.DefaultLimit <= 0 {
		limits.DefaultLimit = 100
	}
	if limits.MaxLimit <= 0 {
		limits.MaxLimit = 1000
	}
	return &Controllers{
		Organizations: &OrganizationsController{repo: repo, limits: limits},
		Schemes:       &SchemesController{repo: repo, cache: c, ttl: ttl, limits: limits},
		Users:         &UsersController{repo: repo, cache: c, limits: limits},
		Devices:       &DevicesController{repo: repo, cache: c, ttl: ttl, limits: limits},
		Health:        &HealthController{repo: repo},
	}
}

// pathUUID validates the {param} URL segment as a UUID. Returns "" after
// writing the error response when invalid.
func pathUUID(w http.ResponseWriter, r *http.Request, param string) string {
	v := chi.URLParam(r, param)
	if _, err := uuid.Parse(v); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail(param+" must be a UUID"))
		return ""
	}
	return v
}
