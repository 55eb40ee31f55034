package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/digipraman/loantrack/internal/cache"
	"github.com/digipraman/loantrack/internal/http/dto"
	httperrors "github.com/digipraman/loantrack/internal/http/errors"
	"github.com/digipraman/loantrack/internal/http/helpers"
	"github.com/digipraman/loantrack/internal/observability/logger"
	"github.com/digipraman/loantrack/internal/store/core"
)

type SchemesController struct {
	repo   core.Repository
	cache  cache.Cache
	ttl    time.Duration
	limits Limits
}

func schemeCodeKey(code string) string { return "scheme:code:" + code }

// Create handles POST /schemes/. The code pre-check is advisory; the store's
// unique constraint is the authority on concurrent inserts.
func (c *SchemesController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Op("SchemesController.Create"))

	var req dto.SchemeCreate
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	switch {
	case req.OrgID == "":
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("_org_id is required"))
		return
	case req.Code == "":
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("code is required"))
		return
	case req.Name == "":
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("name is required"))
		return
	}

	if _, err := c.repo.GetOrganization(ctx, req.OrgID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrOrganizationNotFound)
			return
		}
		httperrors.WriteError(w, err)
		return
	}
	if _, err := c.repo.GetSchemeByCode(ctx, req.Code); err == nil {
		httperrors.WriteError(w, httperrors.ErrSchemeCodeTaken)
		return
	} else if !errors.Is(err, core.ErrNotFound) {
		httperrors.WriteError(w, err)
		return
	}

	sc := &core.Scheme{
		OrgID:             req.OrgID,
		Code:              req.Code,
		Name:              req.Name,
		EvidenceTemplate:  req.EvidenceTemplate,
		DefaultThresholds: req.DefaultThresholds,
		LocaleOptions:     req.LocaleOptions,
	}
	if err := c.repo.CreateScheme(ctx, sc); err != nil {
		switch {
		case errors.Is(err, core.ErrConflict):
			httperrors.WriteError(w, httperrors.ErrSchemeCodeTaken)
		case errors.Is(err, core.ErrNotFound):
			httperrors.WriteError(w, httperrors.ErrOrganizationNotFound)
		default:
			log.Error("create scheme failed", logger.SchemeCode(req.Code), logger.Err(err))
			httperrors.WriteError(w, err)
		}
		return
	}
	c.invalidate(sc.Code)
	helpers.WriteJSON(w, http.StatusCreated, sc)
}

// List handles GET /schemes/ with an optional org_id filter.
func (c *SchemesController) List(w http.ResponseWriter, r *http.Request) {
	page, err := helpers.Pagination(r, c.limits.DefaultLimit, c.limits.MaxLimit)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	f := core.SchemeFilter{Page: page}
	if v := r.URL.Query().Get("org_id"); v != "" {
		f.OrgID = &v
	}
	schemes, err := c.repo.ListSchemes(r.Context(), f)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, schemes)
}

// Get handles GET /schemes/{id}
func (c *SchemesController) Get(w http.ResponseWriter, r *http.Request) {
	id := pathUUID(w, r, "id")
	if id == "" {
		return
	}
	sc, err := c.repo.GetScheme(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrSchemeNotFound)
			return
		}
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, sc)
}

// GetByCode handles GET /schemes/code/{code}. Cache-first: the store remains
// the authority, the cache only shortens the hot lookup path.
func (c *SchemesController) GetByCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("code is required"))
		return
	}

	if c.cache != nil {
		if b, ok := c.cache.Get(schemeCodeKey(code)); ok {
			var sc core.Scheme
			if json.Unmarshal(b, &sc) == nil {
				helpers.WriteJSON(w, http.StatusOK, &sc)
				return
			}
		}
	}

	sc, err := c.repo.GetSchemeByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrSchemeNotFound)
			return
		}
		httperrors.WriteError(w, err)
		return
	}
	if c.cache != nil {
		if b, err := json.Marshal(sc); err == nil {
			c.cache.Set(schemeCodeKey(code), b, c.ttl)
		}
	}
	helpers.WriteJSON(w, http.StatusOK, sc)
}

// Update handles PATCH /schemes/{id}
func (c *SchemesController) Update(w http.ResponseWriter, r *http.Request) {
	id := pathUUID(w, r, "id")
	if id == "" {
		return
	}
	var req dto.SchemeUpdate
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.Code != nil && *req.Code == "" {
		httperrors.WriteError(w, httperrors.ErrValidation.WithDetail("code cannot be empty"))
		return
	}

	// Invalidate the previous code too when the code itself changes.
	var oldCode string
	if req.Code != nil {
		if prev, err := c.repo.GetScheme(r.Context(), id); err == nil {
			oldCode = prev.Code
		}
	}

	sc, err := c.repo.UpdateScheme(r.Context(), id, core.SchemePatch{
		Code:              req.Code,
		Name:              req.Name,
		EvidenceTemplate:  req.EvidenceTemplate,
		DefaultThresholds: req.DefaultThresholds,
		LocaleOptions:     req.LocaleOptions,
	})
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			httperrors.WriteError(w, httperrors.ErrSchemeNotFound)
		case errors.Is(err, core.ErrConflict):
			httperrors.WriteError(w, httperrors.ErrSchemeCodeTaken)
		default:
			httperrors.WriteError(w, err)
		}
		return
	}
	c.invalidate(sc.Code)
	if oldCode != "" {
		c.invalidate(oldCode)
	}
	helpers.WriteJSON(w, http.StatusOK, sc)
}

// Delete handles DELETE /schemes/{id}
func (c *SchemesController) Delete(w http.ResponseWriter, r *http.Request) {
	id := pathUUID(w, r, "id")
	if id == "" {
		return
	}
	var code string
	if sc, err := c.repo.GetScheme(r.Context(), id); err == nil {
		code = sc.Code
	}
	if err := c.repo.DeleteScheme(r.Context(), id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrSchemeNotFound)
			return
		}
		httperrors.WriteError(w, err)
		return
	}
	if code != "" {
		c.invalidate(code)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *SchemesController) invalidate(code string) {
	if c.cache != nil {
		c.cache.Delete(schemeCodeKey(code))
	}
}
