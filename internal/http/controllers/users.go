package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/digipraman/loantrack/internal/cache"
	"github.com/digipraman/loantrack/internal/http/dto"
	httperrors "github.com/digipraman/loantrack/internal/http/errors"
	"github.com/digipraman/loantrack/internal/http/helpers"
	"github.com/digipraman/loantrack/internal/observability/logger"
	"github.com/digipraman/loantrack/internal/store/core"
	"github.com/digipraman/loantrack/internal/validation"
)

type UsersController struct {
	repo   core.Repository
	cache  cache.Cache
	limits Limits
}

// userConflictError picks the right 409 from the violated constraint. Email
// uniqueness is org-scoped, mobile is global.
func userConflictError(err error) *httperrors.AppError {
	if strings.Contains(err.Error(), "email") {
		return httperrors.ErrEmailTaken
	}
	return httperrors.ErrMobileTaken
}

// Create handles POST /users/. Validation failures never reach the store.
func (c *UsersController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Op("UsersController.Create"))

	var req dto.UserCreate
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	switch {
	case req.OrgID == "":
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("_org_id is required"))
		return
	case req.Name == "":
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("name is required"))
		return
	case req.Mobile == "":
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("mobile is required"))
		return
	case req.Role == "":
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("role is required"))
		return
	}
	role := core.Role(req.Role)
	if !role.Valid() {
		httperrors.WriteError(w, httperrors.ErrValidation.WithDetail("role must be beneficiary, officer or admin"))
		return
	}
	if !validation.ValidMobile(req.Mobile) {
		httperrors.WriteError(w, httperrors.ErrValidation.WithDetail("mobile must contain 10 to 15 digits"))
		return
	}
	if req.Email != nil && !validation.ValidEmail(*req.Email) {
		httperrors.WriteError(w, httperrors.ErrValidation.WithDetail("email is not a valid address"))
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
	// Advisory; the unique constraint closes the race.
	if _, err := c.repo.GetUserByMobile(ctx, req.Mobile); err == nil {
		httperrors.WriteError(w, httperrors.ErrMobileTaken)
		return
	} else if !errors.Is(err, core.ErrNotFound) {
		httperrors.WriteError(w, err)
		return
	}

	u := &core.User{
		OrgID:  req.OrgID,
		Role:   role,
		Name:   req.Name,
		Mobile: req.Mobile,
		Email:  req.Email,
		Locale: req.Locale,
		Status: req.Status,
	}
	if err := c.repo.CreateUser(ctx, u); err != nil {
		switch {
		case errors.Is(err, core.ErrConflict):
			httperrors.WriteError(w, userConflictError(err))
		case errors.Is(err, core.ErrNotFound):
			httperrors.WriteError(w, httperrors.ErrOrganizationNotFound)
		default:
			log.Error("create user failed", logger.OrgID(req.OrgID), logger.Err(err))
			httperrors.WriteError(w, err)
		}
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, u)
}

// List handles GET /users/ with org_id, role and status filters.
func (c *UsersController) List(w http.ResponseWriter, r *http.Request) {
	page, err := helpers.Pagination(r, c.limits.DefaultLimit, c.limits.MaxLimit)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	f := core.UserFilter{Page: page}
	q := r.URL.Query()
	if v := q.Get("org_id"); v != "" {
		f.OrgID = &v
	}
	if v := q.Get("role"); v != "" {
		role := core.Role(v)
		if !role.Valid() {
			httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("role must be beneficiary, officer or admin"))
			return
		}
		f.Role = &role
	}
	if v := q.Get("status"); v != "" {
		f.Status = &v
	}
	users, err := c.repo.ListUsers(r.Context(), f)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, users)
}

// Get handles GET /users/{id}
func (c *UsersController) Get(w http.ResponseWriter, r *http.Request) {
	id := pathUUID(w, r, "id")
	if id == "" {
		return
	}
	u, err := c.repo.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrUserNotFound)
			return
		}
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, u)
}

// GetByMobile handles GET /users/mobile/{mobile}
func (c *UsersController) GetByMobile(w http.ResponseWriter, r *http.Request) {
	mobile := chi.URLParam(r, "mobile")
	u, err := c.repo.GetUserByMobile(r.Context(), mobile)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrUserNotFound)
			return
		}
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, u)
}

// Update handles PATCH /users/{id}
func (c *UsersController) Update(w http.ResponseWriter, r *http.Request) {
	id := pathUUID(w, r, "id")
	if id == "" {
		return
	}
	var req dto.UserUpdate
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	patch := core.UserPatch{
		Name:   req.Name,
		Mobile: req.Mobile,
		Email:  req.Email,
		Locale: req.Locale,
		Status: req.Status,
	}
	if req.Role != nil {
		role := core.Role(*req.Role)
		if !role.Valid() {
			httperrors.WriteError(w, httperrors.ErrValidation.WithDetail("role must be beneficiary, officer or admin"))
			return
		}
		patch.Role = &role
	}
	if req.Mobile != nil && !validation.ValidMobile(*req.Mobile) {
		httperrors.WriteError(w, httperrors.ErrValidation.WithDetail("mobile must contain 10 to 15 digits"))
		return
	}
	if req.Email != nil && !validation.ValidEmail(*req.Email) {
		httperrors.WriteError(w, httperrors.ErrValidation.WithDetail("email is not a valid address"))
		return
	}

	u, err := c.repo.UpdateUser(r.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			httperrors.WriteError(w, httperrors.ErrUserNotFound)
		case errors.Is(err, core.ErrConflict):
			httperrors.WriteError(w, userConflictError(err))
		default:
			httperrors.WriteError(w, err)
		}
		return
	}
	helpers.WriteJSON(w, http.StatusOK, u)
}

// Delete handles DELETE /users/{id}. Devices owned by the user go with it, so
// their fingerprint cache entries must go too.
func (c *UsersController) Delete(w http.ResponseWriter, r *http.Request) {
	id := pathUUID(w, r, "id")
	if id == "" {
		return
	}
	ctx := r.Context()

	// Collect fingerprints before the cascade removes them.
	devices, err := c.repo.ListDevicesByUser(ctx, id, core.Page{})
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		logger.From(ctx).Warn("listing devices before user delete failed",
			logger.Op("UsersController.Delete"), logger.UserID(id), logger.Err(err))
	}

	if err := c.repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrUserNotFound)
			return
		}
		httperrors.WriteError(w, err)
		return
	}
	if c.cache != nil {
		for _, d := range devices {
			c.cache.Delete(deviceFingerprintKey(d.Fingerprint))
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
