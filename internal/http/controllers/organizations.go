package controllers

import (
	"errors"
	"net/http"

	"github.com/digipraman/loantrack/internal/http/dto"
	httperrors "github.com/digipraman/loantrack/internal/http/errors"
	"github.com/digipraman/loantrack/internal/http/helpers"
	"github.com/digipraman/loantrack/internal/observability/logger"
	"github.com/digipraman/loantrack/internal/store/core"
)

type OrganizationsController struct {
	repo   core.Repository
	limits Limits
}

// Create handles POST /organizations/
func (c *OrganizationsController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.OrganizationCreate
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("name is required"))
		return
	}

	org := &core.Organization{Name: req.Name, Type: req.Type, Config: req.Config}
	if err := c.repo.CreateOrganization(ctx, org); err != nil {
		logger.From(ctx).Error("create organization failed", logger.Op("OrganizationsController.Create"), logger.Err(err))
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, org)
}

// List handles GET /organizations/
func (c *OrganizationsController) List(w http.ResponseWriter, r *http.Request) {
	page, err := helpers.Pagination(r, c.limits.DefaultLimit, c.limits.MaxLimit)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	orgs, err := c.repo.ListOrganizations(r.Context(), page)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, orgs)
}

// Get handles GET /organizations/{id}
func (c *OrganizationsController) Get(w http.ResponseWriter, r *http.Request) {
	id := pathUUID(w, r, "id")
	if id == "" {
		return
	}
	org, err := c.repo.GetOrganization(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrOrganizationNotFound)
			return
		}
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, org)
}

// Update handles PATCH /organizations/{id}. Only fields present in the body
// are replaced.
func (c *OrganizationsController) Update(w http.ResponseWriter, r *http.Request) {
	id := pathUUID(w, r, "id")
	if id == "" {
		return
	}
	var req dto.OrganizationUpdate
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.Name != nil && *req.Name == "" {
		httperrors.WriteError(w, httperrors.ErrValidation.WithDetail("name cannot be empty"))
		return
	}

	org, err := c.repo.UpdateOrganization(r.Context(), id, core.OrganizationPatch{
		Name:   req.Name,
		Type:   req.Type,
		Config: req.Config,
	})
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrOrganizationNotFound)
			return
		}
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, org)
}

// Delete handles DELETE /organizations/{id}. RESTRICT policy: the delete is
// refused with 409 while schemes or users still reference the organization.
func (c *OrganizationsController) Delete(w http.ResponseWriter, r *http.Request) {
	id := pathUUID(w, r, "id")
	if id == "" {
		return
	}
	if err := c.repo.DeleteOrganization(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			httperrors.WriteError(w, httperrors.ErrOrganizationNotFound)
		case errors.Is(err, core.ErrConflict):
			httperrors.WriteError(w, httperrors.ErrOrganizationInUse)
		default:
			httperrors.WriteError(w, err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
