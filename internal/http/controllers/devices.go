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
	"github.com/digipraman/loantrack/internal/validation"
)

type DevicesController struct {
	repo   core.Repository
	cache  cache.Cache
	ttl    time.Duration
	limits Limits
}

func deviceFingerprintKey(fp string) string { return "device:fp:" + fp }

// Create handles POST /devices/. The fingerprint pre-check is advisory; the
// store's unique constraint decides concurrent inserts.
func (c *DevicesController) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Op("DevicesController.Create"))

	var req dto.DeviceCreate
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	switch {
	case req.UserID == "":
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("_user_id is required"))
		return
	case req.Fingerprint == "":
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("device_fingerprint is required"))
		return
	}
	if req.TrustScore != nil && !validation.ValidTrustScore(*req.TrustScore) {
		httperrors.WriteError(w, httperrors.ErrValidation.WithDetail("trust_score must be between 0 and 1 with at most two decimals"))
		return
	}

	if _, err := c.repo.GetUser(ctx, req.UserID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrUserNotFound)
			return
		}
		httperrors.WriteError(w, err)
		return
	}
	if _, err := c.repo.GetDeviceByFingerprint(ctx, req.Fingerprint); err == nil {
		httperrors.WriteError(w, httperrors.ErrFingerprintTaken)
		return
	} else if !errors.Is(err, core.ErrNotFound) {
		httperrors.WriteError(w, err)
		return
	}

	d := &core.Device{
		UserID:      req.UserID,
		Fingerprint: req.Fingerprint,
		TrustScore:  req.TrustScore,
		Metadata:    req.Metadata,
	}
	if err := c.repo.CreateDevice(ctx, d); err != nil {
		switch {
		case errors.Is(err, core.ErrConflict):
			httperrors.WriteError(w, httperrors.ErrFingerprintTaken)
		case errors.Is(err, core.ErrNotFound):
			httperrors.WriteError(w, httperrors.ErrUserNotFound)
		case errors.Is(err, core.ErrInvalid):
			httperrors.WriteError(w, httperrors.ErrValidation.WithDetail("trust_score must be between 0 and 1 with at most two decimals"))
		default:
			log.Error("create device failed", logger.UserID(req.UserID), logger.Err(err))
			httperrors.WriteError(w, err)
		}
		return
	}
	c.invalidate(d.Fingerprint)
	helpers.WriteJSON(w, http.StatusCreated, d)
}

// Get handles GET /devices/{id}
func (c *DevicesController) Get(w http.ResponseWriter, r *http.Request) {
	id := pathUUID(w, r, "id")
	if id == "" {
		return
	}
	d, err := c.repo.GetDevice(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrDeviceNotFound)
			return
		}
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, d)
}

// GetByFingerprint handles GET /devices/fingerprint/{fingerprint}. Cache-first,
// same discipline as scheme code lookups.
func (c *DevicesController) GetByFingerprint(w http.ResponseWriter, r *http.Request) {
	fp := chi.URLParam(r, "fingerprint")
	if fp == "" {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("fingerprint is required"))
		return
	}

	if c.cache != nil {
		if b, ok := c.cache.Get(deviceFingerprintKey(fp)); ok {
			var d core.Device
			if json.Unmarshal(b, &d) == nil {
				helpers.WriteJSON(w, http.StatusOK, &d)
				return
			}
		}
	}

	d, err := c.repo.GetDeviceByFingerprint(r.Context(), fp)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrDeviceNotFound)
			return
		}
		httperrors.WriteError(w, err)
		return
	}
	if c.cache != nil {
		if b, err := json.Marshal(d); err == nil {
			c.cache.Set(deviceFingerprintKey(fp), b, c.ttl)
		}
	}
	helpers.WriteJSON(w, http.StatusOK, d)
}

// ListByUser handles GET /devices/user/{user_id}
func (c *DevicesController) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID := pathUUID(w, r, "user_id")
	if userID == "" {
		return
	}
	page, err := helpers.Pagination(r, c.limits.DefaultLimit, c.limits.MaxLimit)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	devices, err := c.repo.ListDevicesByUser(r.Context(), userID, page)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, devices)
}

// Update handles PATCH /devices/{id}
func (c *DevicesController) Update(w http.ResponseWriter, r *http.Request) {
	id := pathUUID(w, r, "id")
	if id == "" {
		return
	}
	var req dto.DeviceUpdate
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.Fingerprint != nil && *req.Fingerprint == "" {
		httperrors.WriteError(w, httperrors.ErrValidation.WithDetail("device_fingerprint cannot be empty"))
		return
	}
	if req.TrustScore != nil && !validation.ValidTrustScore(*req.TrustScore) {
		httperrors.WriteError(w, httperrors.ErrValidation.WithDetail("trust_score must be between 0 and 1 with at most two decimals"))
		return
	}

	var oldFingerprint string
	if req.Fingerprint != nil {
		if prev, err := c.repo.GetDevice(r.Context(), id); err == nil {
			oldFingerprint = prev.Fingerprint
		}
	}

	d, err := c.repo.UpdateDevice(r.Context(), id, core.DevicePatch{
		Fingerprint: req.Fingerprint,
		LastSeen:    req.LastSeen,
		TrustScore:  req.TrustScore,
		Metadata:    req.Metadata,
	})
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			httperrors.WriteError(w, httperrors.ErrDeviceNotFound)
		case errors.Is(err, core.ErrConflict):
			httperrors.WriteError(w, httperrors.ErrFingerprintTaken)
		case errors.Is(err, core.ErrInvalid):
			httperrors.WriteError(w, httperrors.ErrValidation.WithDetail("trust_score must be between 0 and 1 with at most two decimals"))
		default:
			httperrors.WriteError(w, err)
		}
		return
	}
	c.invalidate(d.Fingerprint)
	if oldFingerprint != "" {
		c.invalidate(oldFingerprint)
	}
	helpers.WriteJSON(w, http.StatusOK, d)
}

// Delete handles DELETE /devices/{id}
func (c *DevicesController) Delete(w http.ResponseWriter, r *http.Request) {
	id := pathUUID(w, r, "id")
	if id == "" {
		return
	}
	var fp string
	if d, err := c.repo.GetDevice(r.Context(), id); err == nil {
		fp = d.Fingerprint
	}
	if err := c.repo.DeleteDevice(r.Context(), id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrDeviceNotFound)
			return
		}
		httperrors.WriteError(w, err)
		return
	}
	if fp != "" {
		c.invalidate(fp)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *DevicesController) invalidate(fp string) {
	if c.cache != nil {
		c.cache.Delete(deviceFingerprintKey(fp))
	}
}
