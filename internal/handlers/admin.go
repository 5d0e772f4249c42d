package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/openmohaa/statboard/internal/configstore"
	"github.com/openmohaa/statboard/internal/models"
	"github.com/openmohaa/statboard/internal/ratio"
	"github.com/openmohaa/statboard/internal/registry"
)

// ListRatios handles GET /api/v1/admin/ratios
// @Summary List Ratios
// @Tags Admin
// @Produce json
// @Security AdminToken
// @Success 200 {array} models.RatioDefinition
// @Router /admin/ratios [get]
func (h *Handler) ListRatios(w http.ResponseWriter, r *http.Request) {
	defs := h.ratios.List()
	if defs == nil {
		defs = []models.RatioDefinition{}
	}
	h.jsonResponse(w, http.StatusOK, defs)
}

// GetRatio handles GET /api/v1/admin/ratios/{id}
// @Summary Get Ratio
// @Tags Admin
// @Produce json
// @Security AdminToken
// @Param id path string true "Ratio id"
// @Success 200 {object} models.RatioDefinition
// @Failure 404 {object} map[string]string "Not Found"
// @Router /admin/ratios/{id} [get]
func (h *Handler) GetRatio(w http.ResponseWriter, r *http.Request) {
	def, err := h.ratios.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.ratioError(w, err)
		return
	}
	h.jsonResponse(w, http.StatusOK, def)
}

// CreateRatio handles POST /api/v1/admin/ratios
// @Summary Create Ratio
// @Tags Admin
// @Accept json
// @Produce json
// @Security AdminToken
// @Param body body models.RatioDefinition true "Ratio"
// @Success 201 {object} models.RatioDefinition
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 409 {object} map[string]string "Duplicate ratio id"
// @Router /admin/ratios [post]
func (h *Handler) CreateRatio(w http.ResponseWriter, r *http.Request) {
	def, ok := h.decodeRatio(w, r)
	if !ok {
		return
	}
	if err := h.ratios.Create(def); err != nil {
		h.ratioError(w, err)
		return
	}
	h.logger.Infow("Ratio created", "ratioId", def.ID)
	h.jsonResponse(w, http.StatusCreated, def)
}

// UpdateRatio handles PUT /api/v1/admin/ratios/{id}
// @Summary Update Ratio
// @Description Replaces a ratio; a different ratioId in the body renames it
// @Tags Admin
// @Accept json
// @Produce json
// @Security AdminToken
// @Param id path string true "Ratio id"
// @Param body body models.RatioDefinition true "Ratio"
// @Success 200 {object} models.RatioDefinition
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 409 {object} map[string]string "Duplicate ratio id"
// @Router /admin/ratios/{id} [put]
func (h *Handler) UpdateRatio(w http.ResponseWriter, r *http.Request) {
	def, ok := h.decodeRatio(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.ratios.Update(id, def); err != nil {
		h.ratioError(w, err)
		return
	}
	h.logger.Infow("Ratio updated", "ratioId", id, "newId", def.ID)
	h.jsonResponse(w, http.StatusOK, def)
}

// DeleteRatio handles DELETE /api/v1/admin/ratios/{id}
// @Summary Delete Ratio
// @Tags Admin
// @Security AdminToken
// @Param id path string true "Ratio id"
// @Param removeObjective query bool false "Also drop the <id>_display counter"
// @Success 204
// @Failure 404 {object} map[string]string "Not Found"
// @Router /admin/ratios/{id} [delete]
func (h *Handler) DeleteRatio(w http.ResponseWriter, r *http.Request) {
	removeObjective, _ := strconv.ParseBool(r.URL.Query().Get("removeObjective"))
	if err := h.ratios.Delete(chi.URLParam(r, "id"), removeObjective); err != nil {
		h.ratioError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodeRatio(w http.ResponseWriter, r *http.Request) (models.RatioDefinition, bool) {
	var def models.RatioDefinition
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return def, false
	}
	if err := h.validator.Struct(&def); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return def, false
	}
	return def, true
}

func (h *Handler) ratioError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ratio.ErrNotFound):
		h.errorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ratio.ErrDuplicateID):
		h.errorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, ratio.ErrBuiltIn):
		h.errorResponse(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Errorw("Ratio operation failed", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Internal error")
	}
}

// configEndpoints serves GET and PUT for one engine config blob. PUT bodies
// are merged over the defaults, so omitted fields reset to their default.
func configEndpoints[T any](h *Handler, key string, defaults func() T) (get, put http.HandlerFunc) {
	get = func(w http.ResponseWriter, r *http.Request) {
		cfg := configstore.Load(h.config, key, defaults(), func(key string, err error) {
			h.logger.Warnw("Stored config unreadable, serving defaults", "key", key, "error", err)
		})
		h.jsonResponse(w, http.StatusOK, cfg)
	}

	put = func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
		body, err := io.ReadAll(r.Body)
		if err != nil {
			h.errorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		if !json.Valid(body) {
			h.errorResponse(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		cfg, err := configstore.MergeChecked(defaults(), string(body))
		if err != nil {
			h.errorResponse(w, http.StatusBadRequest, "Invalid config: "+err.Error())
			return
		}
		if err := h.validator.Struct(&cfg); err != nil {
			h.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
			return
		}
		if err := configstore.Save(h.config, key, cfg); err != nil {
			h.logger.Errorw("Failed to save config", "key", key, "error", err)
			h.errorResponse(w, http.StatusInternalServerError, "Internal error")
			return
		}
		h.logger.Infow("Config updated", "key", key)
		h.jsonResponse(w, http.StatusOK, cfg)
	}
	return get, put
}

// ConfigRoutes returns GET/PUT handlers for every engine config blob, keyed
// by route name.
func (h *Handler) ConfigRoutes() map[string][2]http.HandlerFunc {
	return map[string][2]http.HandlerFunc{
		"counters":    pair(configEndpoints(h, configstore.KeyCounters, registry.DefaultConfig)),
		"display":     pair(configEndpoints(h, configstore.KeyDisplay, models.DefaultDisplayConfig)),
		"leaderboard": pair(configEndpoints(h, configstore.KeyLeaderboard, models.DefaultLeaderboardConfig)),
		"afk":         pair(configEndpoints(h, configstore.KeyAFK, models.DefaultAFKConfig)),
		"moderation":  pair(configEndpoints(h, configstore.KeyModeration, models.DefaultModerationConfig)),
	}
}

func pair(get, put http.HandlerFunc) [2]http.HandlerFunc {
	return [2]http.HandlerFunc{get, put}
}
