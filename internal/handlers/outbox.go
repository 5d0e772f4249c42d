package handlers

import (
	"net/http"
)

// PollOutbox handles GET /api/v1/outbox
// @Summary Poll Host Actions
// @Description Returns and clears the heads-up pushes, display bindings and commands queued for the game add-on
// @Tags Ingestion
// @Produce json
// @Security ServerToken
// @Success 200 {object} world.Batch
// @Router /outbox [get]
func (h *Handler) PollOutbox(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, h.outbox.Drain())
}
