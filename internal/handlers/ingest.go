package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/openmohaa/statboard/internal/models"
)

// IngestEvents handles POST /api/v1/ingest/events
// @Summary Ingest Game Events
// @Description Accepts newline-separated JSON or URL-encoded events from the game add-on
// @Tags Ingestion
// @Accept json
// @Produce json
// @Security ServerToken
// @Param body body []models.Event true "Events"
// @Success 202 {object} map[string]interface{} "Accepted"
// @Failure 413 {object} map[string]string "Request body too large"
// @Router /ingest/events [post]
func (h *Handler) IngestEvents(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.errorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}
	defer r.Body.Close()

	lines := strings.Split(string(body), "\n")
	processed, rejected, dropped := 0, 0, 0
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		event, err := parseEventLine(line)
		if err != nil {
			h.logger.Warnw("Failed to parse event in batch", "error", err, "lineNum", i, "preview", line[:min(len(line), 100)])
			rejected++
			continue
		}

		if err := h.validator.Struct(&event); err != nil || !models.KnownEventTypes[event.Type] {
			h.logger.Debugw("Skipping invalid event", "lineNum", i, "type", event.Type)
			rejected++
			continue
		}

		if !h.events.Enqueue(event) {
			h.logger.Warnw("Event queue full, dropping remaining events in batch", "remaining", len(lines)-i)
			dropped = countNonEmpty(lines[i:])
			break
		}
		processed++
	}

	h.jsonResponse(w, http.StatusAccepted, map[string]interface{}{
		"status":    "accepted",
		"processed": processed,
		"rejected":  rejected,
		"dropped":   dropped,
	})
}

// parseEventLine supports both JSON (if line starts with {) and URL-encoded
// events.
func parseEventLine(line string) (models.Event, error) {
	var event models.Event
	if strings.HasPrefix(line, "{") {
		err := json.Unmarshal([]byte(line), &event)
		return event, err
	}

	values, err := url.ParseQuery(line)
	if err != nil {
		return event, err
	}
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		event.FieldByJSONName(key, vals[len(vals)-1])
	}
	return event, nil
}

func countNonEmpty(lines []string) int {
	n := 0
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			n++
		}
	}
	return n
}
