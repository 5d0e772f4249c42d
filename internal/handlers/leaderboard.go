package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/openmohaa/statboard/internal/leaderboard"
	"github.com/openmohaa/statboard/internal/models"
	"github.com/openmohaa/statboard/internal/ratio"
)

// GetLeaderboard handles GET /api/v1/leaderboard/{counter}
// @Summary Get Leaderboard
// @Description Ranks players by the last offline snapshot of a counter
// @Tags Leaderboards
// @Produce json
// @Param counter path string true "Counter name"
// @Param limit query int false "Entries (1-100)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /leaderboard/{counter} [get]
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	counter := strings.TrimSpace(chi.URLParam(r, "counter"))
	if counter == "" {
		h.errorResponse(w, http.StatusBadRequest, "Missing counter")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.errorResponse(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = models.ClampLimit(n)
	}

	entries := h.leaderboard.Top(counter, limit)
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"counter": counter,
		"label":   h.registry.Snapshot().Label(counter),
		"entries": entries,
	})
}

// GetLeaderboardHistory handles GET /api/v1/leaderboard/{counter}/history
// @Summary Get Leaderboard History
// @Description Archived snapshot values of a counter, newest first
// @Tags Leaderboards
// @Produce json
// @Param counter path string true "Counter name"
// @Param player query string false "Only this player"
// @Param since query string false "RFC3339 lower bound"
// @Param until query string false "RFC3339 upper bound"
// @Param limit query int false "Rows (1-1000)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 503 {object} map[string]string "Archive disabled"
// @Router /leaderboard/{counter}/history [get]
func (h *Handler) GetLeaderboardHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.errorResponse(w, http.StatusServiceUnavailable, "Snapshot archive is not configured")
		return
	}

	query := r.URL.Query()
	q := leaderboard.HistoryQuery{
		Counter: chi.URLParam(r, "counter"),
		Player:  query.Get("player"),
	}
	var err error
	if q.Since, err = parseTime(query.Get("since")); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid since")
		return
	}
	if q.Until, err = parseTime(query.Get("until")); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid until")
		return
	}
	if raw := query.Get("limit"); raw != "" {
		if q.Limit, err = strconv.Atoi(raw); err != nil {
			h.errorResponse(w, http.StatusBadRequest, "Invalid limit")
			return
		}
	}

	points, err := h.history.History(r.Context(), q)
	if err != nil {
		if errors.Is(err, leaderboard.ErrInvalidHistoryQuery) {
			h.errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Errorw("Failed to read snapshot history", "counter", q.Counter, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Internal error")
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"counter": q.Counter,
		"points":  points,
	})
}

func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// PlayerStats is the public stat sheet of one player
type PlayerStats struct {
	Player   string             `json:"player"`
	Online   bool               `json:"online"`
	Counters map[string]int64   `json:"counters"`
	Ratios   map[string]float64 `json:"ratios"`
}

// GetPlayerStats handles GET /api/v1/players/{name}/stats
// @Summary Get Player Stats
// @Description Current value of every enabled counter and ratio for one player
// @Tags Players
// @Produce json
// @Param name path string true "Player name"
// @Success 200 {object} PlayerStats
// @Router /players/{name}/stats [get]
func (h *Handler) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		h.errorResponse(w, http.StatusBadRequest, "Missing player name")
		return
	}

	snap := h.registry.Snapshot()
	stats := PlayerStats{
		Player:   name,
		Counters: make(map[string]int64),
		Ratios:   make(map[string]float64),
	}
	if h.players != nil {
		_, stats.Online = h.players.Player(name)
	}
	for _, id := range snap.Counters() {
		stats.Counters[id] = h.scores.Get(name, id)
	}
	for _, def := range h.ratios.All() {
		if !def.Enabled || !def.Evaluable() {
			continue
		}
		stats.Ratios[def.ID] = ratio.Compute(h.scores.Get(name, def.Numerator), h.scores.Get(name, def.Denominator))
	}

	h.jsonResponse(w, http.StatusOK, stats)
}
