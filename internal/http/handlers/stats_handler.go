// Package handlers exposes read-only endpoints over the infraction ledger,
// mirroring the chat commands: a per-user standing and the top-ten
// leaderboard. Durations are rendered in whole seconds so dashboards don't
// need to parse Go duration strings.
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/r9klabs/r9kbot/internal/services"
)

// userStatsResponse is the JSON shape for one user's standing.
type userStatsResponse struct {
	UserID          string `json:"user_id"`
	Count           int64  `json:"count"`
	NextDurationSec int64  `json:"next_duration_seconds"`
}

// StatsHandler serves infraction queries from the StatsService.
type StatsHandler struct {
	Stats *services.StatsService
}

// GetUserStats handles GET /infractions/:user_id.
func (h *StatsHandler) GetUserStats(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("user_id"))
	if userID == "" {
		Fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user_id is required")
		return
	}

	st, err := h.Stats.Stats(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrNoInfractions) {
			Fail(c, http.StatusNotFound, ErrCodeNotFound, "no infractions recorded")
			return
		}
		Fail(c, http.StatusInternalServerError, ErrCodeInternal, "infraction lookup failed")
		return
	}
	ok(c, http.StatusOK, toResponse(*st))
}

// GetLeaderboard handles GET /leaderboard.
func (h *StatsHandler) GetLeaderboard(c *gin.Context) {
	entries, err := h.Stats.Leaderboard(c.Request.Context())
	if err != nil {
		Fail(c, http.StatusInternalServerError, ErrCodeInternal, "leaderboard query failed")
		return
	}
	out := make([]userStatsResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toResponse(e))
	}
	ok(c, http.StatusOK, gin.H{"entries": out})
}

func toResponse(st services.UserStats) userStatsResponse {
	return userStatsResponse{
		UserID:          st.UserID,
		Count:           st.Count,
		NextDurationSec: int64(st.NextDuration / time.Second),
	}
}
