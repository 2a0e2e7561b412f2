package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ngreenfield/football-pickem/internal/usecase"
)

type leaderboardRowDTO struct {
	Rank           int     `json:"rank,omitempty"`
	UserID         string  `json:"user_id"`
	TotalPicks     int     `json:"total_picks"`
	CompletedGames int     `json:"completed_games"`
	CorrectPicks   int     `json:"correct_picks"`
	TotalPoints    int     `json:"total_points"`
	WinPercentage  float64 `json:"win_percentage"`
}

type pickResultDTO struct {
	Pick         pickDTO `json:"pick"`
	Game         gameDTO `json:"game"`
	Correct      bool    `json:"correct"`
	Finished     bool    `json:"finished"`
	PointsEarned int     `json:"points_earned"`
}

func aggregateToDTO(rank int, item usecase.UserAggregate) leaderboardRowDTO {
	return leaderboardRowDTO{
		Rank:           rank,
		UserID:         item.UserID,
		TotalPicks:     item.TotalPicks,
		CompletedGames: item.CompletedGames,
		CorrectPicks:   item.CorrectPicks,
		TotalPoints:    item.TotalPoints,
		WinPercentage:  item.WinPercentage,
	}
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	rows, err := h.scoringService.Leaderboard(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "leaderboard failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]leaderboardRowDTO, 0, len(rows))
	for i, item := range rows {
		out = append(out, aggregateToDTO(i+1, item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetUserSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUserSummary")
	defer span.End()

	userID := strings.TrimSpace(r.PathValue("userID"))
	if userID == "" {
		writeError(ctx, w, fmt.Errorf("%w: user id is required", usecase.ErrInvalidInput))
		return
	}

	summary, err := h.scoringService.Aggregate(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "user summary failed", "userID", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, aggregateToDTO(0, summary))
}

func (h *Handler) ListMyResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyResults")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	results, err := h.scoringService.UserResults(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "pick results failed", "userID", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]pickResultDTO, 0, len(results))
	for _, item := range results {
		out = append(out, pickResultDTO{
			Pick:         pickToDTO(item.Pick),
			Game:         gameToDTO(item.Game),
			Correct:      item.Correct,
			Finished:     item.Finished,
			PointsEarned: item.PointsEarned,
		})
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}
