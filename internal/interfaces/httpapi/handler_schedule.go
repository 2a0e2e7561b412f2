package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ngreenfield/football-pickem/internal/usecase"
)

type weekGamesDTO struct {
	Week  int       `json:"week"`
	Games []gameDTO `json:"games"`
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	teams, err := h.scheduleService.ListTeams(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]teamDTO, 0, len(teams))
	for _, item := range teams {
		out = append(out, teamToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ListWeeks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListWeeks")
	defer span.End()

	weeks, err := h.scheduleService.ListWeeks(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list weeks failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	numbers := make([]int, 0, len(weeks))
	for _, item := range weeks {
		numbers = append(numbers, item.Number)
	}
	writeSuccess(ctx, w, http.StatusOK, map[string][]int{"weeks": numbers})
}

func (h *Handler) ListWeekGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListWeekGames")
	defer span.End()

	weekNumber, err := parseWeekNumber(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.scheduleService.ListWeekGames(ctx, weekNumber)
	if err != nil {
		h.logger.WarnContext(ctx, "list week games failed", "week", weekNumber, "error", err)
		writeError(ctx, w, err)
		return
	}

	dto := weekGamesDTO{Week: result.Week.Number, Games: make([]gameDTO, 0, len(result.Games))}
	for _, item := range result.Games {
		dto.Games = append(dto.Games, gameToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, dto)
}

func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGame")
	defer span.End()

	gameID := strings.TrimSpace(r.PathValue("gameID"))
	if gameID == "" {
		writeError(ctx, w, fmt.Errorf("%w: game id is required", usecase.ErrInvalidInput))
		return
	}

	item, err := h.scheduleService.GetGame(ctx, gameID)
	if err != nil {
		h.logger.WarnContext(ctx, "get game failed", "gameID", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gameToDTO(item))
}
