package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/ngreenfield/football-pickem/internal/domain/pick"
	"github.com/ngreenfield/football-pickem/internal/usecase"
)

type pickEntryRequest struct {
	GameID     string `json:"game_id"`
	TeamID     string `json:"team_id"`
	Confidence int    `json:"confidence"`
}

type submitWeekPicksRequest struct {
	Picks []pickEntryRequest `json:"picks"`
}

type quickPickRequest struct {
	TeamID     string `json:"team_id" validate:"required"`
	Confidence int    `json:"confidence"`
}

type gamePicksDTO struct {
	Game  gameDTO   `json:"game"`
	Picks []pickDTO `json:"picks"`
}

type gameDetailDTO struct {
	Game gameDTO  `json:"game"`
	Pick *pickDTO `json:"pick"`
}

func decodeJSONBody(body io.Reader, target any) error {
	decoder := jsoniter.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) SubmitWeekPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitWeekPicks")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	weekNumber, err := parseWeekNumber(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var payload submitWeekPicksRequest
	if err := decodeJSONBody(r.Body, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	entries := make([]pick.Entry, 0, len(payload.Picks))
	for _, item := range payload.Picks {
		entries = append(entries, pick.Entry{
			GameID:     strings.TrimSpace(item.GameID),
			TeamID:     strings.TrimSpace(item.TeamID),
			Confidence: item.Confidence,
		})
	}

	picks, err := h.pickService.SubmitWeekPicks(ctx, principal.UserID, weekNumber, entries)
	if err != nil {
		h.logger.WarnContext(ctx, "submit week picks rejected",
			"userID", principal.UserID,
			"week", weekNumber,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, picksToDTOs(picks))
}

func (h *Handler) QuickPick(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.QuickPick")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	gameID := strings.TrimSpace(r.PathValue("gameID"))
	if gameID == "" {
		writeError(ctx, w, fmt.Errorf("%w: game id is required", usecase.ErrInvalidInput))
		return
	}

	var payload quickPickRequest
	if err := decodeJSONBody(r.Body, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.pickService.QuickPick(ctx, usecase.QuickPickInput{
		UserID:     principal.UserID,
		GameID:     gameID,
		TeamID:     strings.TrimSpace(payload.TeamID),
		Confidence: payload.Confidence,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "quick pick rejected",
			"userID", principal.UserID,
			"gameID", gameID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, pickToDTO(result))
}

func (h *Handler) GetMyGamePick(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyGamePick")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	gameID := strings.TrimSpace(r.PathValue("gameID"))
	if gameID == "" {
		writeError(ctx, w, fmt.Errorf("%w: game id is required", usecase.ErrInvalidInput))
		return
	}

	g, p, err := h.pickService.GameDetail(ctx, principal.UserID, gameID)
	if err != nil {
		h.logger.WarnContext(ctx, "get game pick failed",
			"userID", principal.UserID,
			"gameID", gameID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	dto := gameDetailDTO{Game: gameToDTO(g)}
	if p != nil {
		item := pickToDTO(*p)
		dto.Pick = &item
	}
	writeSuccess(ctx, w, http.StatusOK, dto)
}

func (h *Handler) ListMyWeekPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyWeekPicks")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	weekNumber, err := parseWeekNumber(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	picks, err := h.pickService.ListUserWeekPicks(ctx, principal.UserID, weekNumber)
	if err != nil {
		h.logger.WarnContext(ctx, "list week picks failed",
			"userID", principal.UserID,
			"week", weekNumber,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, picksToDTOs(picks))
}

func (h *Handler) ListMyPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyPicks")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	picks, err := h.pickService.ListUserPicks(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list picks failed", "userID", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, picksToDTOs(picks))
}

func (h *Handler) ListWeekPicks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListWeekPicks")
	defer span.End()

	weekNumber, err := parseWeekNumber(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	grouped, err := h.pickService.ListWeekPicks(ctx, weekNumber)
	if err != nil {
		h.logger.WarnContext(ctx, "list week pick board failed", "week", weekNumber, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]gamePicksDTO, 0, len(grouped))
	for _, item := range grouped {
		out = append(out, gamePicksDTO{
			Game:  gameToDTO(item.Game),
			Picks: picksToDTOs(item.Picks),
		})
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}
