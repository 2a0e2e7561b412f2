package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ngreenfield/football-pickem/internal/domain/game"
	"github.com/ngreenfield/football-pickem/internal/domain/pick"
	"github.com/ngreenfield/football-pickem/internal/domain/team"
	"github.com/ngreenfield/football-pickem/internal/platform/logging"
	"github.com/ngreenfield/football-pickem/internal/usecase"
)

type Handler struct {
	scheduleService *usecase.ScheduleService
	pickService     *usecase.PickService
	scoringService  *usecase.ScoringService
	syncService     *usecase.ScoreSyncService
	logger          *logging.Logger
	validator       *validator.Validate
}

func NewHandler(
	scheduleService *usecase.ScheduleService,
	pickService *usecase.PickService,
	scoringService *usecase.ScoringService,
	syncService *usecase.ScoreSyncService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		scheduleService: scheduleService,
		pickService:     pickService,
		scoringService:  scoringService,
		syncService:     syncService,
		logger:          logger,
		validator:       validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func parseWeekNumber(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.PathValue("weekNumber"))
	number, err := strconv.Atoi(raw)
	if err != nil || number < 1 {
		return 0, fmt.Errorf("%w: invalid week number %q", usecase.ErrInvalidInput, raw)
	}
	return number, nil
}

type teamDTO struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

func teamToDTO(item team.Team) teamDTO {
	return teamDTO{
		ID:   item.ID,
		Code: item.Code,
		Name: item.Name,
	}
}

type gameDTO struct {
	ID           string     `json:"id"`
	WeekNumber   int        `json:"week_number"`
	HomeTeamID   string     `json:"home_team_id"`
	AwayTeamID   string     `json:"away_team_id"`
	KickoffAt    *time.Time `json:"kickoff_at,omitempty"`
	HomeScore    *int       `json:"home_score"`
	AwayScore    *int       `json:"away_score"`
	Status       string     `json:"status"`
	Closed       bool       `json:"closed"`
	Finished     bool       `json:"finished"`
	WinnerTeamID string     `json:"winner_team_id,omitempty"`
}

func gameToDTO(item game.Game) gameDTO {
	dto := gameDTO{
		ID:         item.ID,
		WeekNumber: item.WeekNumber,
		HomeTeamID: item.HomeTeamID,
		AwayTeamID: item.AwayTeamID,
		HomeScore:  item.HomeScore,
		AwayScore:  item.AwayScore,
		Status:     item.Status,
		Closed:     item.Closed,
		Finished:   item.IsFinished(),
	}
	if !item.KickoffAt.IsZero() {
		kickoff := item.KickoffAt
		dto.KickoffAt = &kickoff
	}
	if winner, decided := item.Winner(); decided {
		dto.WinnerTeamID = winner
	}
	return dto
}

type pickDTO struct {
	UserID     string    `json:"user_id"`
	GameID     string    `json:"game_id"`
	TeamID     string    `json:"team_id"`
	Confidence int       `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
}

func pickToDTO(item pick.Pick) pickDTO {
	return pickDTO{
		UserID:     item.UserID,
		GameID:     item.GameID,
		TeamID:     item.TeamID,
		Confidence: item.Confidence,
		CreatedAt:  item.CreatedAt,
	}
}

func picksToDTOs(items []pick.Pick) []pickDTO {
	out := make([]pickDTO, 0, len(items))
	for _, item := range items {
		out = append(out, pickToDTO(item))
	}
	return out
}
