package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/ngreenfield/football-pickem/internal/domain/game"
	"github.com/ngreenfield/football-pickem/internal/domain/team"
	"github.com/ngreenfield/football-pickem/internal/domain/week"
	"github.com/ngreenfield/football-pickem/internal/platform/id"
	"github.com/ngreenfield/football-pickem/internal/platform/logging"
)

// ExternalGame is one game row as reported by the score feed, already
// parsed at the provider boundary into canonical fields.
type ExternalGame struct {
	ExternalID   string
	WeekNumber   int
	HomeTeamCode string
	AwayTeamCode string
	KickoffAt    time.Time
	HomeScore    *int
	AwayScore    *int
	Status       string
	Closed       bool
}

// ScheduleScoreProvider fetches schedule and score data from the external
// feed. Implementations parse payloads strictly; rows they cannot map are
// dropped, not passed through.
type ScheduleScoreProvider interface {
	FetchSeasonSchedule(ctx context.Context, season string) ([]ExternalGame, error)
	FetchWeekScores(ctx context.Context, season string, weekNumber int) ([]ExternalGame, error)
}

type ScoreSyncConfig struct {
	Enabled    bool
	Season     string
	MaxWorkers int
}

type SyncScheduleResult struct {
	RunID     string `json:"run_id"`
	Season    string `json:"season"`
	TeamCount int    `json:"team_count"`
	WeekCount int    `json:"week_count"`
	GameCount int    `json:"game_count"`
}

type RefreshScoresResult struct {
	RunID        string              `json:"run_id"`
	Season       string              `json:"season"`
	TaskCount    int                 `json:"task_count"`
	SuccessCount int                 `json:"success_count"`
	FailedCount  int                 `json:"failed_count"`
	WorkerCount  int                 `json:"worker_count"`
	Tasks        []RefreshTaskResult `json:"tasks"`
}

type RefreshTaskResult struct {
	WeekNumber int    `json:"week_number"`
	Status     string `json:"status"`
	Records    int    `json:"records"`
	DurationMs int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

const (
	refreshStatusSuccess = "success"
	refreshStatusFailed  = "failed"

	refreshMaxWorkers = 4
)

// ScoreSyncService ingests the season schedule and refreshes game scores
// from the external feed.
type ScoreSyncService struct {
	cfg         ScoreSyncConfig
	provider    ScheduleScoreProvider
	teamRepo    team.Repository
	weekRepo    week.Repository
	gameRepo    game.Repository
	ids         id.Generator
	invalidator leaderboardInvalidator
	logger      *logging.Logger
}

func NewScoreSyncService(
	cfg ScoreSyncConfig,
	provider ScheduleScoreProvider,
	teamRepo team.Repository,
	weekRepo week.Repository,
	gameRepo game.Repository,
	ids id.Generator,
	logger *logging.Logger,
) *ScoreSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ScoreSyncService{
		cfg:      cfg,
		provider: provider,
		teamRepo: teamRepo,
		weekRepo: weekRepo,
		gameRepo: gameRepo,
		ids:      ids,
		logger:   logger,
	}
}

func (s *ScoreSyncService) SetLeaderboardInvalidator(invalidator leaderboardInvalidator) {
	s.invalidator = invalidator
}

// SyncSchedule pulls the full season schedule and upserts teams, weeks and
// games. Existing games keep their IDs; scores and statuses are merged from
// the feed.
func (s *ScoreSyncService) SyncSchedule(ctx context.Context) (SyncScheduleResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreSyncService.SyncSchedule")
	defer span.End()

	if err := s.ready(); err != nil {
		return SyncScheduleResult{}, err
	}

	result := SyncScheduleResult{
		RunID:  uuid.NewString(),
		Season: s.cfg.Season,
	}

	rows, err := s.provider.FetchSeasonSchedule(ctx, s.cfg.Season)
	if err != nil {
		return SyncScheduleResult{}, fmt.Errorf("fetch season schedule season=%s: %w", s.cfg.Season, err)
	}

	teams, err := s.ensureTeams(ctx, rows)
	if err != nil {
		return SyncScheduleResult{}, err
	}
	result.TeamCount = len(teams)

	weeks := collectWeeks(rows)
	if len(weeks) > 0 {
		if err := s.weekRepo.UpsertWeeks(ctx, weeks); err != nil {
			return SyncScheduleResult{}, fmt.Errorf("upsert weeks: %w", err)
		}
	}
	result.WeekCount = len(weeks)

	count, err := s.upsertGames(ctx, rows, teams)
	if err != nil {
		return SyncScheduleResult{}, err
	}
	result.GameCount = count

	s.logger.InfoContext(ctx, "schedule sync finished",
		"run_id", result.RunID,
		"season", result.Season,
		"teams", result.TeamCount,
		"weeks", result.WeekCount,
		"games", result.GameCount,
	)

	return result, nil
}

// RefreshScores re-fetches scores for the given weeks, one feed call per
// week on a small worker pool. An empty week list refreshes every known
// week.
func (s *ScoreSyncService) RefreshScores(ctx context.Context, weekNumbers []int) (RefreshScoresResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreSyncService.RefreshScores")
	defer span.End()

	if err := s.ready(); err != nil {
		return RefreshScoresResult{}, err
	}

	for _, number := range weekNumbers {
		if number < 1 {
			return RefreshScoresResult{}, fmt.Errorf("%w: week numbers must be positive", ErrInvalidInput)
		}
	}
	if len(weekNumbers) == 0 {
		weeks, err := s.weekRepo.List(ctx)
		if err != nil {
			return RefreshScoresResult{}, fmt.Errorf("list weeks: %w", err)
		}
		for _, w := range weeks {
			weekNumbers = append(weekNumbers, w.Number)
		}
	}

	workerCount := normalizeRefreshWorkerCount(s.cfg.MaxWorkers, len(weekNumbers))
	result := RefreshScoresResult{
		RunID:       uuid.NewString(),
		Season:      s.cfg.Season,
		TaskCount:   len(weekNumbers),
		WorkerCount: workerCount,
		Tasks:       make([]RefreshTaskResult, 0, len(weekNumbers)),
	}
	if len(weekNumbers) == 0 {
		return result, nil
	}

	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return RefreshScoresResult{}, fmt.Errorf("list teams: %w", err)
	}
	teamsByCode := make(map[string]team.Team, len(teams))
	for _, t := range teams {
		teamsByCode[t.Code] = t
	}

	workers, err := ants.NewPool(workerCount)
	if err != nil {
		return RefreshScoresResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer workers.Release()

	tasks := make(chan RefreshTaskResult, len(weekNumbers))

	var successCount atomic.Int32
	var failedCount atomic.Int32

	var wg sync.WaitGroup
	for _, number := range weekNumbers {
		number := number
		wg.Add(1)
		if err := workers.Submit(func() {
			defer wg.Done()

			start := time.Now()
			row := RefreshTaskResult{WeekNumber: number}

			records, taskErr := s.refreshWeek(ctx, number, teamsByCode)
			row.Records = records
			row.DurationMs = time.Since(start).Milliseconds()
			if taskErr != nil {
				row.Status = refreshStatusFailed
				row.Message = taskErr.Error()
				failedCount.Add(1)
			} else {
				row.Status = refreshStatusSuccess
				successCount.Add(1)
			}

			tasks <- row
		}); err != nil {
			wg.Done()
			return RefreshScoresResult{}, fmt.Errorf("submit week %d to worker pool: %w", number, err)
		}
	}

	wg.Wait()
	close(tasks)

	for row := range tasks {
		result.Tasks = append(result.Tasks, row)
	}
	sort.SliceStable(result.Tasks, func(i, j int) bool {
		return result.Tasks[i].WeekNumber < result.Tasks[j].WeekNumber
	})
	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())

	if s.invalidator != nil {
		s.invalidator.InvalidateLeaderboard(ctx)
	}

	s.logger.InfoContext(ctx, "score refresh finished",
		"run_id", result.RunID,
		"season", result.Season,
		"tasks", result.TaskCount,
		"succeeded", result.SuccessCount,
		"failed", result.FailedCount,
	)

	return result, nil
}

func (s *ScoreSyncService) ready() error {
	if !s.cfg.Enabled {
		return fmt.Errorf("%w: score sync is disabled (SPORTSDATA_ENABLED=false)", ErrDependencyUnavailable)
	}
	if s.provider == nil || s.teamRepo == nil || s.weekRepo == nil || s.gameRepo == nil || s.ids == nil {
		return fmt.Errorf("%w: score sync is not fully configured", ErrDependencyUnavailable)
	}
	return nil
}

func (s *ScoreSyncService) refreshWeek(ctx context.Context, weekNumber int, teamsByCode map[string]team.Team) (int, error) {
	rows, err := s.provider.FetchWeekScores(ctx, s.cfg.Season, weekNumber)
	if err != nil {
		return 0, fmt.Errorf("fetch scores week=%d: %w", weekNumber, err)
	}

	updates := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		existing, exists, err := s.gameRepo.GetByExternalID(ctx, row.ExternalID)
		if err != nil {
			return 0, fmt.Errorf("get game external_id=%s: %w", row.ExternalID, err)
		}
		if !exists {
			// New games mid-week happen after reschedules. Map them
			// like the schedule sync does.
			mapped, ok := s.mapExternalGame(row, teamsByCode, "")
			if !ok {
				continue
			}
			updates = append(updates, mapped)
			continue
		}

		existing.HomeScore = row.HomeScore
		existing.AwayScore = row.AwayScore
		existing.Status = game.NormalizeStatus(row.Status)
		existing.Closed = row.Closed
		if !row.KickoffAt.IsZero() {
			existing.KickoffAt = row.KickoffAt
		}
		updates = append(updates, existing)
	}

	if len(updates) == 0 {
		return 0, nil
	}
	if err := s.gameRepo.UpsertGames(ctx, updates); err != nil {
		return 0, fmt.Errorf("upsert games week=%d: %w", weekNumber, err)
	}

	return len(updates), nil
}

func (s *ScoreSyncService) ensureTeams(ctx context.Context, rows []ExternalGame) (map[string]team.Team, error) {
	existing, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	byCode := make(map[string]team.Team, len(existing))
	for _, t := range existing {
		byCode[t.Code] = t
	}

	var missing []team.Team
	for _, row := range rows {
		for _, rawCode := range []string{row.HomeTeamCode, row.AwayTeamCode} {
			code := team.NormalizeCode(rawCode)
			if code == "" {
				continue
			}
			if _, ok := byCode[code]; ok {
				continue
			}
			if err := team.ValidateCode(code); err != nil {
				s.logger.WarnContext(ctx, "skipping unmappable team code", "code", rawCode, "error", err)
				continue
			}
			teamID, err := s.ids.NewID()
			if err != nil {
				return nil, fmt.Errorf("generate team id: %w", err)
			}
			t := team.Team{
				ID:   teamID,
				Code: code,
				Name: team.CanonicalName(code),
			}
			byCode[code] = t
			missing = append(missing, t)
		}
	}

	if len(missing) > 0 {
		if err := s.teamRepo.UpsertTeams(ctx, missing); err != nil {
			return nil, fmt.Errorf("upsert teams: %w", err)
		}
	}

	return byCode, nil
}

func (s *ScoreSyncService) upsertGames(ctx context.Context, rows []ExternalGame, teamsByCode map[string]team.Team) (int, error) {
	games := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		existing, exists, err := s.gameRepo.GetByExternalID(ctx, row.ExternalID)
		if err != nil {
			return 0, fmt.Errorf("get game external_id=%s: %w", row.ExternalID, err)
		}
		gameID := ""
		if exists {
			gameID = existing.ID
		}

		mapped, ok := s.mapExternalGame(row, teamsByCode, gameID)
		if !ok {
			continue
		}
		games = append(games, mapped)
	}

	if len(games) == 0 {
		return 0, nil
	}
	if err := s.gameRepo.UpsertGames(ctx, games); err != nil {
		return 0, fmt.Errorf("upsert games: %w", err)
	}

	return len(games), nil
}

// mapExternalGame maps one feed row to a game, minting an ID when the game
// is new. Rows referencing unknown teams are dropped with a warning rather
// than failing the whole sync.
func (s *ScoreSyncService) mapExternalGame(row ExternalGame, teamsByCode map[string]team.Team, gameID string) (game.Game, bool) {
	home, homeOK := teamsByCode[team.NormalizeCode(row.HomeTeamCode)]
	away, awayOK := teamsByCode[team.NormalizeCode(row.AwayTeamCode)]
	if !homeOK || !awayOK || row.WeekNumber < 1 {
		s.logger.Warn("skipping unmappable game row",
			"external_id", row.ExternalID,
			"home", row.HomeTeamCode,
			"away", row.AwayTeamCode,
			"week", row.WeekNumber,
		)
		return game.Game{}, false
	}

	if gameID == "" {
		minted, err := s.ids.NewID()
		if err != nil {
			s.logger.Warn("skipping game row, id generation failed", "external_id", row.ExternalID, "error", err)
			return game.Game{}, false
		}
		gameID = minted
	}

	return game.Game{
		ID:         gameID,
		ExternalID: row.ExternalID,
		WeekNumber: row.WeekNumber,
		HomeTeamID: home.ID,
		AwayTeamID: away.ID,
		KickoffAt:  row.KickoffAt,
		HomeScore:  row.HomeScore,
		AwayScore:  row.AwayScore,
		Status:     game.NormalizeStatus(row.Status),
		Closed:     row.Closed,
	}, true
}

func collectWeeks(rows []ExternalGame) []week.Week {
	seen := make(map[int]struct{}, len(rows))
	weeks := make([]week.Week, 0, len(rows))
	for _, row := range rows {
		if row.WeekNumber < 1 {
			continue
		}
		if _, ok := seen[row.WeekNumber]; ok {
			continue
		}
		seen[row.WeekNumber] = struct{}{}
		weeks = append(weeks, week.Week{Number: row.WeekNumber})
	}
	sort.SliceStable(weeks, func(i, j int) bool {
		return weeks[i].Number < weeks[j].Number
	})
	return weeks
}

func normalizeRefreshWorkerCount(value int, taskCount int) int {
	if taskCount <= 0 {
		return 1
	}
	if value <= 0 {
		value = 1
	}
	if value > refreshMaxWorkers {
		value = refreshMaxWorkers
	}
	if value > taskCount {
		value = taskCount
	}
	return value
}
