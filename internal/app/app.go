package app

import (
	"fmt"
	"net/http"

	"github.com/ngreenfield/football-pickem/internal/config"
	"github.com/ngreenfield/football-pickem/internal/domain/game"
	"github.com/ngreenfield/football-pickem/internal/domain/pick"
	"github.com/ngreenfield/football-pickem/internal/domain/team"
	"github.com/ngreenfield/football-pickem/internal/domain/week"
	"github.com/ngreenfield/football-pickem/internal/infrastructure/account/tokenauth"
	"github.com/ngreenfield/football-pickem/internal/infrastructure/repository/memory"
	"github.com/ngreenfield/football-pickem/internal/infrastructure/repository/postgres"
	"github.com/ngreenfield/football-pickem/internal/infrastructure/scoresource/sportsdata"
	"github.com/ngreenfield/football-pickem/internal/interfaces/httpapi"
	"github.com/ngreenfield/football-pickem/internal/platform/cache"
	idgen "github.com/ngreenfield/football-pickem/internal/platform/id"
	"github.com/ngreenfield/football-pickem/internal/platform/logging"
	"github.com/ngreenfield/football-pickem/internal/platform/resilience"
	"github.com/ngreenfield/football-pickem/internal/usecase"
)

type repositories struct {
	teams team.Repository
	weeks week.Repository
	games game.Repository
	picks pick.Repository

	close func() error
}

func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repos, err := buildRepositories(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("build repositories: %w", err)
	}

	scheduleSvc := usecase.NewScheduleService(repos.teams, repos.weeks, repos.games)
	pickSvc := usecase.NewPickService(repos.weeks, repos.games, repos.picks)

	var store *cache.Store
	if cfg.CacheEnabled {
		store = cache.NewStore(cfg.CacheTTL)
	}
	scoringSvc := usecase.NewScoringService(repos.games, repos.picks, store)
	pickSvc.SetLeaderboardInvalidator(scoringSvc)

	var provider usecase.ScheduleScoreProvider
	if cfg.SportsDataEnabled {
		provider = sportsdata.NewClient(sportsdata.ClientConfig{
			BaseURL:    cfg.SportsDataBaseURL,
			APIKey:     cfg.SportsDataAPIKey,
			Timeout:    cfg.SportsDataTimeout,
			MaxRetries: cfg.SportsDataMaxRetries,
			Logger:     logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.SportsDataCircuitEnabled,
				FailureThreshold: cfg.SportsDataCircuitFailureCount,
				OpenTimeout:      cfg.SportsDataCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.SportsDataCircuitHalfOpenMaxReq,
			},
		})
	}
	syncSvc := usecase.NewScoreSyncService(
		usecase.ScoreSyncConfig{
			Enabled:    cfg.SportsDataEnabled,
			Season:     cfg.SportsDataSeason,
			MaxWorkers: cfg.SportsDataMaxWorkers,
		},
		provider,
		repos.teams,
		repos.weeks,
		repos.games,
		idgen.NewRandomGenerator(),
		logger,
	)
	syncSvc.SetLeaderboardInvalidator(scoringSvc)

	authClient := tokenauth.NewClient(
		&http.Client{Timeout: cfg.AuthTimeout},
		cfg.AuthBaseURL,
		cfg.AuthIntrospectPath,
		logger,
	)

	handler := httpapi.NewHandler(scheduleSvc, pickSvc, scoringSvc, syncSvc, logger)
	router := httpapi.NewRouter(handler, authClient, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	if repos.close != nil {
		server.RegisterOnShutdown(func() {
			if err := repos.close(); err != nil {
				logger.Error("close repositories", "error", err)
			}
		})
	}

	return server, nil
}

func buildRepositories(cfg config.Config, logger *logging.Logger) (repositories, error) {
	if cfg.DBURL == "" {
		logger.Info("using in-memory repositories", "reason", "DB_URL empty")
		return repositories{
			teams: memory.NewTeamRepository(memory.SeedTeams()),
			weeks: memory.NewWeekRepository(memory.SeedWeeks()),
			games: memory.NewGameRepository(memory.SeedGames()),
			picks: memory.NewPickRepository(),
		}, nil
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return repositories{}, err
	}
	logger.Info("connected to postgres", "database", dbNameFromURL(cfg.DBURL))

	return repositories{
		teams: postgres.NewTeamRepository(db),
		weeks: postgres.NewWeekRepository(db),
		games: postgres.NewGameRepository(db),
		picks: postgres.NewPickRepository(db),
		close: db.Close,
	}, nil
}
