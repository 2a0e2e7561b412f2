package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/teams", handler.ListTeams)
	mux.HandleFunc("GET /v1/weeks", handler.ListWeeks)
	mux.HandleFunc("GET /v1/weeks/{weekNumber}/games", handler.ListWeekGames)
	mux.HandleFunc("GET /v1/weeks/{weekNumber}/picks/all", handler.ListWeekPicks)
	mux.HandleFunc("GET /v1/games/{gameID}", handler.GetGame)
	mux.HandleFunc("GET /v1/leaderboard", handler.GetLeaderboard)
	mux.HandleFunc("GET /v1/users/{userID}/summary", handler.GetUserSummary)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("PUT /v1/weeks/{weekNumber}/picks", RequireAuth(verifier, http.HandlerFunc(handler.SubmitWeekPicks)))
	mux.Handle("GET /v1/weeks/{weekNumber}/picks", RequireAuth(verifier, http.HandlerFunc(handler.ListMyWeekPicks)))
	mux.Handle("POST /v1/games/{gameID}/pick", RequireAuth(verifier, http.HandlerFunc(handler.QuickPick)))
	mux.Handle("GET /v1/games/{gameID}/pick", RequireAuth(verifier, http.HandlerFunc(handler.GetMyGamePick)))
	mux.Handle("GET /v1/picks", RequireAuth(verifier, http.HandlerFunc(handler.ListMyPicks)))
	mux.Handle("GET /v1/picks/results", RequireAuth(verifier, http.HandlerFunc(handler.ListMyResults)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/sync-schedule", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncScheduleJob)))
	mux.Handle("POST /v1/internal/jobs/refresh-scores", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRefreshScoresJob)))
}
