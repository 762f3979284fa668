package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerSessionRoutes(mux *http.ServeMux, handler *Handler, sessions SessionVerifier) {
	mux.HandleFunc("POST /v1/session", handler.Login)
	mux.Handle("GET /v1/session", requireSession(handler, sessions, handler.GetSession))
	mux.Handle("DELETE /v1/session", requireSession(handler, sessions, handler.Logout))
}

func registerTeamRoutes(mux *http.ServeMux, handler *Handler, sessions SessionVerifier) {
	mux.Handle("GET /v1/teams", requireSession(handler, sessions, handler.ListTeams))
	mux.Handle("POST /v1/teams", requireSession(handler, sessions, handler.CreateTeam))
	mux.Handle("GET /v1/teams/name-availability", requireSession(handler, sessions, handler.TeamNameAvailability))
	mux.Handle("GET /v1/teams/{teamID}", requireSession(handler, sessions, handler.GetTeam))
	mux.Handle("PUT /v1/teams/{teamID}", requireSession(handler, sessions, handler.UpdateTeam))
	mux.Handle("DELETE /v1/teams/{teamID}", requireSession(handler, sessions, handler.DeleteTeam))
	mux.Handle("GET /v1/teams/{teamID}/capacity", requireSession(handler, sessions, handler.TeamCapacity))
	mux.Handle("GET /v1/teams/{teamID}/players", requireSession(handler, sessions, handler.ListTeamPlayers))
	mux.Handle("PUT /v1/teams/{teamID}/players/{playerID}", requireSession(handler, sessions, handler.AssignPlayer))
	mux.Handle("DELETE /v1/teams/{teamID}/players/{playerID}", requireSession(handler, sessions, handler.RemovePlayer))
}

func registerPlayerRoutes(mux *http.ServeMux, handler *Handler, sessions SessionVerifier) {
	mux.Handle("GET /v1/players", requireSession(handler, sessions, handler.ListPlayers))
	mux.Handle("GET /v1/players/feed", requireSession(handler, sessions, handler.PlayerFeed))
	mux.Handle("GET /v1/players/{playerID}/team", requireSession(handler, sessions, handler.GetPlayerTeam))
}

func requireSession(handler *Handler, sessions SessionVerifier, fn http.HandlerFunc) http.Handler {
	return RequireSession(sessions, handler.CookieName(), fn)
}
