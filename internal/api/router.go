package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/boardbank/internal/api/apierr"
	"github.com/mcoot/boardbank/internal/api/handler"
	"github.com/mcoot/boardbank/internal/api/middleware"
	httpmw "github.com/mcoot/boardbank/internal/middleware"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger   *slog.Logger
	Sessions interface {
		handler.SessionIssuer
		middleware.SessionValidator
	}
	Lobby    handler.LobbyLister
	Health   handler.HealthSources
	Realtime http.Handler // Websocket endpoint, mounted at /ws when set
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = errorHandler(apierr.NewRouteNotFoundError())
	r.MethodNotAllowedHandler = errorHandler(apierr.NewMethodNotAllowedError())

	sessionHandler := handler.NewSessionHandler(cfg.Sessions)
	lobbyHandler := handler.NewLobbyHandler(cfg.Lobby)
	healthHandler := handler.NewHealthHandler(cfg.Health)

	authMiddleware := middleware.Auth(cfg.Sessions)
	loggingMiddleware := httpmw.Logging(cfg.Logger.With(slog.String("component", "http")))
	recoveryMiddleware := httpmw.Recovery(cfg.Logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})

	if cfg.Realtime != nil {
		realtime := r.PathPrefix("/ws").Subrouter()
		realtime.Use(recoveryMiddleware)
		realtime.Use(loggingMiddleware)
		realtime.Handle("", cfg.Realtime).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/sessions", sessionHandler.Create).Methods(http.MethodPost)

	sessions := api.PathPrefix("/sessions").Subrouter()
	sessions.Use(authMiddleware)
	sessions.HandleFunc("/me", sessionHandler.GetMe).Methods(http.MethodGet)

	api.HandleFunc("/lobby/games", lobbyHandler.ListGames).Methods(http.MethodGet)
	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)

	return r
}

func errorHandler(err error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, err)
	})
}
