package handler

import (
	"context"
	"net/http"

	"github.com/mcoot/boardbank/internal/api/apierr"
	"github.com/mcoot/boardbank/internal/api/response"
	"github.com/mcoot/boardbank/internal/model"
)

// LobbyLister lists games waiting for players
type LobbyLister interface {
	LobbyGames(ctx context.Context) ([]model.LobbyGame, error)
}

// LobbyHandler handles lobby endpoints
type LobbyHandler struct {
	lobby LobbyLister
}

// NewLobbyHandler creates a new lobby handler
func NewLobbyHandler(lobby LobbyLister) *LobbyHandler {
	return &LobbyHandler{lobby: lobby}
}

// ListGames handles GET /api/v1/lobby/games
func (h *LobbyHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.lobby.LobbyGames(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.LobbyGames{Games: games})
}
