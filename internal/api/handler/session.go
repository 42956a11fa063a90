package handler

import (
	"context"
	"net/http"

	"github.com/mcoot/boardbank/internal/api/apierr"
	"github.com/mcoot/boardbank/internal/api/middleware"
	"github.com/mcoot/boardbank/internal/api/request"
	"github.com/mcoot/boardbank/internal/api/response"
	"github.com/mcoot/boardbank/internal/model"
)

// SessionIssuer creates sessions
type SessionIssuer interface {
	Login(ctx context.Context, username string) (*model.Session, error)
}

// SessionHandler handles session endpoints
type SessionHandler struct {
	sessions SessionIssuer
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions SessionIssuer) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateSessionRequest
	if err := request.Decode(w, r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	// Non-string usernames are treated as missing
	username, _ := req.Username.(string)
	session, err := h.sessions.Login(r.Context(), username)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SessionFromModel(session))
}

// GetMe handles GET /api/v1/sessions/me
func (h *SessionHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())
	response.JSON(w, http.StatusOK, response.SessionFromModel(session))
}
