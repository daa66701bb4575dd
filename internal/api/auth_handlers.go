package api

import (
	"net/http"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/command"
	"github.com/example/ec-storefront/internal/domain/identity"
	"github.com/example/ec-storefront/internal/query"
)

// AuthHandlers handles the session's login state. Login takes any email
// without a password check.
type AuthHandlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
}

func NewAuthHandlers(cmdHandler *command.Handler, queryHandler *query.Handler) *AuthHandlers {
	return &AuthHandlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
	}
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	User    identity.User `json:"user"`
	Message string        `json:"message,omitempty"`
}

func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var cmd command.Login
	if !decodeJSON(w, r, &cmd) {
		return
	}
	cmd.SessionID = middleware.GetSessionID(r.Context())

	u, err := h.cmdHandler.Login(r.Context(), cmd)
	if err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, AuthResponse{User: u, Message: "Login successful"})
}

func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.cmdHandler.Logout(r.Context(), command.Logout{SessionID: middleware.GetSessionID(r.Context())}); err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	view, err := h.queryHandler.Session(middleware.GetSessionID(r.Context()))
	if err != nil {
		respondCommandError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *AuthHandlers) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var cmd command.UpdateProfile
	if !decodeJSON(w, r, &cmd) {
		return
	}
	cmd.SessionID = middleware.GetSessionID(r.Context())

	u, applied, err := h.cmdHandler.UpdateProfile(r.Context(), cmd)
	if err != nil {
		respondCommandError(w, err)
		return
	}
	if !applied {
		respondJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	respondJSON(w, http.StatusOK, AuthResponse{User: u})
}
