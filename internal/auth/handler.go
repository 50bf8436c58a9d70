package auth

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pyqvault/pyqvault/pkg/handlers"
	"github.com/pyqvault/pyqvault/pkg/routes"
)

// Handler exposes admin authentication over HTTP.
type Handler struct {
	auth   System
	logger *slog.Logger
}

// NewHandler creates an auth HTTP handler.
func NewHandler(auth System, logger *slog.Logger) *Handler {
	return &Handler{
		auth:   auth,
		logger: logger.With("handler", "auth"),
	}
}

// Routes returns the handler's route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/auth",
		Routes: []routes.Route{
			{Method: http.MethodPost, Pattern: "/login", Handler: h.login},
			{Method: http.MethodPost, Pattern: "/logout", Handler: h.logout},
		},
	}
}

// ProtectedRoutes returns the route group requiring authentication.
func (h *Handler) ProtectedRoutes() routes.Group {
	return routes.Group{
		Prefix: "/auth",
		Routes: []routes.Route{
			{Method: http.MethodGet, Pattern: "/verify", Handler: h.verify},
			{Method: http.MethodPost, Pattern: "/change-password", Handler: h.changePassword},
		},
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	token, expiresAt, err := h.auth.Login(r.Context(), ClientAddr(r), req.Username, req.Password)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt})
}

// logout is a no-op on the server side. Tokens are stateless; clients discard
// them and the token expires on its own.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	username, ok := UsernameFromContext(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, ErrInvalidToken)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"username": username,
		"valid":    true,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	username, ok := UsernameFromContext(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, ErrInvalidToken)
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	if err := h.auth.ChangePassword(r.Context(), username, req.CurrentPassword, req.NewPassword); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}
