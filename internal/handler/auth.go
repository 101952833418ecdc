package handler

import (
	"log/slog"
	"net/http"

	"helsejournal/internal/httputil"
	"helsejournal/internal/service"
)

// AuthHandler handles authentication and account HTTP requests
type AuthHandler struct {
	auth     *service.AuthService
	tokenTTL int
	logger   *slog.Logger
}

// NewAuthHandler creates a new auth handler. tokenTTL is reported to
// clients in seconds so they can schedule re-login.
func NewAuthHandler(auth *service.AuthService, tokenTTL int, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, tokenTTL: tokenTTL, logger: logger}
}

type loginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Login verifies credentials and returns a bearer token
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, _, err := h.auth.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   h.tokenTTL,
	})
}

// Me returns the authenticated account
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.GetUser(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, user)
}

// Logout exists for client symmetry. Tokens are stateless and expire
// on their own; the client just discards its copy.
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

type updateProfileBody struct {
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
	Language *string `json:"language"`
	Theme    *string `json:"theme"`
}

// UpdateProfile edits account preferences
// PUT /api/auth/me
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var body updateProfileBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.auth.UpdateProfile(r.Context(), httputil.GetUserID(r), service.UpdateProfileRequest{
		Email:    body.Email,
		FullName: body.FullName,
		Language: body.Language,
		Theme:    body.Theme,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, user)
}

type changePasswordBody struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword replaces the account password
// POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var body changePasswordBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.auth.ChangePassword(r.Context(), httputil.GetUserID(r), body.CurrentPassword, body.NewPassword)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}
