package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/altconstitution/site/internal/response"
)

// Handler holds HTTP handlers for auth endpoints.
type Handler struct {
	svc      *Service
	onLogout func(email string)
}

// NewHandler creates a new auth Handler. onLogout, if set, is called with
// the admin's email when a signed-in admin logs out.
func NewHandler(svc *Service, onLogout func(email string)) *Handler {
	return &Handler{svc: svc, onLogout: onLogout}
}

type loginRequest struct {
	Email    string `json:"email"    example:"admin@alternativeconstitution.nz"`
	Password string `json:"password" example:"correct horse battery staple"`
}

type loginData struct {
	Token string `json:"token" example:"eyJhbGci..."`
	User  User   `json:"user"`
}

// Login godoc
//
//	@Summary		Sign in
//	@Description	Exchange admin credentials for a session token. The token is also set as the session cookie.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest	true	"Credentials"
//	@Success		200		{object}	response.Envelope{data=loginData}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/v1/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		response.BadRequest(w, "email and password are required")
		return
	}

	token, u, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		response.Unauthorized(w, err.Error())
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	SetSessionCookie(w, r, token, u.ExpiresAt)
	response.OK(w, loginData{Token: token, User: *u})
}

// Logout godoc
//
//	@Summary		Sign out
//	@Description	Clears the session cookie and closes the admin's editing sessions.
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	response.Envelope
//	@Router			/v1/auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if u, err := h.svc.CurrentUser(TokenFrom(r)); err == nil && h.onLogout != nil {
		h.onLogout(u.Email)
	}
	ClearSessionCookie(w, r)
	response.OK(w, map[string]bool{"success": true})
}

// Me godoc
//
//	@Summary		Current admin
//	@Description	Returns the signed-in administrator.
//	@Tags			auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=User}
//	@Failure		401	{object}	response.Envelope
//	@Router			/v1/auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFrom(r.Context())
	if !ok {
		response.Unauthorized(w, ErrUnauthenticated.Error())
		return
	}
	response.OK(w, u)
}
