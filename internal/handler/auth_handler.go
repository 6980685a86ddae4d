package handler

import (
	"net/http"
	"time"

	"course-manager/internal/middleware"
	"course-manager/internal/model"
	"course-manager/internal/service"
	"course-manager/pkg/apierror"
)

const (
	refreshTokenCookie = "refresh_token"
	defaultAccessAge   = time.Hour
)

type CookieOptions struct {
	Secure bool
	// AccessMaxAge is the access cookie lifetime; zero means one hour.
	AccessMaxAge time.Duration
}

type AuthHandler struct {
	service *service.AuthService
	cookies CookieOptions
}

func NewAuthHandler(service *service.AuthService, cookies CookieOptions) *AuthHandler {
	if cookies.AccessMaxAge <= 0 {
		cookies.AccessMaxAge = defaultAccessAge
	}
	return &AuthHandler{service: service, cookies: cookies}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload model.RegisterRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.service.Register(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookies(w, result.Tokens)
	writeSuccess(w, http.StatusOK, "user registered successfully", result)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.service.Login(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookies(w, result.Tokens)
	writeSuccess(w, http.StatusOK, "user logged in successfully", result)
}

// UpdateRole changes the caller's own role.
func (h *AuthHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.UpdateRoleRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.service.UpdateRole(r.Context(), caller.UserID, payload.Role)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookies(w, result.Tokens)
	writeSuccess(w, http.StatusOK, "user role updated successfully", result)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshTokenCookie)
	if err != nil {
		writeError(w, apierror.Unauthorized("refresh token is missing"))
		return
	}

	tokens, err := h.service.Refresh(r.Context(), cookie.Value)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookies(w, tokens)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Logout(r.Context(), caller.UserID); err != nil {
		writeError(w, err)
		return
	}

	h.clearSessionCookies(w)
	writeSuccess(w, http.StatusOK, "user logged out successfully", nil)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.service.GetMe(r.Context(), caller.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", user)
}

func (h *AuthHandler) setSessionCookies(w http.ResponseWriter, tokens model.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    tokens.AccessToken,
		Path:     "/",
		MaxAge:   int(h.cookies.AccessMaxAge / time.Second),
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    tokens.RefreshToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookies(w http.ResponseWriter) {
	clearCookies(w, h.cookies.Secure)
}

func clearCookies(w http.ResponseWriter, secure bool) {
	for _, name := range []string{middleware.AccessTokenCookie, refreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
