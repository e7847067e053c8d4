package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"go-project-hub/internal/middleware"
	"go-project-hub/internal/model"
)

type authService interface {
	Register(ctx context.Context, req model.RegisterRequest, avatar *model.Upload, baseURL string) (model.PublicUser, error)
	VerifyEmail(ctx context.Context, plain string) error
	ResendVerification(ctx context.Context, req model.EmailRequest, baseURL string) error
	Login(ctx context.Context, req model.LoginRequest, client string) (model.LoginResult, error)
	Logout(ctx context.Context, identity model.Identity) error
	RefreshAccessToken(ctx context.Context, presented string) (model.TokenPair, error)
	ChangePassword(ctx context.Context, identity model.Identity, req model.ChangePasswordRequest) error
	CurrentUser(ctx context.Context, identity model.Identity) (model.PublicUser, error)
	ForgotPassword(ctx context.Context, req model.EmailRequest, baseURL string) error
	ResetPassword(ctx context.Context, plain string, req model.ResetPasswordRequest) error
}

type AuthHandler struct {
	service       authService
	cookies       CookieConfig
	baseURL       string
	maxAvatarSize int64
}

func NewAuthHandler(service authService, cookies CookieConfig, baseURL string, maxAvatarSize int64) *AuthHandler {
	return &AuthHandler{service: service, cookies: cookies, baseURL: baseURL, maxAvatarSize: maxAvatarSize}
}

// Register accepts JSON or a multipart form with an optional avatar file.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload model.RegisterRequest
	var avatar *model.Upload

	if isMultipart(r) {
		form, err := readMultipart(w, r, "avatar", h.maxAvatarSize, 1)
		if err != nil {
			writeError(w, err)
			return
		}
		payload = model.RegisterRequest{
			Email:    form.value("email"),
			Username: form.value("username"),
			Password: form.value("password"),
			FullName: form.value("fullName"),
		}
		if len(form.files) == 1 {
			avatar = &form.files[0]
		}
	} else if err := decodeJSON(w, r, &payload, false); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.service.Register(r.Context(), payload, avatar, publicBaseURL(h.baseURL, r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusCreated, "User registered successfully and verification email has been sent", user)
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	if err := h.service.VerifyEmail(r.Context(), chi.URLParam(r, "token")); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Email is verified", map[string]bool{"isEmailVerified": true})
}

func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var payload model.EmailRequest
	if err := decodeJSON(w, r, &payload, false); err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.ResendVerification(r.Context(), payload, publicBaseURL(h.baseURL, r)); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Verification mail has been sent", nil)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if err := decodeJSON(w, r, &payload, false); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.service.Login(r.Context(), payload, middleware.ClientIP(r))
	if err != nil {
		writeError(w, err)
		return
	}

	h.cookies.setSession(w, result.TokenPair)
	writeMessage(w, http.StatusOK, "User logged in successfully", result)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := h.service.Logout(r.Context(), identity); err != nil {
		writeError(w, err)
		return
	}

	h.cookies.clearSession(w)
	writeMessage(w, http.StatusOK, "User logged out", nil)
}

// RefreshToken takes the refresh token from its cookie, falling back to the JSON body.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var presented string
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
		presented = cookie.Value
	}

	if presented == "" {
		var payload model.RefreshRequest
		if err := decodeJSON(w, r, &payload, true); err != nil {
			writeError(w, err)
			return
		}
		presented = strings.TrimSpace(payload.RefreshToken)
	}

	pair, err := h.service.RefreshAccessToken(r.Context(), presented)
	if err != nil {
		writeError(w, err)
		return
	}

	h.cookies.setSession(w, pair)
	writeMessage(w, http.StatusOK, "Access token refreshed", pair)
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var payload model.ChangePasswordRequest
	if err := decodeJSON(w, r, &payload, false); err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.ChangePassword(r.Context(), identity, payload); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Password changed successfully", nil)
}

func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	user, err := h.service.CurrentUser(r.Context(), identity)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, nil)
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var payload model.EmailRequest
	if err := decodeJSON(w, r, &payload, false); err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.ForgotPassword(r.Context(), payload, publicBaseURL(h.baseURL, r)); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "If the address is registered, a password reset mail has been sent", nil)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var payload model.ResetPasswordRequest
	if err := decodeJSON(w, r, &payload, false); err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.ResetPassword(r.Context(), chi.URLParam(r, "token"), payload); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Password reset successfully", nil)
}
