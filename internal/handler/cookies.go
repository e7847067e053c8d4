package handler

import (
	"net/http"

	"go-project-hub/internal/middleware"
	"go-project-hub/internal/model"
)

const refreshTokenCookie = "refreshToken"

type CookieConfig struct {
	Secure bool
	MaxAge int // seconds
}

func (c CookieConfig) set(w http.ResponseWriter, name string, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   c.MaxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c CookieConfig) clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c CookieConfig) setSession(w http.ResponseWriter, pair model.TokenPair) {
	c.set(w, middleware.AccessTokenCookie, pair.AccessToken)
	c.set(w, refreshTokenCookie, pair.RefreshToken)
}

func (c CookieConfig) clearSession(w http.ResponseWriter) {
	c.clear(w, middleware.AccessTokenCookie)
	c.clear(w, refreshTokenCookie)
}
