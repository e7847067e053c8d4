package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"go-project-hub/internal/model"
)

const AccessTokenCookie = "accessToken"

type authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (model.Identity, error)
}

// projectRoles resolves the role an identity holds inside a project.
type projectRoles interface {
	ProjectRole(ctx context.Context, identity model.Identity, projectID string) (model.Role, error)
}

type contextKey string

const identityContextKey contextKey = "identity"

type AuthMiddleware struct {
	auth     authenticator
	projects projectRoles
}

func NewAuthMiddleware(auth authenticator, projects projectRoles) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, projects: projects}
}

// RequireAuth resolves the caller from the accessToken cookie or a bearer header.
// A cookie token that fails verification falls back to the header.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		candidates := accessTokensFrom(r)
		if len(candidates) == 0 {
			writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
			return
		}

		for _, token := range candidates {
			identity, err := m.auth.Authenticate(r.Context(), token)
			if err == nil {
				next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
				return
			}
			if !errors.Is(err, model.ErrUnauthenticated) {
				writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected server error")
				return
			}
		}

		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "invalid or expired token")
	})
}

// RequireRoles admits callers whose global role is allowed. On routes carrying
// a {projectId} parameter the caller's role inside that project counts as well.
func (m *AuthMiddleware) RequireRoles(allowed ...model.Role) func(http.Handler) http.Handler {
	roleSet := make(map[model.Role]struct{}, len(allowed))
	for _, role := range allowed {
		roleSet[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
				return
			}

			if _, exists := roleSet[identity.Role]; exists {
				next.ServeHTTP(w, r)
				return
			}

			projectID := chi.URLParam(r, "projectId")
			if projectID == "" || m.projects == nil {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
				return
			}

			role, err := m.projects.ProjectRole(r.Context(), identity, projectID)
			switch {
			case err == nil:
			case errors.Is(err, model.ErrForbidden):
				writeError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
				return
			case model.IsNotFound(err):
				writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
				return
			default:
				writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected server error")
				return
			}

			if _, exists := roleSet[role]; !exists {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func WithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(model.Identity)
	return identity, ok
}

// accessTokensFrom returns the cookie token first, then the bearer token, skipping empty and repeated values.
func accessTokensFrom(r *http.Request) []string {
	var tokens []string
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		tokens = append(tokens, cookie.Value)
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) >= 7 && strings.EqualFold(header[:7], "bearer ") {
		if bearer := strings.TrimSpace(header[7:]); bearer != "" && (len(tokens) == 0 || tokens[0] != bearer) {
			tokens = append(tokens, bearer)
		}
	}
	return tokens
}
