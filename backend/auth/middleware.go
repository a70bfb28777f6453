package auth

import (
	"context"
	"net/http"
	"strings"

	"projecthub/backend/logging"
	"projecthub/backend/utils"
)

type contextKey struct{}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID   int64
	Username string
	Role     string
	Token    string
}

func (p Principal) IsSystemAdmin() bool {
	return p.Role == RoleSystemAdmin
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}

// BearerToken extracts the raw token from the Authorization header.
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenStr == authHeader {
		return ""
	}
	return strings.TrimSpace(tokenStr)
}

// JWTAuthMiddleware rejects requests without a valid bearer token and stores
// the caller in the request context.
func JWTAuthMiddleware(tokens *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := BearerToken(r)
			if tokenStr == "" {
				logging.Logger.Warnf("Event ID: JWT_AUTH_MISSING_HEADER, Description: Bearer token missing for request to %s %s", r.Method, r.URL.Path)
				utils.WriteError(w, http.StatusUnauthorized, "authorization header missing")
				return
			}

			claims, err := tokens.ValidateToken(tokenStr)
			if err != nil {
				logging.Logger.Warnf("Event ID: JWT_AUTH_INVALID_TOKEN, Description: Invalid token for request to %s %s: %v", r.Method, r.URL.Path, err)
				utils.WriteError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			userID, _ := claims.UserID()
			p := Principal{UserID: userID, Username: claims.Username, Role: claims.Role, Token: tokenStr}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireRole only lets callers with one of the given identity roles through.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := FromContext(r.Context())
			if !ok {
				utils.WriteError(w, http.StatusUnauthorized, "unauthenticated")
				return
			}
			for _, role := range roles {
				if p.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			logging.Logger.Warnf("Event ID: ACCESS_FORBIDDEN, Description: user %d with role '%s' denied %s %s, allowed roles: %v", p.UserID, p.Role, r.Method, r.URL.Path, roles)
			utils.WriteError(w, http.StatusForbidden, "access forbidden: insufficient permissions")
		})
	}
}
