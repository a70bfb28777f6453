package main

import (
	"net/http"
	"strings"

	"projecthub/api-gateway/utils"
	"projecthub/backend/logging"
	backendutils "projecthub/backend/utils"
)

// authMiddleware rejects requests without a valid bearer token. The token is
// forwarded untouched so each service re-validates it.
func authMiddleware(next http.Handler, secret []byte) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			backendutils.WriteError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ValidateToken(secret, tokenString)
		if err != nil {
			logging.Logger.Warnf("Event ID: GATEWAY_INVALID_TOKEN, Description: %s %s rejected: %v", r.Method, r.URL.Path, err)
			backendutils.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		logging.Logger.Debugf("Event ID: GATEWAY_AUTHORIZED, Description: user %s (%s) -> %s %s", claims.Subject, claims.Role, r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler, origin string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
