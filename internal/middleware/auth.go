package middleware

import (
	"context"
	"net/http"
	"strings"

	"ventas-backend/internal/auth"
	"ventas-backend/pkg/utils"
)

type contextKey string

const ClientKey contextKey = "client"

type AuthMiddleware struct {
	jwtManager *auth.JWTManager
}

func NewAuthMiddleware(jwtManager *auth.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager}
}

// Authenticate requires a valid "Bearer <token>" header.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			utils.Error(w, http.StatusUnauthorized, "falta el encabezado de autorización")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.Error(w, http.StatusUnauthorized, "formato de autorización inválido")
			return
		}

		claims, err := m.jwtManager.ValidateToken(parts[1])
		if err != nil {
			utils.Error(w, http.StatusUnauthorized, "token inválido o vencido")
			return
		}

		ctx := context.WithValue(r.Context(), ClientKey, claims.Client)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetClientFromContext returns the authenticated client name.
func GetClientFromContext(ctx context.Context) (string, bool) {
	client, ok := ctx.Value(ClientKey).(string)
	return client, ok
}
