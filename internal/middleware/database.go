package middleware

import (
	"net/http"

	"ventas-backend/pkg/utils"
)

// RequireDatabase answers 503 while available reports false.
func RequireDatabase(available func() bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !available() {
				utils.Error(w, http.StatusServiceUnavailable, "solo disponible en la aplicación de escritorio")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
