package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"ventas-backend/pkg/utils"
)

func PanicRecovery(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Error().
						Interface("panic", err).
						Str("path", r.URL.Path).
						Bytes("stack", debug.Stack()).
						Msg("panic recovered")
					utils.Error(w, http.StatusInternalServerError, "error interno del servidor")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
