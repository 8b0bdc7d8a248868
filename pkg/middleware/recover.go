package middleware

import (
	"errors"
	"net/http"

	"cinema-reservation/pkg/apperror"
	"cinema-reservation/pkg/utils"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Recover answers a panicking handler with the same coded 500 body the handlers use
// for internal errors. http.ErrAbortHandler is passed through so the server drops the connection.
func Recover(logger *zap.Logger) func(http.Handler) http.Handler {
	log := logger.With(zap.String("component", "recover"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				log.Error("Handler panicked",
					zap.Any("panic", rec),
					zap.String("request_id", chimw.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Stack("stack"),
				)
				utils.ResponseError(w, http.StatusInternalServerError, "Internal server error",
					map[string]apperror.Code{"code": apperror.CodeInternal})
			}()
			next.ServeHTTP(w, r)
		})
	}
}
