package middlewarectx

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/geobee/geobee/internal/http/response"
)

// Logger пишет в slog одну запись на каждый запрос.
func Logger(log *slog.Logger) func(http.Handler) http.Handler {
	log = log.With(slog.String("component", "middleware/logger"))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			entry := log.With(
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_agent", r.UserAgent()),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				entry.Info("request completed",
					slog.Int("status", ww.Status()),
					slog.Int("bytes", ww.BytesWritten()),
					slog.String("duration", time.Since(start).String()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// Recoverer перехватывает панику обработчика и отвечает JSON 500.
func Recoverer(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					if p == http.ErrAbortHandler {
						panic(p)
					}
					log.Error("request panic",
						slog.String("method", r.Method),
						slog.String("uri", r.RequestURI),
						slog.String("request_id", middleware.GetReqID(r.Context())),
						slog.Any("panic", p),
						slog.String("stack", string(debug.Stack())),
					)
					response.ErrorJSON(w, r, http.StatusInternalServerError, response.InternalError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
