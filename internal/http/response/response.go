// Package response формирует JSON-ответы HTTP-обработчиков.
//
// Ошибка всегда отдаётся телом {"error": "<сообщение>"}, успешные ответы
// отдаются без обёртки.
package response

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/geobee/geobee/internal/lib/apperr"
	"github.com/geobee/geobee/internal/lib/sl"
)

// InternalError текст ответа для непредвиденных ошибок.
const InternalError = "Internal Server Error"

// ErrorResponse тело ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error возвращает тело ответа с переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{Error: msg}
}

// JSON пишет тело v с кодом status.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// ErrorJSON пишет {"error": msg} с кодом status.
func ErrorJSON(w http.ResponseWriter, r *http.Request, status int, msg string) {
	JSON(w, r, status, Error(msg))
}

// Fail выбирает код и сообщение по классу ошибки. Неклассифицированные
// ошибки логируются и отдаются как 500 без подробностей.
func Fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	kind := apperr.KindOf(err)
	appErr, ok := apperr.As(err)
	if !ok || kind == apperr.Internal {
		log.Error("request failed", sl.Err(err))
		ErrorJSON(w, r, http.StatusInternalServerError, InternalError)
		return
	}

	status := kind.HTTPStatus()
	if status >= http.StatusInternalServerError {
		log.Error("request failed", slog.String("kind", kind.String()), sl.Err(err))
	} else {
		log.Info("request rejected", slog.String("kind", kind.String()), sl.Err(err))
	}
	ErrorJSON(w, r, status, appErr.Message)
}
