// Package compare реализует HTTP-обработчик сравнения до пяти стран.
package compare

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/geobee/geobee/internal/http/response"
	"github.com/geobee/geobee/internal/models"
)

// Service строит сравнение по строке кодов через запятую.
type Service interface {
	Compare(ctx context.Context, codes string) ([]models.Comparison, error)
}

// Handler обрабатывает HTTP-запросы сравнения стран.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler, который делегирует сравнение сервису.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Сравнение стран
// @Description Сравнивает до пяти стран в порядке запроса. Неизвестные коды пропускаются.
// @Tags Countries
// @Produce json
// @Param codes query string true "ISO3-коды через запятую"
// @Success 200 {array} models.Comparison
// @Failure 400 {object} response.ErrorResponse "Нет кодов, нет корректных кодов или больше пяти"
// @Failure 401 {object} response.ErrorResponse "Нет или неверный токен"
// @Failure 404 {object} response.ErrorResponse "Ни одна страна не найдена"
// @Failure 502 {object} response.ErrorResponse "Источник данных недоступен"
// @Security BearerAuth
// @Router /compare [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.country.compare"

	codes := r.URL.Query().Get("codes")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("codes", codes),
	)

	result, err := h.service.Compare(r.Context(), codes)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}
