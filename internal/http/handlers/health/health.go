// Package health реализует публичную проверку доступности API.
package health

import (
	"log/slog"
	"net/http"

	"github.com/geobee/geobee/internal/http/response"
)

// Handler обрабатывает HTTP-запросы проверки доступности.
type Handler struct {
	log *slog.Logger
}

// New создаёт Handler проверки доступности.
func New(log *slog.Logger) *Handler {
	return &Handler{
		log: log,
	}
}

// ServeHTTP godoc
// @Summary Проверка доступности
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, map[string]bool{"ok": true})
}
