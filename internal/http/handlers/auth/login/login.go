// Package login реализует HTTP-обработчик входа и выдачи токена доступа.
package login

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/geobee/geobee/internal/http/response"
	"github.com/geobee/geobee/internal/lib/sl"
)

// TokenType тип выдаваемого токена.
const TokenType = "Bearer"

// Request — входные данные для входа
type Request struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Response — выданный токен
type Response struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
}

// Service описывает проверку учётных данных.
type Service interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// Handler обрабатывает HTTP-запросы входа пользователя.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создаёт Handler, который делегирует вход сервису.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вход пользователя
// @Description Проверяет email и пароль и выдаёт JWT. Неизвестный email и неверный пароль неразличимы.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} Response "Токен доступа"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или пустые поля"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Info("failed to decode request body", sl.Err(err))
		response.ErrorJSON(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.ErrorJSON(w, r, http.StatusBadRequest, "Missing fields")
		return
	}

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Debug("token issued")
	response.JSON(w, r, http.StatusOK, Response{Token: token, TokenType: TokenType})
}
