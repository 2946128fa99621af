// Package send реализует HTTP-обработчик запроса к ИИ.
//
// Handler принимает JSON с prompt, извлекает пользователя из контекста,
// прогоняет запрос через сценарий чата (авторизация, вызов провайдера,
// учёт расхода) и возвращает ответ модели с остатком квоты.
//
// Отказ ядра авторизации — это не ошибка сервера: возвращается 403
// с причиной отказа в теле.
package send

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/ai-pro-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ai-pro-platform/internal/http/response"
	"github.com/magabrotheeeer/ai-pro-platform/internal/lib/sl"
	"github.com/magabrotheeeer/ai-pro-platform/internal/services/access"
	"github.com/magabrotheeeer/ai-pro-platform/internal/services/chat"
)

// Request — входные данные запроса к ИИ.
type Request struct {
	Prompt string `json:"prompt" validate:"required,max=8192"`
}

// Service описывает интерфейс сценария чата.
type Service interface {
	Send(ctx context.Context, userUID, prompt string) (chat.Reply, access.Decision, error)
}

// Handler управляет HTTP-запросами к чату.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Отправить запрос к ИИ
// @Description Проверяет подписку и дневную квоту, вызывает модель и списывает один запрос.
// @Tags Chat
// @Accept  json
// @Produce  json
// @Param request body Request true "Текст запроса"
// @Success 200 {object} response.Response "Ответ модели и остаток квоты"
// @Failure 400 {object} response.Response "Некорректный JSON"
// @Failure 403 {object} response.Response "Отказ: нет подписки, подписка истекла или квота исчерпана"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Router /chat [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.chat.send"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	reply, decision, err := h.service.Send(r.Context(), userUID, req.Prompt)
	if err != nil {
		log.Error("chat request failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}
	if !decision.Allowed {
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.OKWithData(decision))
		return
	}

	render.JSON(w, r, response.OKWithData(reply))
}
