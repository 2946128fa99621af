// Package quota реализует HTTP-обработчик проверки текущей квоты.
//
// Возвращает решение ядра авторизации без побочных эффектов:
// счётчик запросов не меняется.
package quota

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/ai-pro-platform/internal/clock"
	"github.com/magabrotheeeer/ai-pro-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ai-pro-platform/internal/http/response"
	"github.com/magabrotheeeer/ai-pro-platform/internal/lib/sl"
	"github.com/magabrotheeeer/ai-pro-platform/internal/services/access"
)

// Service описывает интерфейс ядра авторизации.
type Service interface {
	Authorize(ctx context.Context, userUID string, now time.Time) (access.Decision, error)
}

// Handler управляет HTTP-запросами на проверку квоты.
type Handler struct {
	log     *slog.Logger
	service Service
	clk     clock.Clock
}

// New создает новый Handler с переданными логгером, сервисом и часами.
func New(log *slog.Logger, service Service, clk clock.Clock) *Handler {
	return &Handler{log: log, service: service, clk: clk}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.chat.quota"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	decision, err := h.service.Authorize(r.Context(), userUID, h.clk.Now())
	if err != nil {
		log.Error("failed to check quota", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	render.JSON(w, r, response.OKWithData(decision))
}
