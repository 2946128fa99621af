// Package paymentreject реализует HTTP-обработчик отклонения платежа.
// Доступен только администратору. Статус failed терминален, подписки
// не меняются.
package paymentreject

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/ai-pro-platform/internal/http/response"
	"github.com/magabrotheeeer/ai-pro-platform/internal/lib/sl"
	"github.com/magabrotheeeer/ai-pro-platform/internal/services/payment"
)

// Service описывает интерфейс бизнес-логики платежей.
type Service interface {
	Reject(ctx context.Context, paymentID string) error
}

// Handler управляет HTTP-запросами на отклонение платежа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.reject"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	paymentID := chi.URLParam(r, "id")
	if paymentID == "" {
		log.Error("payment id missing in url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("payment id is required"))
		return
	}

	if err := h.service.Reject(r.Context(), paymentID); err != nil {
		if errors.Is(err, payment.ErrPaymentNotFound) {
			log.Error("payment not found", slog.String("payment_id", paymentID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("payment not found"))
			return
		}
		log.Error("failed to reject payment", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not reject payment"))
		return
	}

	log.Info("payment rejected", slog.String("payment_id", paymentID))
	render.JSON(w, r, response.OK())
}
