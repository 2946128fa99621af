// Package chat связывает ядро авторизации с внешним ИИ-провайдером:
// проверка допуска, вызов провайдера, учёт расхода.
package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/ai-pro-platform/internal/clock"
	"github.com/magabrotheeeer/ai-pro-platform/internal/lib/sl"
	"github.com/magabrotheeeer/ai-pro-platform/internal/metrics"
	"github.com/magabrotheeeer/ai-pro-platform/internal/services/access"
)

// Authorizer — ядро авторизации.
type Authorizer interface {
	Authorize(ctx context.Context, userUID string, now time.Time) (access.Decision, error)
	RecordUsage(ctx context.Context, userUID string, now time.Time) error
}

// Provider — внешний ИИ-провайдер. Complete не возвращает ошибку:
// при недоступности провайдера отдаётся фиксированная строка.
type Provider interface {
	Complete(ctx context.Context, prompt string) string
}

// Reply — результат обращения к чату.
type Reply struct {
	Text      string `json:"text"`      // Ответ модели или строка-заглушка
	Remaining int    `json:"remaining"` // Остаток квоты после этого запроса
}

// Service реализует сценарий чата.
type Service struct {
	authorizer Authorizer
	provider   Provider
	clk        clock.Clock
	log        *slog.Logger
}

// New создает новый экземпляр Service.
func New(authorizer Authorizer, provider Provider, clk clock.Clock, log *slog.Logger) *Service {
	return &Service{
		authorizer: authorizer,
		provider:   provider,
		clk:        clk,
		log:        log,
	}
}

// Send выполняет один запрос пользователя к ИИ.
//
// Сначала решение ядра авторизации; при отказе провайдер не вызывается
// и квота не списывается. При допуске расход записывается после вызова
// провайдера независимо от его исхода: неудачный вызов тоже списывает
// квоту (сохранённая политика).
func (s *Service) Send(ctx context.Context, userUID, prompt string) (Reply, access.Decision, error) {
	now := s.clk.Now()

	decision, err := s.authorizer.Authorize(ctx, userUID, now)
	if err != nil {
		return Reply{}, access.Decision{}, err
	}
	if !decision.Allowed {
		metrics.ChatRequests.WithLabelValues("denied").Inc()
		return Reply{}, decision, nil
	}

	text := s.provider.Complete(ctx, prompt)
	metrics.ChatRequests.WithLabelValues("completed").Inc()

	if err := s.authorizer.RecordUsage(ctx, userUID, now); err != nil {
		// Ответ уже получен; потерянный инкремент хуже лишнего отказа,
		// поэтому ошибку поднимаем.
		s.log.Error("failed to record usage", slog.String("user_uid", userUID), sl.Err(err))
		return Reply{}, access.Decision{}, err
	}

	return Reply{Text: text, Remaining: decision.Remaining - 1}, decision, nil
}
