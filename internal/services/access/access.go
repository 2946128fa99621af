// Package access реализует ядро авторизации: решение о допуске
// запроса к ИИ для пользователя в конкретный момент времени и учёт
// потреблённых запросов.
//
// Authorize не имеет побочных эффектов; запись расхода выполняется
// отдельным вызовом RecordUsage после завершения нижестоящего действия.
// Разделение позволяет вызывающей стороне самой решать, списывать ли
// квоту при неудачном вызове провайдера (текущая политика: списывать
// всегда).
package access

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/ai-pro-platform/internal/clock"
	"github.com/magabrotheeeer/ai-pro-platform/internal/metrics"
	"github.com/magabrotheeeer/ai-pro-platform/internal/models"
)

// DenyReason — причина отказа в доступе. Отказ — это нормальный
// результат, данные, а не ошибка.
type DenyReason string

// Причины отказа.
const (
	DenyNoSubscription      DenyReason = "no_subscription"
	DenySubscriptionExpired DenyReason = "subscription_expired"
	DenyPlanNotFound        DenyReason = "plan_not_found"
	DenyQuotaExceeded       DenyReason = "quota_exceeded"
)

// Decision — результат проверки авторизации.
type Decision struct {
	Allowed   bool       `json:"allowed"`          // Допущен ли запрос
	Remaining int        `json:"remaining"`        // Остаток квоты на день (при Allowed)
	Reason    DenyReason `json:"reason,omitempty"` // Причина отказа (при !Allowed)
}

// SubscriptionLedger отдаёт активную подписку пользователя, не сверяя
// её ExpiresAt с текущим временем.
type SubscriptionLedger interface {
	ActiveFor(ctx context.Context, userUID string) (*models.Subscription, error)
}

// PlanCatalog отдаёт план по идентификатору; отсутствие плана — nil, nil.
type PlanCatalog interface {
	Lookup(ctx context.Context, planID string) (*models.Plan, error)
}

// QuotaTracker читает и увеличивает дневные счётчики запросов.
type QuotaTracker interface {
	CurrentCount(ctx context.Context, userUID, day string) (int, error)
	Increment(ctx context.Context, userUID, day string) (int, error)
}

// Service — ядро авторизации.
type Service struct {
	ledger SubscriptionLedger
	plans  PlanCatalog
	quota  QuotaTracker
	clk    clock.Clock
	log    *slog.Logger
}

// New создает новый экземпляр Service.
func New(ledger SubscriptionLedger, plans PlanCatalog, quota QuotaTracker,
	clk clock.Clock, log *slog.Logger) *Service {
	return &Service{
		ledger: ledger,
		plans:  plans,
		quota:  quota,
		clk:    clk,
		log:    log,
	}
}

// Authorize решает, допустить ли запрос пользователя к ИИ в момент now.
// Проверка только читает состояние; счётчик не меняется.
//
// Порядок проверок фиксирован: подписка, календарное истечение, план,
// квота. Истечение вычисляется по now, хранимому статусу active
// не доверяем.
func (s *Service) Authorize(ctx context.Context, userUID string, now time.Time) (Decision, error) {
	sub, err := s.ledger.ActiveFor(ctx, userUID)
	if err != nil {
		return Decision{}, err
	}
	if sub == nil {
		return s.deny(userUID, DenyNoSubscription), nil
	}

	if !sub.ExpiresAt.After(now) {
		return s.deny(userUID, DenySubscriptionExpired), nil
	}

	plan, err := s.plans.Lookup(ctx, sub.PlanID)
	if err != nil {
		return Decision{}, err
	}
	if plan == nil {
		// Подписка ссылается на удалённый план: считаем нулевое
		// разрешение, не падаем.
		return s.deny(userUID, DenyPlanNotFound), nil
	}

	used, err := s.quota.CurrentCount(ctx, userUID, s.clk.DayKey(now))
	if err != nil {
		return Decision{}, err
	}
	if used >= plan.DailyRequestLimit {
		return s.deny(userUID, DenyQuotaExceeded), nil
	}

	metrics.AuthorizeDecisions.WithLabelValues("allow").Inc()
	return Decision{Allowed: true, Remaining: plan.DailyRequestLimit - used}, nil
}

// RecordUsage списывает один запрос с дневной квоты пользователя.
// Вызывается после завершения нижестоящего действия независимо от его
// исхода и не блокируется его длительностью.
func (s *Service) RecordUsage(ctx context.Context, userUID string, now time.Time) error {
	_, err := s.quota.Increment(ctx, userUID, s.clk.DayKey(now))
	return err
}

func (s *Service) deny(userUID string, reason DenyReason) Decision {
	metrics.AuthorizeDecisions.WithLabelValues(string(reason)).Inc()
	s.log.Info("request denied",
		slog.String("user_uid", userUID),
		slog.String("reason", string(reason)))
	return Decision{Allowed: false, Reason: reason}
}
