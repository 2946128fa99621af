// Package payment содержит бизнес-логику платежей: создание намерения,
// одобрение с активацией подписки и отклонение.
package payment

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/ai-pro-platform/internal/clock"
	"github.com/magabrotheeeer/ai-pro-platform/internal/lib/sl"
	"github.com/magabrotheeeer/ai-pro-platform/internal/metrics"
	"github.com/magabrotheeeer/ai-pro-platform/internal/models"
	"github.com/magabrotheeeer/ai-pro-platform/internal/storage"
)

// Ошибки сервиса платежей.
var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrPlanNotFound    = errors.New("plan not found")
)

// Repository определяет методы хранилища для платежей.
type Repository interface {
	CreatePayment(ctx context.Context, payment models.Payment) error
	GetPayment(ctx context.Context, paymentID string) (*models.Payment, error)
	// SettlePayment атомарно переводит pending в терминальный статус;
	// true возвращается только победителю перехода.
	SettlePayment(ctx context.Context, paymentID, status string) (bool, error)
	ListPayments(ctx context.Context) ([]*models.Payment, error)
	ListPaymentsByUser(ctx context.Context, userUID string) ([]*models.Payment, error)
}

// PlanCatalog отдаёт план по идентификатору; отсутствие — nil, nil.
type PlanCatalog interface {
	Lookup(ctx context.Context, planID string) (*models.Plan, error)
}

// SubscriptionLedger активирует подписки.
type SubscriptionLedger interface {
	Activate(ctx context.Context, sub models.Subscription) error
}

// EventPublisher публикует события платформы. Может быть nil —
// тогда публикация пропускается.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// ApprovedEvent — сообщение о платеже, переведённом в paid.
type ApprovedEvent struct {
	PaymentID string  `json:"payment_id"`
	UserUID   string  `json:"user_uid"`
	PlanID    string  `json:"plan_id"`
	Amount    float64 `json:"amount"`
}

// Service реализует обработку платежей.
type Service struct {
	repo      Repository
	plans     PlanCatalog
	ledger    SubscriptionLedger
	publisher EventPublisher
	clk       clock.Clock
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, plans PlanCatalog, ledger SubscriptionLedger,
	publisher EventPublisher, clk clock.Clock, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		plans:     plans,
		ledger:    ledger,
		publisher: publisher,
		clk:       clk,
		log:       log,
	}
}

// CreateIntent создаёт платёж в статусе pending на план planID.
// Сумма берётся из каталога; доступ платёж не даёт.
func (s *Service) CreateIntent(ctx context.Context, userUID, planID string) (*models.Payment, error) {
	plan, err := s.plans.Lookup(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}

	p := models.Payment{
		ID:        uuid.New().String(),
		UserUID:   userUID,
		PlanID:    planID,
		Amount:    plan.Price,
		Status:    models.PaymentPending,
		CreatedAt: s.clk.Now(),
	}
	if err := s.repo.CreatePayment(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("payment intent created",
		slog.String("payment_id", p.ID),
		slog.String("user_uid", userUID),
		slog.String("plan_id", planID))
	return &p, nil
}

// Approve переводит платёж из pending в paid и активирует подписку
// на оплаченный план.
//
// Переход выполняется compare-and-swap-ом по статусу: при конкурентных
// одобрениях одного платежа подписку активирует только победитель.
// Повторное одобрение уже терминального платежа — no-op без повторной
// активации. Если план к моменту одобрения удалён из каталога, платёж
// остаётся paid, подписка не активируется.
func (s *Service) Approve(ctx context.Context, paymentID string) error {
	p, err := s.repo.GetPayment(ctx, paymentID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrPaymentNotFound
	}
	if err != nil {
		return err
	}

	won, err := s.repo.SettlePayment(ctx, paymentID, models.PaymentPaid)
	if err != nil {
		return err
	}
	if !won {
		s.log.Info("payment already settled, approve is a no-op",
			slog.String("payment_id", paymentID))
		return nil
	}
	metrics.PaymentsApproved.Inc()

	plan, err := s.plans.Lookup(ctx, p.PlanID)
	if err != nil {
		return err
	}
	if plan == nil {
		// Известный пробел исходного дизайна: платёж помечен paid,
		// но активировать нечего.
		s.log.Warn("approved payment references missing plan, no subscription activated",
			slog.String("payment_id", paymentID),
			slog.String("plan_id", p.PlanID))
		return nil
	}

	now := s.clk.Now()
	sub := models.Subscription{
		ID:        uuid.New().String(),
		UserUID:   p.UserUID,
		PlanID:    p.PlanID,
		StartDate: now,
		ExpiresAt: now.AddDate(0, 0, plan.DurationDays),
		Status:    models.SubscriptionActive,
	}
	if err := s.ledger.Activate(ctx, sub); err != nil {
		return err
	}

	s.publishApproved(p)
	return nil
}

// Reject переводит платёж из pending в failed. Статус терминален,
// подписки не меняются.
func (s *Service) Reject(ctx context.Context, paymentID string) error {
	_, err := s.repo.GetPayment(ctx, paymentID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrPaymentNotFound
	}
	if err != nil {
		return err
	}

	won, err := s.repo.SettlePayment(ctx, paymentID, models.PaymentFailed)
	if err != nil {
		return err
	}
	if !won {
		s.log.Info("payment already settled, reject is a no-op",
			slog.String("payment_id", paymentID))
	}
	return nil
}

// List возвращает платежи в зависимости от роли: администратору — все,
// пользователю — только его собственные.
func (s *Service) List(ctx context.Context, userUID, role string) ([]*models.Payment, error) {
	if role == models.RoleAdmin {
		return s.repo.ListPayments(ctx)
	}
	return s.repo.ListPaymentsByUser(ctx, userUID)
}

func (s *Service) publishApproved(p *models.Payment) {
	if s.publisher == nil {
		return
	}
	event := ApprovedEvent{
		PaymentID: p.ID,
		UserUID:   p.UserUID,
		PlanID:    p.PlanID,
		Amount:    p.Amount,
	}
	if err := s.publisher.Publish("payment.approved", event); err != nil {
		s.log.Warn("failed to publish payment approved event", sl.Err(err))
	}
}
