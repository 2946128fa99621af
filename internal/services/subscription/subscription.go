// Package subscription содержит бизнес-логику реестра подписок.
package subscription

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/ai-pro-platform/internal/models"
	"github.com/magabrotheeeer/ai-pro-platform/internal/storage"
)

// Repository определяет методы хранилища для подписок.
type Repository interface {
	// GetActiveSubscription возвращает подписку со статусом active
	// или storage.ErrNotFound.
	GetActiveSubscription(ctx context.Context, userUID string) (*models.Subscription, error)
	// ActivateSubscription атомарно переводит прежние активные подписки
	// пользователя в expired и вставляет новую активную.
	ActivateSubscription(ctx context.Context, sub models.Subscription) error
	// ListSubscriptions возвращает все подписки пользователя.
	ListSubscriptions(ctx context.Context, userUID string) ([]*models.Subscription, error)
}

// Ledger реализует реестр подписок: не более одной активной на
// пользователя в любой момент времени.
type Ledger struct {
	repo Repository
	log  *slog.Logger
}

// NewLedger создает новый экземпляр Ledger.
func NewLedger(repo Repository, log *slog.Logger) *Ledger {
	return &Ledger{repo: repo, log: log}
}

// ActiveFor возвращает подписку пользователя со статусом active или nil,
// если её нет. Реестр не сверяет ExpiresAt с текущим временем и не
// «доистекает» записи при чтении: статус и календарное истечение — два
// независимых сигнала, сопоставляет их вызывающая сторона.
func (l *Ledger) ActiveFor(ctx context.Context, userUID string) (*models.Subscription, error) {
	sub, err := l.repo.GetActiveSubscription(ctx, userUID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Activate делает sub единственной активной подпиской её пользователя.
// Прежняя активная запись (если была) переводится в expired в той же
// транзакции хранилища.
func (l *Ledger) Activate(ctx context.Context, sub models.Subscription) error {
	if err := l.repo.ActivateSubscription(ctx, sub); err != nil {
		return err
	}
	l.log.Info("subscription activated",
		slog.String("subscription_id", sub.ID),
		slog.String("user_uid", sub.UserUID),
		slog.String("plan_id", sub.PlanID),
		slog.Time("expires_at", sub.ExpiresAt))
	return nil
}

// History возвращает все подписки пользователя, свежие первыми.
func (l *Ledger) History(ctx context.Context, userUID string) ([]*models.Subscription, error) {
	return l.repo.ListSubscriptions(ctx, userUID)
}
