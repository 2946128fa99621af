// Package quota содержит бизнес-логику учёта дневных счётчиков запросов.
//
// Квота считается в окне фиксированного календарного дня (ключ дня по UTC),
// а не в скользящем 24-часовом окне: на границе дня счётчик начинается
// с нуля независимо от того, когда были последние запросы.
package quota

import (
	"context"
	"log/slog"

	"github.com/magabrotheeeer/ai-pro-platform/internal/clock"
	"github.com/magabrotheeeer/ai-pro-platform/internal/models"
)

// UsageRepository определяет методы хранилища для счётчиков использования.
type UsageRepository interface {
	// GetUsageCount возвращает счётчик за день или 0, если записи нет.
	GetUsageCount(ctx context.Context, userUID, day string) (int, error)
	// IncrementUsage создаёт счётчик со значением 1 или добавляет 1.
	IncrementUsage(ctx context.Context, userUID, day string) (int, error)
	// ListUsage возвращает все счётчики.
	ListUsage(ctx context.Context) ([]*models.UsageLog, error)
	// DeleteUsageBefore удаляет счётчики за дни раньше указанного.
	DeleteUsageBefore(ctx context.Context, day string) (int64, error)
}

// Tracker реализует учёт дневных квот поверх хранилища.
type Tracker struct {
	repo UsageRepository
	clk  clock.Clock
	log  *slog.Logger
}

// NewTracker создает новый экземпляр Tracker.
func NewTracker(repo UsageRepository, clk clock.Clock, log *slog.Logger) *Tracker {
	return &Tracker{repo: repo, clk: clk, log: log}
}

// CurrentCount возвращает счётчик запросов пользователя за день day.
func (t *Tracker) CurrentCount(ctx context.Context, userUID, day string) (int, error) {
	return t.repo.GetUsageCount(ctx, userUID, day)
}

// Increment учитывает один потреблённый запрос за день day и возвращает
// новое значение счётчика. Каждый вызов — один запрос, дедупликации нет.
func (t *Tracker) Increment(ctx context.Context, userUID, day string) (int, error) {
	count, err := t.repo.IncrementUsage(ctx, userUID, day)
	if err != nil {
		return 0, err
	}
	t.log.Info("usage recorded",
		slog.String("user_uid", userUID),
		slog.String("day", day),
		slog.Int("count", count))
	return count, nil
}

// Stats возвращает все счётчики использования для административного обзора.
func (t *Tracker) Stats(ctx context.Context) ([]*models.UsageLog, error) {
	return t.repo.ListUsage(ctx)
}

// Prune удаляет счётчики старше retentionDays относительно текущего дня.
// Это эксплуатационная мера против неограниченного роста журнала:
// старые дни политикой квот больше не читаются.
func (t *Tracker) Prune(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := t.clk.DayKey(t.clk.Now().AddDate(0, 0, -retentionDays))
	removed, err := t.repo.DeleteUsageBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		t.log.Info("pruned old usage counters",
			slog.String("cutoff", cutoff),
			slog.Int64("removed", removed))
	}
	return removed, nil
}
