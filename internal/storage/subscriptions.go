package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/ai-pro-platform/internal/models"
)

// GetActiveSubscription возвращает подписку пользователя со статусом active
// или ErrNotFound, если такой нет. Сравнение ExpiresAt с текущим временем
// здесь не выполняется: запись со статусом active отдается как есть,
// истечение по календарю проверяет вызывающая сторона.
func (s *Storage) GetActiveSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "storage.GetActiveSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, plan_id, start_date, expires_at, status
			  FROM subscriptions
			  WHERE user_uid = $1 AND status = 'active'
			  LIMIT 1`
	sub := &models.Subscription{}
	row := s.DB.QueryRowContext(ctx, query, userUID)
	if err := row.Scan(&sub.ID, &sub.UserUID, &sub.PlanID, &sub.StartDate,
		&sub.ExpiresAt, &sub.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// ActivateSubscription в одной транзакции переводит все активные подписки
// пользователя в expired и вставляет новую запись со статусом active.
// После коммита у пользователя ровно одна активная подписка; промежуточное
// состояние с двумя активными снаружи не наблюдаемо.
func (s *Storage) ActivateSubscription(ctx context.Context, sub models.Subscription) error {
	const op = "storage.ActivateSubscription"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`UPDATE subscriptions SET status = 'expired'
		 WHERE user_uid = $1 AND status = 'active'`, sub.UserUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO subscriptions (id, user_uid, plan_id, start_date, expires_at, status)
		 VALUES ($1, $2, $3, $4, $5, 'active')`,
		sub.ID, sub.UserUID, sub.PlanID, sub.StartDate, sub.ExpiresAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListSubscriptions возвращает все подписки пользователя, свежие первыми.
func (s *Storage) ListSubscriptions(ctx context.Context, userUID string) ([]*models.Subscription, error) {
	const op = "storage.ListSubscriptions"

	query := `SELECT id, user_uid, plan_id, start_date, expires_at, status
			  FROM subscriptions
			  WHERE user_uid = $1
			  ORDER BY start_date DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Subscription
	for rows.Next() {
		sub := &models.Subscription{}
		if err := rows.Scan(&sub.ID, &sub.UserUID, &sub.PlanID, &sub.StartDate,
			&sub.ExpiresAt, &sub.Status); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sub)
	}
	return result, rows.Err()
}
