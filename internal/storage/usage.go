package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/ai-pro-platform/internal/models"
)

// GetUsageCount возвращает счётчик запросов пользователя за день
// или 0, если записи ещё нет.
func (s *Storage) GetUsageCount(ctx context.Context, userUID, day string) (int, error) {
	const op = "storage.GetUsageCount"

	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT count FROM usage_logs WHERE user_uid = $1 AND day = $2`,
		userUID, day).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// IncrementUsage создаёт счётчик со значением 1 или увеличивает
// существующий на 1 и возвращает новое значение. Инкремент выполняется
// одним UPSERT, поэтому конкурентные вызовы не теряют обновлений.
func (s *Storage) IncrementUsage(ctx context.Context, userUID, day string) (int, error) {
	const op = "storage.IncrementUsage"

	var count int
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO usage_logs (user_uid, day, count)
		 VALUES ($1, $2, 1)
		 ON CONFLICT (user_uid, day)
		 DO UPDATE SET count = usage_logs.count + 1
		 RETURNING count`,
		userUID, day).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// ListUsage возвращает все счётчики использования, свежие дни первыми.
func (s *Storage) ListUsage(ctx context.Context) ([]*models.UsageLog, error) {
	const op = "storage.ListUsage"

	rows, err := s.DB.QueryContext(ctx,
		`SELECT user_uid, day, count FROM usage_logs ORDER BY day DESC, user_uid`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.UsageLog
	for rows.Next() {
		l := &models.UsageLog{}
		if err := rows.Scan(&l.UserUID, &l.Day, &l.Count); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

// DeleteUsageBefore удаляет счётчики за дни строго раньше указанного
// и возвращает количество удалённых строк. Ключи дней сравниваются
// лексикографически, формат 2006-01-02 это допускает.
func (s *Storage) DeleteUsageBefore(ctx context.Context, day string) (int64, error) {
	const op = "storage.DeleteUsageBefore"

	res, err := s.DB.ExecContext(ctx, `DELETE FROM usage_logs WHERE day < $1`, day)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
