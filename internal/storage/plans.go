package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/ai-pro-platform/internal/models"
)

// GetPlan возвращает тарифный план по его идентификатору.
func (s *Storage) GetPlan(ctx context.Context, planID string) (*models.Plan, error) {
	const op = "storage.GetPlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, price, duration_days, daily_request_limit, features
			  FROM plans
			  WHERE id = $1`
	p := &models.Plan{}
	var features []byte
	row := s.DB.QueryRowContext(ctx, query, planID)
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.DurationDays,
		&p.DailyRequestLimit, &features); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal(features, &p.Features); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// ListPlans возвращает весь каталог планов по возрастанию цены.
func (s *Storage) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	const op = "storage.ListPlans"

	query := `SELECT id, name, price, duration_days, daily_request_limit, features
			  FROM plans
			  ORDER BY price`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Plan
	for rows.Next() {
		p := &models.Plan{}
		var features []byte
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.DurationDays,
			&p.DailyRequestLimit, &features); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := json.Unmarshal(features, &p.Features); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// SavePlan вставляет план или обновляет существующий с тем же id.
func (s *Storage) SavePlan(ctx context.Context, plan models.Plan) error {
	const op = "storage.SavePlan"

	features, err := json.Marshal(plan.Features)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO plans (id, name, price, duration_days, daily_request_limit, features)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT (id) DO UPDATE SET
			      name = EXCLUDED.name,
			      price = EXCLUDED.price,
			      duration_days = EXCLUDED.duration_days,
			      daily_request_limit = EXCLUDED.daily_request_limit,
			      features = EXCLUDED.features`
	if _, err := s.DB.ExecContext(ctx, query, plan.ID, plan.Name, plan.Price,
		plan.DurationDays, plan.DailyRequestLimit, features); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RemovePlan удаляет план из каталога и возвращает количество удалённых строк.
// Подписки и платежи, ссылающиеся на план, не трогаются: потребители
// обязаны переносить отсутствие плана.
func (s *Storage) RemovePlan(ctx context.Context, planID string) (int64, error) {
	const op = "storage.RemovePlan"

	res, err := s.DB.ExecContext(ctx, `DELETE FROM plans WHERE id = $1`, planID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
