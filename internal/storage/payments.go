package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/ai-pro-platform/internal/models"
)

// CreatePayment сохраняет новый платёж.
func (s *Storage) CreatePayment(ctx context.Context, payment models.Payment) error {
	const op = "storage.CreatePayment"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payments (id, user_uid, plan_id, amount, status, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := s.DB.ExecContext(ctx, query, payment.ID, payment.UserUID,
		payment.PlanID, payment.Amount, payment.Status, payment.CreatedAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetPayment возвращает платёж по идентификатору.
func (s *Storage) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	const op = "storage.GetPayment"

	query := `SELECT id, user_uid, plan_id, amount, status, created_at
			  FROM payments
			  WHERE id = $1`
	p := &models.Payment{}
	row := s.DB.QueryRowContext(ctx, query, paymentID)
	if err := row.Scan(&p.ID, &p.UserUID, &p.PlanID, &p.Amount,
		&p.Status, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// SettlePayment атомарно переводит платёж из pending в указанный
// терминальный статус. Возвращает true, если переход выполнил именно
// этот вызов; false — если платёж уже был в терминальном статусе.
// Сравнение выполняется в одном UPDATE, поэтому при конкурентных
// вызовах побеждает ровно один.
func (s *Storage) SettlePayment(ctx context.Context, paymentID, status string) (bool, error) {
	const op = "storage.SettlePayment"

	res, err := s.DB.ExecContext(ctx,
		`UPDATE payments SET status = $2 WHERE id = $1 AND status = 'pending'`,
		paymentID, status)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return count == 1, nil
}

// ListPayments возвращает все платежи, свежие первыми.
func (s *Storage) ListPayments(ctx context.Context) ([]*models.Payment, error) {
	const op = "storage.ListPayments"
	return s.listPayments(ctx, op,
		`SELECT id, user_uid, plan_id, amount, status, created_at
		 FROM payments ORDER BY created_at DESC`)
}

// ListPaymentsByUser возвращает платежи одного пользователя, свежие первыми.
func (s *Storage) ListPaymentsByUser(ctx context.Context, userUID string) ([]*models.Payment, error) {
	const op = "storage.ListPaymentsByUser"
	return s.listPayments(ctx, op,
		`SELECT id, user_uid, plan_id, amount, status, created_at
		 FROM payments WHERE user_uid = $1 ORDER BY created_at DESC`, userUID)
}

func (s *Storage) listPayments(ctx context.Context, op, query string, args ...any) ([]*models.Payment, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Payment
	for rows.Next() {
		p := &models.Payment{}
		if err := rows.Scan(&p.ID, &p.UserUID, &p.PlanID, &p.Amount,
			&p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
