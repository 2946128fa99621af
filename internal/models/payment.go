package models

import "time"

// Статусы платежа: pending -> paid | failed, переходы терминальны.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// Payment представляет намерение обменять деньги на подписку.
// Платёж в статусе pending доступа не даёт; переход в paid —
// единственный триггер активации подписки.
type Payment struct {
	ID        string    `json:"id"`         // Уникальный идентификатор платежа
	UserUID   string    `json:"user_uid"`   // Идентификатор пользователя
	PlanID    string    `json:"plan_id"`    // Идентификатор оплачиваемого плана
	Amount    float64   `json:"amount"`     // Сумма платежа
	Status    string    `json:"status"`     // pending, paid или failed
	CreatedAt time.Time `json:"created_at"` // Дата создания
}

// DummyPaymentCreate используется для приёма запроса на создание
// платежа из JSON до валидации.
type DummyPaymentCreate struct {
	PlanID string `json:"plan_id" validate:"required"`
}
