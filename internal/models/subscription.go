package models

import "time"

// Статусы подписки. Статус и календарное истечение — два независимых
// сигнала: запись может числиться active после наступления ExpiresAt,
// пока её явно не переведут в expired при активации новой подписки.
const (
	SubscriptionActive  = "active"
	SubscriptionExpired = "expired"
)

// Subscription связывает пользователя с планом на интервале
// [StartDate, ExpiresAt). Инвариант хранилища: не более одной
// записи со статусом active на пользователя.
type Subscription struct {
	ID        string    `json:"id"`         // Уникальный идентификатор подписки
	UserUID   string    `json:"user_uid"`   // Идентификатор пользователя
	PlanID    string    `json:"plan_id"`    // Идентификатор плана
	StartDate time.Time `json:"start_date"` // Дата начала действия
	ExpiresAt time.Time `json:"expires_at"` // Дата окончания действия
	Status    string    `json:"status"`     // active или expired
}
