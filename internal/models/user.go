// Package models содержит доменные структуры платформы:
// пользователей, тарифные планы, подписки, платежи, счётчики
// использования и настройки сайта.
package models

import "time"

// Роли пользователей.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UUID         string    `json:"uuid"`       // Уникальный идентификатор пользователя
	Username     string    `json:"username"`   // Имя пользователя
	Email        string    `json:"email"`      // Электронная почта (уникальная)
	PasswordHash string    `json:"-"`          // Хэш пароля пользователя
	Role         string    `json:"role"`       // Роль пользователя, admin или user
	CreatedAt    time.Time `json:"created_at"` // Дата регистрации
}
