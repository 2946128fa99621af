package models

// UsageLog — счётчик запросов пользователя за календарный день.
// Ключ — пара (UserUID, Day), Day в формате 2006-01-02 по UTC.
// Счётчик монотонно растёт в пределах дня и никогда не уменьшается.
type UsageLog struct {
	UserUID string `json:"user_uid"` // Идентификатор пользователя
	Day     string `json:"day"`      // Календарный день в формате 2006-01-02 (UTC)
	Count   int    `json:"count"`    // Количество запросов за день
}
