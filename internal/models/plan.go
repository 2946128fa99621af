package models

// Plan представляет тарифный план из каталога.
// План считается неизменяемым после того, как на него ссылаются
// активные подписки или платежи; ссылочная целостность держится
// только на id, поэтому потребители обязаны переносить отсутствие плана.
type Plan struct {
	ID                string   `json:"id"`                  // Идентификатор плана (free, basic, pro, vip)
	Name              string   `json:"name"`                // Отображаемое название
	Price             float64  `json:"price"`               // Цена за период
	DurationDays      int      `json:"duration_days"`       // Длительность подписки в днях
	DailyRequestLimit int      `json:"daily_request_limit"` // Дневной лимит запросов к ИИ
	Features          []string `json:"features"`            // Список возможностей плана
}

// DummyPlan используется для приёма данных плана из JSON-запроса
// администратора до валидации.
type DummyPlan struct {
	ID                string   `json:"id" validate:"required,alphanum"`
	Name              string   `json:"name" validate:"required"`
	Price             float64  `json:"price" validate:"gte=0"`
	DurationDays      int      `json:"duration_days" validate:"required,gt=0"`
	DailyRequestLimit int      `json:"daily_request_limit" validate:"required,gt=0"`
	Features          []string `json:"features"`
}
