package models

// SiteSettings — singleton с настройками сайта. Режим обслуживания
// проверяется на границе представления (middleware), а не внутри
// ядра авторизации.
type SiteSettings struct {
	SiteName        string `json:"site_name"`        // Отображаемое имя сайта
	Currency        string `json:"currency"`         // Код валюты, например USD
	MaintenanceMode bool   `json:"maintenance_mode"` // Флаг режима обслуживания
}

// DummySettings используется для приёма настроек из JSON-запроса
// администратора до валидации.
type DummySettings struct {
	SiteName        string `json:"site_name" validate:"required"`
	Currency        string `json:"currency" validate:"required,len=3"`
	MaintenanceMode bool   `json:"maintenance_mode"`
}
