package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/ai-pro-platform/internal/models"
)

// GetSettings возвращает singleton-строку с настройками сайта.
func (s *Storage) GetSettings(ctx context.Context) (*models.SiteSettings, error) {
	const op = "storage.GetSettings"

	settings := &models.SiteSettings{}
	err := s.DB.QueryRowContext(ctx,
		`SELECT site_name, currency, maintenance_mode FROM settings WHERE id = 1`).
		Scan(&settings.SiteName, &settings.Currency, &settings.MaintenanceMode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return settings, nil
}

// SaveSettings перезаписывает singleton-строку с настройками сайта.
func (s *Storage) SaveSettings(ctx context.Context, settings models.SiteSettings) error {
	const op = "storage.SaveSettings"

	query := `INSERT INTO settings (id, site_name, currency, maintenance_mode)
			  VALUES (1, $1, $2, $3)
			  ON CONFLICT (id) DO UPDATE SET
			      site_name = EXCLUDED.site_name,
			      currency = EXCLUDED.currency,
			      maintenance_mode = EXCLUDED.maintenance_mode`
	if _, err := s.DB.ExecContext(ctx, query, settings.SiteName,
		settings.Currency, settings.MaintenanceMode); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
