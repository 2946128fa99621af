// Package settings содержит бизнес-логику настроек сайта (singleton),
// включая кеширование.
package settings

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/ai-pro-platform/internal/lib/sl"
	"github.com/magabrotheeeer/ai-pro-platform/internal/models"
)

const settingsCacheKey = "settings:site"

// Repository определяет методы хранилища для настроек.
type Repository interface {
	GetSettings(ctx context.Context) (*models.SiteSettings, error)
	SaveSettings(ctx context.Context, settings models.SiteSettings) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service реализует чтение и изменение настроек сайта.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

// Get возвращает настройки сайта, используя кеш или хранилище.
func (s *Service) Get(ctx context.Context) (*models.SiteSettings, error) {
	var result *models.SiteSettings
	found, err := s.cache.Get(settingsCacheKey, &result)
	if err != nil {
		s.log.Warn("failed to read settings from cache", sl.Err(err))
	}
	if found {
		return result, nil
	}

	result, err = s.repo.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(settingsCacheKey, result, 5*time.Minute); err != nil {
		s.log.Warn("failed to cache settings", sl.Err(err))
	}
	return result, nil
}

// Update перезаписывает настройки сайта и инвалидирует кеш.
func (s *Service) Update(ctx context.Context, req models.DummySettings) error {
	settings := models.SiteSettings{
		SiteName:        req.SiteName,
		Currency:        req.Currency,
		MaintenanceMode: req.MaintenanceMode,
	}
	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return err
	}
	s.log.Info("site settings updated",
		slog.Bool("maintenance_mode", settings.MaintenanceMode))

	if err := s.cache.Invalidate(settingsCacheKey); err != nil {
		s.log.Warn("failed to invalidate settings cache", sl.Err(err))
	}
	return nil
}
