// Package plan содержит бизнес-логику каталога тарифных планов,
// включая кеширование каталога.
package plan

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/ai-pro-platform/internal/lib/sl"
	"github.com/magabrotheeeer/ai-pro-platform/internal/models"
	"github.com/magabrotheeeer/ai-pro-platform/internal/storage"
)

const catalogCacheKey = "plans:catalog"

// Repository определяет методы хранилища для планов.
type Repository interface {
	GetPlan(ctx context.Context, planID string) (*models.Plan, error)
	ListPlans(ctx context.Context) ([]*models.Plan, error)
	SavePlan(ctx context.Context, plan models.Plan) error
	RemovePlan(ctx context.Context, planID string) (int64, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service реализует каталог планов поверх хранилища и кеша.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

// Lookup возвращает план по id или nil, если план удалён из каталога.
// Отсутствие плана — не ошибка: подписки и платежи могут ссылаться
// на уже удалённые планы.
func (s *Service) Lookup(ctx context.Context, planID string) (*models.Plan, error) {
	plan, err := s.repo.GetPlan(ctx, planID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// List возвращает каталог планов, используя кеш или хранилище.
func (s *Service) List(ctx context.Context) ([]*models.Plan, error) {
	var result []*models.Plan
	found, err := s.cache.Get(catalogCacheKey, &result)
	if err != nil {
		s.log.Warn("failed to read plan catalog from cache", sl.Err(err))
	}
	if found {
		return result, nil
	}

	result, err = s.repo.ListPlans(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(catalogCacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to cache plan catalog", sl.Err(err))
	}
	return result, nil
}

// Save вставляет или обновляет план и инвалидирует кеш каталога.
func (s *Service) Save(ctx context.Context, req models.DummyPlan) error {
	plan := models.Plan{
		ID:                req.ID,
		Name:              req.Name,
		Price:             req.Price,
		DurationDays:      req.DurationDays,
		DailyRequestLimit: req.DailyRequestLimit,
		Features:          req.Features,
	}
	if err := s.repo.SavePlan(ctx, plan); err != nil {
		return err
	}
	s.log.Info("plan saved", slog.String("plan_id", plan.ID))

	if err := s.cache.Invalidate(catalogCacheKey); err != nil {
		s.log.Warn("failed to invalidate plan catalog cache", sl.Err(err))
	}
	return nil
}

// Remove удаляет план из каталога. Существующие подписки и платежи
// со ссылкой на план не изменяются.
func (s *Service) Remove(ctx context.Context, planID string) (int64, error) {
	count, err := s.repo.RemovePlan(ctx, planID)
	if err != nil {
		return 0, err
	}
	if err := s.cache.Invalidate(catalogCacheKey); err != nil {
		s.log.Warn("failed to invalidate plan catalog cache", sl.Err(err))
	}
	return count, nil
}
