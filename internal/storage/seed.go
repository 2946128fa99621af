package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/ai-pro-platform/internal/lib/password"
	"github.com/magabrotheeeer/ai-pro-platform/internal/models"
)

// Стартовый каталог планов.
var seedPlans = []models.Plan{
	{
		ID: "free", Name: "Free Starter", Price: 0,
		DurationDays: 3650, DailyRequestLimit: 5,
		Features: []string{"Basic AI Access", "Community Support", "Slow Speed"},
	},
	{
		ID: "basic", Name: "Basic", Price: 9.99,
		DurationDays: 30, DailyRequestLimit: 50,
		Features: []string{"Faster Response", "Email Support", "50 Daily Requests"},
	},
	{
		ID: "pro", Name: "Pro", Price: 29.99,
		DurationDays: 30, DailyRequestLimit: 150,
		Features: []string{"High Speed", "Priority Support", "150 Daily Requests", "Advanced Models"},
	},
	{
		ID: "vip", Name: "VIP", Price: 99.99,
		DurationDays: 30, DailyRequestLimit: 1000,
		Features: []string{"Unlimited Speed", "24/7 Support", "1000 Daily Requests", "Early Access"},
	},
}

var seedSettings = models.SiteSettings{
	SiteName:        "AI Pro Platform",
	Currency:        "USD",
	MaintenanceMode: false,
}

const (
	seedAdminEmail    = "admin@example.com"
	seedAdminPassword = "admin123"
)

// Seed заполняет пустую базу стартовым каталогом планов, настройками
// по умолчанию и административной учётной записью. Существующие записи
// не перезаписываются, повторный запуск безопасен.
func (s *Storage) Seed(ctx context.Context) error {
	const op = "storage.Seed"

	for _, plan := range seedPlans {
		if err := s.seedPlan(ctx, plan); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if _, err := s.DB.ExecContext(ctx,
		`INSERT INTO settings (id, site_name, currency, maintenance_mode)
		 VALUES (1, $1, $2, $3)
		 ON CONFLICT (id) DO NOTHING`,
		seedSettings.SiteName, seedSettings.Currency, seedSettings.MaintenanceMode); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.seedAdmin(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storage) seedPlan(ctx context.Context, plan models.Plan) error {
	existing, err := s.GetPlan(ctx, plan.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if existing != nil {
		return nil
	}
	return s.SavePlan(ctx, plan)
}

func (s *Storage) seedAdmin(ctx context.Context) error {
	_, err := s.GetUserByEmail(ctx, seedAdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	hash, err := password.GetHash(seedAdminPassword)
	if err != nil {
		return err
	}
	_, err = s.CreateUser(ctx, models.User{
		UUID:         uuid.New().String(),
		Username:     "Admin",
		Email:        seedAdminEmail,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	})
	return err
}
