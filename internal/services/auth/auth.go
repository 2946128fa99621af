// Package auth содержит логику бизнес-уровня для работы с пользователями
// и аутентификацией.
package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/ai-pro-platform/internal/clock"
	"github.com/magabrotheeeer/ai-pro-platform/internal/lib/jwt"
	"github.com/magabrotheeeer/ai-pro-platform/internal/lib/password"
	"github.com/magabrotheeeer/ai-pro-platform/internal/lib/sl"
	"github.com/magabrotheeeer/ai-pro-platform/internal/models"
	"github.com/magabrotheeeer/ai-pro-platform/internal/storage"
)

// Идентификатор бесплатного плана, выдаваемого при регистрации.
const freePlanID = "free"

// Ошибки сервиса аутентификации.
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его UID.
	CreateUser(ctx context.Context, user models.User) (string, error)
	// GetUserByEmail возвращает пользователя по почте или storage.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// ListUsers возвращает всех пользователей.
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// PlanCatalog отдаёт план по идентификатору; отсутствие — nil, nil.
type PlanCatalog interface {
	Lookup(ctx context.Context, planID string) (*models.Plan, error)
}

// SubscriptionLedger активирует подписки.
type SubscriptionLedger interface {
	Activate(ctx context.Context, sub models.Subscription) error
}

// Service отвечает за регистрацию, авторизацию и валидацию JWT.
type Service struct {
	users    UserRepository
	plans    PlanCatalog
	ledger   SubscriptionLedger
	jwtMaker jwt.Maker
	clk      clock.Clock
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(users UserRepository, plans PlanCatalog, ledger SubscriptionLedger,
	jwtMaker jwt.Maker, clk clock.Clock, log *slog.Logger) *Service {
	return &Service{
		users:    users,
		plans:    plans,
		ledger:   ledger,
		jwtMaker: jwtMaker,
		clk:      clk,
		log:      log,
	}
}

// Register создает нового пользователя с хэшированием пароля и ролью "user"
// и сразу активирует ему подписку на бесплатный план: новый пользователь
// получает доступ к ИИ без оплаты, в пределах лимита бесплатного плана.
func (s *Service) Register(ctx context.Context, username, email, rawPassword string) (string, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", err
	}
	user := models.User{
		UUID:         uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		Role:         models.RoleUser,
		CreatedAt:    s.clk.Now(),
	}
	uid, err := s.users.CreateUser(ctx, user)
	if errors.Is(err, storage.ErrEmailTaken) {
		return "", ErrEmailTaken
	}
	if err != nil {
		return "", err
	}
	s.log.Info("user registered", slog.String("user_uid", uid))

	if err := s.grantFreePlan(ctx, uid); err != nil {
		// Пользователь создан; без бесплатной подписки он получит
		// отказ no_subscription до первой оплаты.
		s.log.Warn("failed to grant free plan", slog.String("user_uid", uid), sl.Err(err))
	}
	return uid, nil
}

// Login проверяет пароль пользователя и генерирует JWT.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (token, role string, err error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return "", "", ErrInvalidCredentials
	}
	if err != nil {
		return "", "", err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", "", ErrInvalidCredentials
	}
	token, err = s.jwtMaker.GenerateToken(user.Username, user.Role, user.UUID)
	if err != nil {
		return "", "", err
	}
	return token, user.Role, nil
}

// ListUsers возвращает всех пользователей для административного обзора.
func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.users.ListUsers(ctx)
}

func (s *Service) grantFreePlan(ctx context.Context, userUID string) error {
	plan, err := s.plans.Lookup(ctx, freePlanID)
	if err != nil {
		return err
	}
	if plan == nil {
		return errors.New("free plan is not in the catalog")
	}

	now := s.clk.Now()
	return s.ledger.Activate(ctx, models.Subscription{
		ID:        uuid.New().String(),
		UserUID:   userUID,
		PlanID:    plan.ID,
		StartDate: now,
		ExpiresAt: now.AddDate(0, 0, plan.DurationDays),
		Status:    models.SubscriptionActive,
	})
}
