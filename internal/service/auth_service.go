package service

import (
	"context"
	"errors"
	"fmt"
	"taskManager/internal/auth"
	"taskManager/internal/logger"
	"taskManager/internal/models"
	"taskManager/internal/repository"
	"time"

	"go.uber.org/zap"
)

type RegisterRequest struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type UserSummary struct {
	ID        int64       `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Role      models.Role `json:"role"`
}

type AuthResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      UserSummary `json:"user"`
}

type AuthService struct {
	uows   repository.UnitOfWorkFactory
	hasher PasswordHasher
	tokens TokenIssuer
	settings
}

func NewAuthService(uows repository.UnitOfWorkFactory, hasher PasswordHasher, tokens TokenIssuer, options ...Option) *AuthService {
	return &AuthService{
		uows:     uows,
		hasher:   hasher,
		tokens:   tokens,
		settings: newSettings(options),
	}
}

// Register создаёт пользователя. Имя и почта проверяются независимо;
// гонка двух регистраций ловится ограничением уникальности в базе.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	uow := s.uows.NewUnitOfWork()
	defer uow.Close()

	exists, err := uow.Users().UsernameExists(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("проверка имени пользователя: %w", err)
	}
	if exists {
		logger.Info("Service: Имя пользователя занято", zap.String("username", req.Username))
		return nil, NewConflict("username", req.Username, nil)
	}

	exists, err = uow.Users().EmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("проверка почты: %w", err)
	}
	if exists {
		logger.Info("Service: Почта занята", zap.String("email", req.Email))
		return nil, NewConflict("email", req.Email, nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, NewValidationError("password", "не длиннее 72 байт")
		}
		return nil, fmt.Errorf("хеширование пароля: %w", err)
	}

	user := &models.User{
		Model:        models.Model{CreatedAt: s.now()},
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         models.RoleUser,
	}
	if err := uow.Users().Create(ctx, user); err != nil {
		return nil, s.registerError(req, err)
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return nil, s.registerError(req, err)
	}

	logger.Info("Service: Пользователь зарегистрирован", zap.Int64("user_id", user.ID))
	return s.issue(user)
}

func (s *AuthService) registerError(req RegisterRequest, err error) error {
	if errors.Is(err, repository.ErrConflict) {
		logger.Warn("Service: Параллельная регистрация с тем же именем или почтой", zap.String("username", req.Username))
		return NewConflict("username_or_email", req.Username, err)
	}
	logger.Error("Service: Не удалось сохранить пользователя", err)
	return fmt.Errorf("сохранение пользователя: %w", err)
}

// Login не различает причины отказа, чтобы не раскрывать существование пользователя.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	uow := s.uows.NewUnitOfWork()
	defer uow.Close()

	user, err := uow.Users().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Info("Service: Неудачный вход")
			return nil, NewAuthenticationFailed()
		}
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	if user.IsDeleted || !s.hasher.Verify(password, user.PasswordHash) {
		logger.Info("Service: Неудачный вход")
		return nil, NewAuthenticationFailed()
	}

	return s.issue(user)
}

func (s *AuthService) Profile(ctx context.Context, userID int64) (*UserSummary, error) {
	uow := s.uows.NewUnitOfWork()
	defer uow.Close()

	user, err := uow.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewNotFound(ResourceUser, userID)
		}
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	summary := summarize(user)
	return &summary, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		logger.Error("Service: Не удалось выпустить токен", err, zap.Int64("user_id", user.ID))
		return nil, fmt.Errorf("выпуск токена: %w", err)
	}
	return &AuthResult{
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt,
		User:      summarize(user),
	}, nil
}

func summarize(user *models.User) UserSummary {
	return UserSummary{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
	}
}
