package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/Allengabo/Yankicks-web/internal/domain"
	"github.com/Allengabo/Yankicks-web/internal/repository"
	"github.com/Allengabo/Yankicks-web/pkg/logger"
	"go.uber.org/zap"
)

const (
	MsgEmailExists        = "Email already exists"
	MsgInvalidCredentials = "invalid email or password"
)

type AuthService struct {
	users repository.UserRepository
}

func NewAuthService(users repository.UserRepository) *AuthService {
	return &AuthService{users: users}
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (int64, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)

	id, err := s.users.CreateUser(ctx, &domain.User{Name: name, Email: email, Password: password})
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return 0, domain.NewConflict(MsgEmailExists)
	}
	if err != nil {
		return 0, domain.NewConnectivity("could not register user", err)
	}

	logger.FromContext(ctx).Info("user registered", zap.Int64("user_id", id))
	return id, nil
}

// Login checks the credential. Unknown email and wrong password look the same
// to the caller; only the log tells them apart.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.SessionUser, error) {
	log := logger.FromContext(ctx)

	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repository.ErrUserNotFound) {
		log.Info("login rejected", zap.String("reason", "user_not_found"))
		return nil, domain.NewUnauthorized(MsgInvalidCredentials)
	}
	if err != nil {
		return nil, domain.NewConnectivity("could not load user", err)
	}

	if subtle.ConstantTimeCompare([]byte(user.Password), []byte(password)) != 1 {
		log.Info("login rejected", zap.String("reason", "wrong_password"), zap.Int64("user_id", user.ID))
		return nil, domain.NewUnauthorized(MsgInvalidCredentials)
	}

	return user.SessionUser(), nil
}
