package service

import (
	"context"
	"strings"
	"time"

	"github.com/deephumans/deephumans/internal/model"
	appErr "github.com/deephumans/deephumans/internal/pkg/errors"
	"github.com/deephumans/deephumans/internal/pkg/jwt"
	"github.com/deephumans/deephumans/internal/pkg/password"
	"github.com/deephumans/deephumans/internal/pkg/timeutil"
	"github.com/deephumans/deephumans/internal/repo"
)

const minPasswordLength = 6

type AuthService struct {
	users     *repo.UserRepo
	jwtSecret []byte
	jwtTTL    time.Duration
}

func NewAuthService(users *repo.UserRepo, secret []byte, ttl time.Duration) *AuthService {
	return &AuthService{users: users, jwtSecret: secret, jwtTTL: ttl}
}

func checkPasswordPolicy(plain string) error {
	if len(plain) < minPasswordLength {
		return appErr.ErrWeakPassword
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, email, plainPassword string) (*model.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, "", appErr.ErrInvalid
	}
	if err := checkPasswordPolicy(plainPassword); err != nil {
		return nil, "", err
	}
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, "", err
	}
	now := timeutil.NowUnix()
	user := &model.User{
		ID:            newID(),
		Email:         email,
		PasswordHash:  hash,
		SecurityStamp: newStamp(),
		Ctime:         now,
		Mtime:         now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}
	token, err := jwt.GenerateToken(user.ID, user.Email, user.SecurityStamp, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, plainPassword string) (*model.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", appErr.ErrUnauthorized
	}
	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		return nil, "", appErr.ErrUnauthorized
	}
	token, err := jwt.GenerateToken(user.ID, user.Email, user.SecurityStamp, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}
