package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/suPer8Hu/diy-assistant/internal/auth"
	"github.com/suPer8Hu/diy-assistant/internal/common"
	"github.com/suPer8Hu/diy-assistant/internal/models"
	"gorm.io/gorm"
)

const (
	MaxUsernameLen = 64
	// bcrypt only accepts passwords up to 72 bytes.
	MaxPasswordBytes = 72
)

var (
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrAuthFailure covers both an unknown username and a wrong password.
	ErrAuthFailure = errors.New("invalid username or password")
	ErrNotFound    = errors.New("user not found")
)

type Service struct {
	repo *Repo
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

func (s *Service) Register(ctx context.Context, username, password string) (uint64, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return 0, fmt.Errorf("username and password required: %w", common.ErrValidation)
	}
	if utf8.RuneCountInString(username) > MaxUsernameLen {
		return 0, fmt.Errorf("username longer than %d characters: %w", MaxUsernameLen, common.ErrValidation)
	}
	if len(password) > MaxPasswordBytes {
		return 0, fmt.Errorf("password longer than %d bytes: %w", MaxPasswordBytes, common.ErrValidation)
	}

	taken, err := s.repo.UsernameTaken(ctx, username)
	if err != nil {
		return 0, err
	}
	if taken {
		return 0, ErrDuplicateUsername
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{Username: username, PasswordHash: hash}
	if err := s.repo.Create(ctx, u); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, ErrDuplicateUsername
		}
		return 0, err
	}
	return u.ID, nil
}

func (s *Service) Authenticate(ctx context.Context, username, password string) (uint64, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return 0, ErrAuthFailure
	}
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrAuthFailure
		}
		return 0, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return 0, ErrAuthFailure
	}
	return u.ID, nil
}

func (s *Service) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}
