package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/stamprally/backend/internal/auth"
	"github.com/stamprally/backend/internal/models"
	repo "github.com/stamprally/backend/internal/repository"
)

type AccountService struct {
	accounts repo.Accounts
	tm       *auth.TokenManager
}

func NewAccountService(accounts repo.Accounts, tm *auth.TokenManager) *AccountService {
	return &AccountService{accounts: accounts, tm: tm}
}

type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    time.Duration `json:"expires_in"`
}

func (s *AccountService) Register(ctx context.Context, username, displayName, password string) (models.Account, error) {
	a := models.Account{
		Username:    strings.TrimSpace(username),
		DisplayName: strings.TrimSpace(displayName),
		Role:        "user",
	}
	if err := a.Validate(); err != nil {
		return models.Account{}, err
	}
	if len(password) < 4 {
		return models.Account{}, errors.New("password too short")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.Account{}, err
	}
	a.PasswordHash = hash
	created, err := s.accounts.Create(ctx, a)
	if errors.Is(err, repo.ErrDuplicate) {
		return models.Account{}, ErrUsernameTaken
	}
	return created, err
}

func (s *AccountService) Login(ctx context.Context, username, password string) (TokenPair, models.Account, error) {
	a, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return TokenPair{}, models.Account{}, ErrInvalidCredentials
		}
		return TokenPair{}, models.Account{}, err
	}
	if auth.VerifyPassword(password, a.PasswordHash) != nil {
		return TokenPair{}, models.Account{}, ErrInvalidCredentials
	}
	pair, err := s.issuePair(a.ID, a.Role)
	return pair, a, err
}

func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.tm.ParseRefresh(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	return s.issuePair(claims.UserID, claims.Role)
}

func (s *AccountService) issuePair(userID, role string) (TokenPair, error) {
	access, refresh, exp, err := s.tm.GeneratePair(userID, role)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    time.Until(exp).Truncate(time.Second),
	}, nil
}

func (s *AccountService) Get(ctx context.Context, id string) (models.Account, error) {
	return s.accounts.GetByID(ctx, id)
}

func (s *AccountService) ChangePassword(ctx context.Context, id, current, next string) error {
	if len(next) < 4 {
		return errors.New("new password too short")
	}
	a, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if auth.VerifyPassword(current, a.PasswordHash) != nil {
		return ErrInvalidCredentials
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	return s.accounts.UpdatePassword(ctx, id, hash)
}

// EnsureAdmin seeds a default admin account on first boot when none
// exists yet.
func (s *AccountService) EnsureAdmin(ctx context.Context, username, password string) error {
	exists, err := s.accounts.HasAdmin(ctx)
	if err != nil || exists {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = s.accounts.Create(ctx, models.Account{
		Username:     username,
		PasswordHash: hash,
		DisplayName:  "Administrator",
		Role:         "admin",
	})
	if errors.Is(err, repo.ErrDuplicate) {
		return nil
	}
	return err
}
