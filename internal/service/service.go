package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/ananta12-d/lifeos/internal/auth"
	"github.com/ananta12-d/lifeos/internal/models"
	"github.com/ananta12-d/lifeos/internal/repo"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired")
)

// Service owns the account flows: registration, login, refresh-token
// rotation, logout and password changes.
type Service struct {
	Repo       *repo.Repo
	Auth       *auth.Manager
	TokenTTL   time.Duration
	RefreshTTL time.Duration
}

func New(r *repo.Repo, authManager *auth.Manager) *Service {
	return &Service{Repo: r, Auth: authManager, TokenTTL: 15 * time.Minute, RefreshTTL: 7 * 24 * time.Hour}
}

func (s *Service) Register(ctx context.Context, name, email, password string) (models.User, error) {
	hash, err := s.Auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	return s.Repo.CreateUser(ctx, name, email, hash)
}

// Login returns an access token plus an opaque refresh token stored as a
// session row.
func (s *Service) Login(ctx context.Context, email, password string) (string, string, error) {
	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}
	if err := s.Auth.ComparePassword(user.PasswordHash, password); err != nil {
		return "", "", ErrInvalidCredentials
	}
	return s.issueTokens(ctx, user.ID)
}

// Refresh rotates a refresh token: the old session is revoked and a new
// token pair issued.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	session, err := s.Repo.GetSession(ctx, refreshToken)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}
	if time.Now().After(session.ExpiresAt) {
		_ = s.Repo.RevokeSession(ctx, refreshToken)
		return "", "", ErrSessionExpired
	}
	if err := s.Repo.RevokeSession(ctx, refreshToken); err != nil {
		return "", "", err
	}
	return s.issueTokens(ctx, session.UserID)
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.Repo.RevokeSession(ctx, refreshToken)
}

func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.Auth.ComparePassword(user.PasswordHash, current); err != nil {
		return ErrInvalidCredentials
	}
	hash, err := s.Auth.HashPassword(next)
	if err != nil {
		return err
	}
	return s.Repo.UpdatePassword(ctx, userID, hash)
}

func (s *Service) issueTokens(ctx context.Context, userID string) (string, string, error) {
	accessToken, err := s.Auth.GenerateToken(userID, s.TokenTTL)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := generateRefreshToken()
	if err != nil {
		return "", "", err
	}
	if err := s.Repo.CreateSession(ctx, userID, refreshToken, time.Now().Add(s.RefreshTTL)); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func generateRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
