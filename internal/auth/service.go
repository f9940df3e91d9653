package auth

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mauv0809/kart-scoreboard/internal/scoreboard"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Storage is the slice of the scoreboard store the auth service needs. This
// keeps the service independent of the full store implementation.
type Storage interface {
	GetAdminUser(username string) (scoreboard.AdminUser, error)
	CreateSession(id string, userID int64) error
	SessionUser(id string) (string, error)
	DeleteSession(id string) error
}

// Service implements the credential/session side of authentication.
type Service struct {
	storage Storage
	tokens  *TokenManager
}

// NewService creates an auth service over the given storage and token
// manager.
func NewService(storage Storage, tokens *TokenManager) *Service {
	return &Service{
		storage: storage,
		tokens:  tokens,
	}
}

// Login verifies the credentials, creates a session and returns an
// access/refresh token pair. Bad username and bad password are
// indistinguishable to the caller.
func (s *Service) Login(username, password string) (accessToken, refreshToken string, err error) {
	user, err := s.storage.GetAdminUser(username)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", ErrInvalidCredentials
	}

	sessionID := uuid.New().String()
	if err := s.storage.CreateSession(sessionID, user.ID); err != nil {
		return "", "", fmt.Errorf("failed to create session: %w", err)
	}

	accessToken, err = s.tokens.GenerateAccess(username, sessionID)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = s.tokens.GenerateRefresh(user.ID, sessionID)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// Refresh exchanges a valid refresh token whose session still exists for a
// new access token.
func (s *Service) Refresh(refreshToken string) (string, error) {
	claims, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return "", err
	}

	username, err := s.storage.SessionUser(claims.SessionID)
	if err != nil {
		// Session was revoked (or never existed).
		return "", ErrInvalidToken
	}

	return s.tokens.GenerateAccess(username, claims.SessionID)
}

// Logout revokes the session behind a refresh token.
func (s *Service) Logout(refreshToken string) error {
	claims, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return err
	}
	return s.storage.DeleteSession(claims.SessionID)
}

// HashPassword hashes a password for storage in the admin user table.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
