package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrWrongTokenKind = errors.New("wrong token kind")
)

// TokenKind tags a token as an access or refresh token. A claim's fields may
// only be trusted after checking the kind.
type TokenKind string

const (
	KindAccess  TokenKind = "Access"
	KindRefresh TokenKind = "Refresh"
)

// Claims is the JWT claim set for both token kinds. Subject holds the
// username for access tokens and the admin user id for refresh tokens.
type Claims struct {
	SessionID string    `json:"sid"`
	TokenType TokenKind `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256-signed access and refresh tokens.
type TokenManager struct {
	secretKey       []byte
	accessDuration  time.Duration
	refreshDuration time.Duration
}

// NewTokenManager creates a token manager. secretKey should be a strong
// random string. Access tokens are short-lived (minutes), refresh tokens
// long-lived (years).
func NewTokenManager(secretKey string, accessDuration, refreshDuration time.Duration) *TokenManager {
	return &TokenManager{
		secretKey:       []byte(secretKey),
		accessDuration:  accessDuration,
		refreshDuration: refreshDuration,
	}
}

// GenerateAccess creates an access token bound to the given session.
func (m *TokenManager) GenerateAccess(username, sessionID string) (string, error) {
	now := time.Now()
	return m.sign(&Claims{
		SessionID: sessionID,
		TokenType: KindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessDuration)),
			NotBefore: jwt.NewNumericDate(now),
		},
	})
}

// GenerateRefresh creates a refresh token bound to the given session. It is
// not valid for the first few minutes so a fresh access token cannot be
// refreshed away immediately.
func (m *TokenManager) GenerateRefresh(userID int64, sessionID string) (string, error) {
	now := time.Now()
	// Usable one minute before the paired access token expires.
	notBefore := now
	if m.accessDuration > time.Minute {
		notBefore = now.Add(m.accessDuration - time.Minute)
	}
	return m.sign(&Claims{
		SessionID: sessionID,
		TokenType: KindRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.refreshDuration)),
			NotBefore: jwt.NewNumericDate(notBefore),
		},
	})
}

func (m *TokenManager) sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateAccess parses a token and requires the access kind.
func (m *TokenManager) ValidateAccess(tokenString string) (*Claims, error) {
	return m.validate(tokenString, KindAccess)
}

// ValidateRefresh parses a token and requires the refresh kind.
func (m *TokenManager) ValidateRefresh(tokenString string) (*Claims, error) {
	return m.validate(tokenString, KindRefresh)
}

func (m *TokenManager) validate(tokenString string, kind TokenKind) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	// A well-signed token of the wrong kind is an authorization failure,
	// not an authentication one.
	if claims.TokenType != kind {
		return nil, ErrWrongTokenKind
	}
	return claims, nil
}
