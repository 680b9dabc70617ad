package token

import (
	"errors"
	"time"

	"backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	// ErrInvalidToken is returned when a token fails signature, expiry or
	// type checks. Deliberately generic.
	ErrInvalidToken = errors.New("invalid token")
)

// Pair is an access/refresh token pair issued on login.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// JWTConfig holds token-issuance parameters.
type JWTConfig struct {
	SecretKey       []byte
	AccessLifetime  time.Duration
	RefreshLifetime time.Duration
}

// JWTManager signs and parses the HS256 tokens used as stateless
// access/refresh credentials.
type JWTManager struct {
	config JWTConfig
	now    func() time.Time
}

func NewJWTManager(config JWTConfig) *JWTManager {
	return &JWTManager{config: config, now: time.Now}
}

// Issue returns a signed access/refresh pair bound to the user.
func (m *JWTManager) Issue(user *models.User) (Pair, error) {
	access, err := m.sign(user, TypeAccess, m.config.AccessLifetime)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := m.sign(user, TypeRefresh, m.config.RefreshLifetime)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

// IssueAccess returns a fresh access token only, for refresh without rotation.
func (m *JWTManager) IssueAccess(user *models.User) (string, error) {
	return m.sign(user, TypeAccess, m.config.AccessLifetime)
}

func (m *JWTManager) sign(user *models.User, tokenType string, lifetime time.Duration) (string, error) {
	now := m.now()
	claims := &models.Claims{
		Username:  user.Username,
		Role:      user.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.config.SecretKey)
}

// Parse validates the signature and expiry of raw and checks that it is of
// the wanted type. Any failure maps to ErrInvalidToken.
func (m *JWTManager) Parse(raw, wantType string) (*models.Claims, error) {
	claims := &models.Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.config.SecretKey, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != wantType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
