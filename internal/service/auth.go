package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"backend/internal/mailer"
	"backend/internal/models"
	"backend/internal/password"
	"backend/internal/repository"
	"backend/internal/token"
	"backend/internal/tokenstore"
	"backend/internal/twofactor"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrInvalidRole       = errors.New("role must be one of: owner, accountant")
	// ErrInvalidCredentials covers both unknown usernames and wrong
	// passwords so the response cannot be used to probe for accounts.
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrTwoFactorRequired    = errors.New("two-factor token is required")
	ErrInvalidTwoFactorCode = errors.New("invalid 2FA token")
	// ErrInvalidResetLink covers undecodable uids and unknown users;
	// ErrInvalidResetToken covers bad or expired tokens. Both map to the
	// same status so the two cases stay indistinguishable to a caller.
	ErrInvalidResetLink  = errors.New("invalid reset link")
	ErrInvalidResetToken = errors.New("invalid or expired token")
	ErrWeakPassword      = errors.New("password must be at least 8 characters")
	ErrInvalidToken      = errors.New("invalid token")
)

// ResetTicket carries the uid/token pair issued by a reset request, for
// email delivery and optional debug exposure.
type ResetTicket struct {
	UID      string
	Token    string
	ResetURL string
}

type AuthService interface {
	Register(username, email, pass, role string) (*models.User, error)
	Login(ctx context.Context, username, pass, code string) (token.Pair, error)
	Profile(userID string) (models.Profile, error)
	GenerateTwoFactor(userID string) (otpURI, qrBase64 string, err error)
	RequestPasswordReset(email string) (*ResetTicket, error)
	ConfirmPasswordReset(uid, tok, newPassword string) error
	Refresh(ctx context.Context, refreshToken string) (token.Pair, bool, error)
}

type authService struct {
	repo          repository.UserRepository
	jwt           *token.JWTManager
	reset         *token.ResetGenerator
	totp          *twofactor.Manager
	denylist      *tokenstore.Denylist
	mail          mailer.Mailer
	resetURLBase  string
	rotateRefresh bool
	logger        *zap.Logger
}

func NewAuthService(
	repo repository.UserRepository,
	jwtManager *token.JWTManager,
	resetGen *token.ResetGenerator,
	totpManager *twofactor.Manager,
	denylist *tokenstore.Denylist,
	mail mailer.Mailer,
	resetURLBase string,
	rotateRefresh bool,
	logger *zap.Logger,
) AuthService {
	return &authService{
		repo:          repo,
		jwt:           jwtManager,
		reset:         resetGen,
		totp:          totpManager,
		denylist:      denylist,
		mail:          mail,
		resetURLBase:  resetURLBase,
		rotateRefresh: rotateRefresh,
		logger:        logger,
	}
}

func (s *authService) Register(username, email, pass, role string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		role = models.RoleOwner
	}
	if !models.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	passwordHash, err := password.Hash(pass)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}

	if err := s.repo.CreateUser(user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			return nil, ErrDuplicateUsername
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, ErrDuplicateEmail
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", zap.String("username", user.Username), zap.String("role", user.Role))
	return user, nil
}

func (s *authService) Login(ctx context.Context, username, pass, code string) (token.Pair, error) {
	user, err := s.repo.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Burn a verification so the miss costs as much as a mismatch.
			password.VerifyDummy(pass)
			return token.Pair{}, ErrInvalidCredentials
		}
		s.logger.Error("Failed to get user by username", zap.Error(err))
		return token.Pair{}, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if !password.Verify(user.PasswordHash, pass) {
		return token.Pair{}, ErrInvalidCredentials
	}

	if user.TwoFactorSecret.Valid && user.TwoFactorSecret.String != "" {
		code = strings.TrimSpace(code)
		if code == "" {
			return token.Pair{}, ErrTwoFactorRequired
		}
		if !s.totp.Verify(user.TwoFactorSecret.String, code) {
			return token.Pair{}, ErrInvalidTwoFactorCode
		}
	}

	pair, err := s.jwt.Issue(user)
	if err != nil {
		s.logger.Error("Failed to generate JWT tokens", zap.Error(err))
		return token.Pair{}, fmt.Errorf("failed to generate tokens: %w", err)
	}

	s.logger.Info("User logged in successfully.", zap.String("username", user.Username))
	return pair, nil
}

func (s *authService) Profile(userID string) (models.Profile, error) {
	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Profile{}, ErrInvalidToken
		}
		return models.Profile{}, err
	}
	return user.PublicProfile(), nil
}

// GenerateTwoFactor returns the provisioning URI and QR code for the user's
// TOTP secret, creating and persisting the secret on first call. Repeat
// calls return the same secret.
func (s *authService) GenerateTwoFactor(userID string) (string, string, error) {
	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", "", ErrInvalidToken
		}
		return "", "", err
	}

	secret := user.TwoFactorSecret.String
	if secret == "" {
		secret, err = s.totp.NewSecret()
		if err != nil {
			s.logger.Error("Failed to generate 2FA secret", zap.Error(err))
			return "", "", fmt.Errorf("failed to generate secret: %w", err)
		}
		if err := s.repo.UpdateTwoFactorSecret(user.ID, secret); err != nil {
			s.logger.Error("Failed to persist 2FA secret", zap.Error(err))
			return "", "", fmt.Errorf("failed to save secret: %w", err)
		}
	}

	account := user.Email
	if account == "" {
		account = user.Username
	}
	uri, err := s.totp.ProvisioningURI(secret, account)
	if err != nil {
		return "", "", fmt.Errorf("failed to build provisioning URI: %w", err)
	}

	qrBase64, err := twofactor.QRCodeBase64(uri)
	if err != nil {
		return "", "", fmt.Errorf("failed to render QR code: %w", err)
	}

	return uri, qrBase64, nil
}

// RequestPasswordReset issues a reset ticket for the account behind email,
// if one exists, and mails the reset link best-effort. A nil ticket with a
// nil error means no account matched; callers must not let the two cases
// produce different responses.
func (s *authService) RequestPasswordReset(email string) (*ResetTicket, error) {
	user, err := s.repo.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		s.logger.Error("Failed to get user by email", zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	ticket := &ResetTicket{
		UID:   token.EncodeUID(user.ID),
		Token: s.reset.MakeToken(user),
	}
	ticket.ResetURL = fmt.Sprintf("%s?uid=%s&token=%s", s.resetURLBase, ticket.UID, ticket.Token)

	// Delivery failures must never surface to the caller.
	if err := s.mail.SendPasswordReset(user.Email, ticket.ResetURL); err != nil {
		s.logger.Warn("Failed to send reset email", zap.String("email", user.Email), zap.Error(err))
	}

	return ticket, nil
}

func (s *authService) ConfirmPasswordReset(uid, tok, newPassword string) error {
	id, err := token.DecodeUID(uid)
	if err != nil {
		return ErrInvalidResetLink
	}
	// The uid may decode cleanly and still not be a user ID; it must never
	// reach the store's uuid column.
	if err := uuid.Validate(id); err != nil {
		return ErrInvalidResetLink
	}
	user, err := s.repo.GetUserByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetLink
		}
		s.logger.Error("Failed to get user by id", zap.Error(err))
		return fmt.Errorf("failed to retrieve user: %w", err)
	}

	if !s.reset.CheckToken(user, tok) {
		return ErrInvalidResetToken
	}

	if len(newPassword) < password.MinLength {
		return ErrWeakPassword
	}

	passwordHash, err := password.Hash(newPassword)
	if err != nil {
		s.logger.Error("Failed to hash new password", zap.Error(err))
		return fmt.Errorf("failed to hash password: %w", err)
	}
	// Persisting the new hash changes the state fingerprint and thereby
	// invalidates every outstanding ticket for this user.
	if err := s.repo.UpdatePasswordHash(user.ID, passwordHash); err != nil {
		s.logger.Error("Failed to update password", zap.Error(err))
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("Password reset completed", zap.String("username", user.Username))
	return nil
}

// Refresh validates a refresh token and issues fresh credentials. With
// rotation enabled the presented token's jti is denylisted and a full pair
// comes back; otherwise only a new access token is issued. The returned
// bool reports whether a rotation happened.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (token.Pair, bool, error) {
	claims, err := s.jwt.Parse(refreshToken, token.TypeRefresh)
	if err != nil {
		return token.Pair{}, false, ErrInvalidToken
	}

	denied, err := s.denylist.IsDenied(ctx, claims.ID)
	if err != nil {
		s.logger.Error("Denylist lookup failed", zap.Error(err))
		return token.Pair{}, false, fmt.Errorf("denylist lookup failed: %w", err)
	}
	if denied {
		return token.Pair{}, false, ErrInvalidToken
	}

	user, err := s.repo.GetUserByID(claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return token.Pair{}, false, ErrInvalidToken
		}
		return token.Pair{}, false, err
	}

	if !s.rotateRefresh {
		access, err := s.jwt.IssueAccess(user)
		if err != nil {
			return token.Pair{}, false, fmt.Errorf("failed to generate token: %w", err)
		}
		return token.Pair{Access: access}, false, nil
	}

	if err := s.denylist.Deny(ctx, claims.ID); err != nil {
		s.logger.Error("Failed to denylist rotated refresh token", zap.Error(err))
		return token.Pair{}, false, fmt.Errorf("failed to denylist token: %w", err)
	}
	pair, err := s.jwt.Issue(user)
	if err != nil {
		return token.Pair{}, false, fmt.Errorf("failed to generate tokens: %w", err)
	}
	return pair, true, nil
}
