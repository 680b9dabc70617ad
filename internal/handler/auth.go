package handler

import (
	"errors"
	"net/http"
	"strings"

	"backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Profile(c *gin.Context)
	GenerateTwoFactor(c *gin.Context)
	PasswordResetRequest(c *gin.Context)
	PasswordResetConfirm(c *gin.Context)
	RefreshToken(c *gin.Context)
}

type authHandler struct {
	authService       service.AuthService
	exposeResetTokens bool
	log               *zap.Logger
}

// NewAuthHandler builds the HTTP boundary over the auth service.
// exposeResetTokens widens the reset-request response with the raw
// uid/token for local testing; it must be off in production.
func NewAuthHandler(authService service.AuthService, exposeResetTokens bool, log *zap.Logger) AuthHandler {
	return &authHandler{
		authService:       authService,
		exposeResetTokens: exposeResetTokens,
		log:               log,
	}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Token    string `json:"token"`
}

type ResetRequestRequest struct {
	Email string `json:"email"`
}

type ResetConfirmRequest struct {
	UID         string `json:"uid"`
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

func (h *authHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username, email, and password are required."})
		return
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username, email, and password are required."})
		return
	}

	user, err := h.authService.Register(req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRole),
			errors.Is(err, service.ErrDuplicateUsername),
			errors.Is(err, service.ErrDuplicateEmail):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.log.Error("Failed to register user", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		}
		return
	}

	c.JSON(http.StatusCreated, user.PublicProfile())
}

func (h *authHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required."})
		return
	}
	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required."})
		return
	}

	pair, err := h.authService.Login(c.Request.Context(), req.Username, req.Password, req.Token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials),
			errors.Is(err, service.ErrTwoFactorRequired),
			errors.Is(err, service.ErrInvalidTwoFactorCode):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		default:
			h.log.Error("Failed to login user", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to login"})
		}
		return
	}

	c.JSON(http.StatusOK, pair)
}

func (h *authHandler) Profile(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	profile, err := h.authService.Profile(userID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		h.log.Error("Failed to load profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *authHandler) GenerateTwoFactor(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	otpURI, qrBase64, err := h.authService.GenerateTwoFactor(userID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		h.log.Error("Failed to generate 2FA secret", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate 2FA secret"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"otp_uri":        otpURI,
		"qr_code_base64": qrBase64,
	})
}

func (h *authHandler) PasswordResetRequest(c *gin.Context) {
	var req ResetRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required."})
		return
	}

	ticket, err := h.authService.RequestPasswordReset(strings.TrimSpace(req.Email))
	if err != nil {
		h.log.Error("Failed to process reset request", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process request"})
		return
	}

	// Identical payload whether or not the email is registered.
	payload := gin.H{
		"status":  "ok",
		"message": "If an account exists for that email, a reset link will be sent.",
	}
	if ticket != nil && h.exposeResetTokens {
		payload["uid"] = ticket.UID
		payload["token"] = ticket.Token
		payload["reset_url"] = ticket.ResetURL
	}

	c.JSON(http.StatusOK, payload)
}

func (h *authHandler) PasswordResetConfirm(c *gin.Context) {
	var req ResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "uid, token, and new_password are required."})
		return
	}
	req.UID = strings.TrimSpace(req.UID)
	req.Token = strings.TrimSpace(req.Token)
	if req.UID == "" || req.Token == "" || req.NewPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "uid, token, and new_password are required."})
		return
	}

	err := h.authService.ConfirmPasswordReset(req.UID, req.Token, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidResetLink),
			errors.Is(err, service.ErrInvalidResetToken),
			errors.Is(err, service.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.log.Error("Failed to confirm password reset", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *authHandler) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Refresh == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token is required."})
		return
	}

	pair, rotated, err := h.authService.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		h.log.Error("Failed to refresh token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh token"})
		return
	}

	resp := gin.H{"access": pair.Access}
	if rotated {
		resp["refresh"] = pair.Refresh
	}
	c.JSON(http.StatusOK, resp)
}
