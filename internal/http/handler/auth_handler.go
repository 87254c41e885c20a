package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zahel-sys/sigc-auth/internal/auth"
	"github.com/zahel-sys/sigc-auth/internal/http/middleware"
	"github.com/zahel-sys/sigc-auth/internal/repository"
)

// AuthHandler exposes the authentication endpoints.
type AuthHandler struct {
	Auth     *auth.Service
	Attempts repository.LoginAttemptStore
	Logger   *zap.Logger
}

// NewAuthHandler creates the handler set.
func NewAuthHandler(service *auth.Service, attempts repository.LoginAttemptStore, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{Auth: service, Attempts: attempts, Logger: logger}
}

// Register creates a new account. Registration never returns a token;
// the user logs in afterwards.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Invalid payload."})
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Password) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Email and password are required."})
		return
	}

	result, err := h.Auth.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Login authenticates email/password and returns a token. Lockout is
// enforced here, before the use case runs: after too many consecutive
// failures for an email the endpoint answers 429 until the window
// expires.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Invalid payload."})
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Password) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Email and password are required."})
		return
	}

	ctx := c.Request.Context()
	attemptKey := strings.ToLower(strings.TrimSpace(req.Email))

	if h.Attempts != nil {
		locked, err := h.Attempts.Locked(ctx, attemptKey)
		if err != nil {
			h.log().Warn("attempt store unavailable", zap.Error(err))
		} else if locked {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "account_locked", "error_description": "Too many failed attempts. Try again later."})
			return
		}
	}

	result, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		if h.Attempts != nil && auth.IsKind(err, auth.KindInvalidCredentials) {
			if _, recordErr := h.Attempts.RecordFailure(ctx, attemptKey); recordErr != nil {
				h.log().Warn("record failed attempt", zap.Error(recordErr))
			}
		}
		h.respondAuthError(c, err)
		return
	}

	if h.Attempts != nil {
		if err := h.Attempts.Reset(ctx, attemptKey); err != nil {
			h.log().Warn("reset failed attempts", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, result)
}

// ChangePassword replaces the caller's password. The user id comes
// from the validated bearer token, never from the request body.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token", "error_description": "Authentication required."})
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Invalid payload."})
		return
	}

	result, err := h.Auth.ChangePassword(c.Request.Context(), identity.UserID, req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	if !result.Success {
		c.JSON(http.StatusBadRequest, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Me returns the identity asserted by the bearer token.
func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token", "error_description": "Authentication required."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": identity.UserID, "role": identity.Role})
}

func (h *AuthHandler) respondAuthError(c *gin.Context, err error) {
	if authErr, ok := err.(*auth.Error); ok {
		status := http.StatusBadRequest
		switch authErr.Kind {
		case auth.KindInvalidCredentials:
			status = http.StatusUnauthorized
		case auth.KindEmailTaken:
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": authErr.Kind, "error_description": authErr.Message})
		return
	}

	// Infrastructure faults stay generic: no internal detail leaves
	// the service.
	h.log().Error("auth request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "error_description": "Internal server error."})
}

func (h *AuthHandler) log() *zap.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return zap.L()
}
