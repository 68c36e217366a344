package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vibearcade/arcade/core"
	"github.com/vibearcade/arcade/service"
)

const (
	msgInvalidSignature = "Invalid signature"
	msgIdentityFailed   = "Failed to create identity"
	msgAuthFailed       = "Failed to authenticate"
)

// Handlers contains the HTTP handlers of the service
type Handlers struct {
	bridge *service.WalletBridge
	auth   *service.AuthService
	arcade *service.ArcadeService
	logger *log.Logger
}

// NewHandlers creates new handlers. auth may be nil when sessions belong to
// a hosted backend.
func NewHandlers(bridge *service.WalletBridge, auth *service.AuthService, arcade *service.ArcadeService, logger *log.Logger) *Handlers {
	if logger == nil {
		logger = log.Default()
	}
	return &Handlers{bridge: bridge, auth: auth, arcade: arcade, logger: logger}
}

// WalletLoginRequest is the body of a wallet login
type WalletLoginRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
	Message       string `json:"message" binding:"required"`
	Signature     string `json:"signature" binding:"required"`
}

// WalletLogin verifies a signed wallet message and returns a session.
// Every failure is a 400 with a short message.
func (h *Handlers) WalletLogin(c *gin.Context) {
	var req WalletLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	res, err := h.bridge.Authenticate(c.Request.Context(), core.WalletLogin{
		WalletAddress: req.WalletAddress,
		Message:       req.Message,
		Signature:     req.Signature,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": walletErrorMessage(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": res.Session})
}

func walletErrorMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrAuthentication):
		return msgInvalidSignature
	case errors.Is(err, core.ErrIdentityCreation):
		return msgIdentityFailed
	default:
		return msgAuthFailed
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh handles token refresh
func (h *Handlers) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	session, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errorMsg := "Failed to refresh tokens"

		switch {
		case errors.Is(err, core.ErrInvalidToken):
			statusCode = http.StatusBadRequest
			errorMsg = "Invalid refresh token"
		case errors.Is(err, core.ErrTokenExpired):
			statusCode = http.StatusUnauthorized
			errorMsg = "Refresh token expired"
		case errors.Is(err, core.ErrTokenInvalidated):
			statusCode = http.StatusUnauthorized
			errorMsg = "Refresh token has been invalidated"
		default:
			h.logger.Printf("refresh failed: %v", err)
		}

		c.JSON(statusCode, gin.H{"error": errorMsg})
		return
	}

	c.JSON(http.StatusOK, session)
}

// Logout handles session logout
func (h *Handlers) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		switch {
		case errors.Is(err, core.ErrTokenExpired):
			// An expired refresh token cannot be used anyway
			c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
		case errors.Is(err, core.ErrInvalidToken):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid refresh token"})
		default:
			h.logger.Printf("logout failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to logout"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the authenticated user and profile
func (h *Handlers) Me(c *gin.Context) {
	userID := c.GetString(ctxUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, profile, err := h.auth.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.logger.Printf("load user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "profile": profile})
}

// ArcadeGames lists the approved arcade games
func (h *Handlers) ArcadeGames(c *gin.Context) {
	games, err := h.arcade.ListGames(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch arcade games"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": games, "count": len(games)})
}

// Health reports liveness
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
