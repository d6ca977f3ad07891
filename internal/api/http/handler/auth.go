package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skycast/skycast-server/internal/logger"
	"github.com/skycast/skycast-server/internal/model"
)

// AuthService defines registration, login and token lifecycle operations.
type AuthService interface {
	Register(ctx context.Context, email, username, password string) (model.TokenPair, error)
	Login(ctx context.Context, email, password string) (model.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
}

// Auth handles HTTP endpoints for authentication.
type Auth struct {
	authService    AuthService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, contextManager model.ContextManager, logger *logger.Logger) *Auth {
	return &Auth{
		authService:    authService,
		contextManager: contextManager,
		logger:         logger,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

func errorBody(message string) gin.H {
	return gin.H{"error": message}
}

// Register creates a new user and returns the first token pair.
func (h *Auth) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	h.logger.Debug("Auth handler: processing register request",
		"email", req.Email)

	pair, err := h.authService.Register(c.Request.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		h.logger.Info("Auth handler: register failed",
			"email", req.Email,
			"error", err.Error())
		status, message := handleError(err)
		c.JSON(status, errorBody(message))
		return
	}

	h.logger.Info("Auth handler: register completed",
		"email", req.Email)

	c.JSON(http.StatusOK, tokenResponse(pair))
}

// Login verifies credentials and returns a token pair.
func (h *Auth) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	h.logger.Debug("Auth handler: processing login request",
		"email", req.Email)

	pair, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Info("Auth handler: login failed",
			"email", req.Email,
			"error", err.Error())
		status, message := handleError(err)
		c.JSON(status, errorBody(message))
		return
	}

	h.logger.Info("Auth handler: login completed",
		"email", req.Email)

	c.JSON(http.StatusOK, tokenResponse(pair))
}

// Refresh rotates a refresh token and returns a new token pair.
func (h *Auth) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	h.logger.Debug("Auth handler: processing refresh request")

	pair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.logger.Info("Auth handler: refresh failed",
			"error", err.Error())
		status, message := handleError(err)
		c.JSON(status, errorBody(message))
		return
	}

	h.logger.Info("Auth handler: refresh completed")

	c.JSON(http.StatusOK, tokenResponse(pair))
}

// Logout revokes the presented refresh token.
func (h *Auth) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	if err := h.authService.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		h.logger.Info("Auth handler: logout failed",
			"error", err.Error())
		status, message := handleError(err)
		c.JSON(status, errorBody(message))
		return
	}

	h.logger.Info("Auth handler: logout completed")

	c.Status(http.StatusNoContent)
}

// LogoutAll revokes every refresh token of the authenticated user.
func (h *Auth) LogoutAll(c *gin.Context) {
	userID, ok := h.contextManager.GetUserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, errorBody("missing authorization token"))
		return
	}

	if err := h.authService.RevokeAllForUser(c.Request.Context(), userID); err != nil {
		h.logger.Error("Auth handler: logout-all failed",
			"user_id", userID,
			"error", err.Error())
		status, message := handleError(err)
		c.JSON(status, errorBody(message))
		return
	}

	h.logger.Info("Auth handler: logout-all completed",
		"user_id", userID)

	c.Status(http.StatusNoContent)
}
