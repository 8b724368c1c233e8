package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"marketplace_auth/internal/model"
	"marketplace_auth/internal/service"

	"github.com/gin-gonic/gin"
)

const msgInternal = "Internal Server Error"

// AuthHandler handles authentication requests
type AuthHandler struct {
	service service.AuthService
	log     *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService, log *slog.Logger) *AuthHandler {
	return &AuthHandler{service: s, log: log}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.service.Signup(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, "signup", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": model.NewUserView(user)})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, "login", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  model.NewLoginView(user),
		"token": token,
	})
}

// respondError maps service errors onto status codes. Nothing but the fixed
// messages below and validation messages reaches the client.
func (h *AuthHandler) respondError(c *gin.Context, op string, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
	case errors.Is(err, service.ErrPhoneTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "Phone number already in use"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid phone number or password"})
	case errors.Is(err, service.ErrSigningSecretMissing):
		h.log.Error("JWT_SECRET is not set; refusing to issue tokens", "op", op)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
	default:
		h.log.Error("request failed", "op", op, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
	}
}

// RegisterAuthRoutes registers auth routes
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup) {
	rg.POST("/signup", h.Signup)
	rg.POST("/login", h.Login)
}
