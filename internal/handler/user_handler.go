package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"marketplace_auth/internal/middleware"
	"marketplace_auth/internal/model"
	"marketplace_auth/internal/repository"

	"github.com/gin-gonic/gin"
)

// UserHandler serves identity lookups for authenticated callers.
type UserHandler struct {
	repo repository.UserRepository
	log  *slog.Logger
}

func NewUserHandler(repo repository.UserRepository, log *slog.Logger) *UserHandler {
	return &UserHandler{repo: repo, log: log}
}

// Me echoes the claims of the caller's token.
func (h *UserHandler) Me(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"userId": claims.UserID,
		"phone":  claims.Phone,
		"role":   claims.Role,
		"exp":    claims.ExpiresAt.Unix(),
	})
}

// GetUser returns the sanitized projection of any user. Admin only.
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.repo.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.log.Error("failed to load user", "user_id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": model.NewUserView(user)})
}

// RegisterUserRoutes registers the authenticated routes
func (h *UserHandler) RegisterUserRoutes(rg *gin.RouterGroup, jwtAuthMW, adminRoleMW gin.HandlerFunc) {
	rg.GET("/me", jwtAuthMW, h.Me)
	rg.GET("/users/:id", jwtAuthMW, adminRoleMW, h.GetUser)
}
