package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/majidsaddiqye/reciperemix/internal/middleware"
	"github.com/majidsaddiqye/reciperemix/internal/service"
	apperrors "github.com/majidsaddiqye/reciperemix/pkg/errors"
)

// cookieMaxAge matches the 7-day token lifetime.
const cookieMaxAge = 7 * 24 * 60 * 60

// AuthHandler serves the /api/auth endpoints.
type AuthHandler struct {
	auth   service.IAuthService
	logger *zap.Logger
}

func NewAuthHandler(auth service.IAuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.PUT("/dietary-preferences", middleware.Auth(h.auth), h.UpdateDietaryPreferences)
	}
}

type registerRequest struct {
	Username           string   `json:"username" binding:"required"`
	Email              string   `json:"email" binding:"required,email"`
	Password           string   `json:"password" binding:"required,min=8"`
	DietaryPreferences []string `json:"dietaryPreferences"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password, req.DietaryPreferences)
	if err != nil {
		h.logger.Warn("registration failed", zap.String("email", req.Email), zap.Error(err))
		respondError(c, err)
		return
	}

	token, err := h.auth.GenerateToken(user)
	if err != nil {
		respondError(c, err)
		return
	}
	h.setSessionCookie(c, token)

	c.JSON(http.StatusCreated, gin.H{
		"message": "User Registered Successfully",
		"status":  "success",
		"data":    gin.H{"user": user},
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide email and password"})
		return
	}

	user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.auth.GenerateToken(user)
	if err != nil {
		respondError(c, err)
		return
	}
	h.setSessionCookie(c, token)

	c.JSON(http.StatusOK, gin.H{
		"message": "User Login Successfully",
		"status":  "success",
		"data":    gin.H{"user": user},
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(middleware.SessionCookie); err != nil || token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "Failed", "message": "Logged in first"})
		return
	}

	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Logged out successfully"})
}

func (h *AuthHandler) UpdateDietaryPreferences(c *gin.Context) {
	// The preference list must be a JSON array; anything else is a
	// validation failure that leaves stored preferences untouched.
	var req struct {
		DietaryPreferences json.RawMessage `json:"dietaryPreferences"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	var prefs []string
	if err := json.Unmarshal(req.DietaryPreferences, &prefs); err != nil || prefs == nil {
		respondError(c, apperrors.Validation("dietary preferences must be an array"))
		return
	}

	userID := c.MustGet("user_id").(uuid.UUID)
	user, err := h.auth.UpdateDietaryPreferences(c.Request.Context(), userID, prefs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Dietary preferences updated successfully",
		"data":    gin.H{"user": user},
	})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetCookie(middleware.SessionCookie, token, cookieMaxAge, "/", "", false, true)
}
