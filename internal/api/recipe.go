package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/majidsaddiqye/reciperemix/internal/middleware"
	"github.com/majidsaddiqye/reciperemix/internal/service"
	apperrors "github.com/majidsaddiqye/reciperemix/pkg/errors"
)

// RecipeHandler serves the /api/recipes endpoints.
type RecipeHandler struct {
	recipes service.IRecipeService
	auth    service.IAuthService
	logger  *zap.Logger
}

func NewRecipeHandler(recipes service.IRecipeService, auth service.IAuthService, logger *zap.Logger) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, auth: auth, logger: logger}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes", middleware.Auth(h.auth))
	{
		recipes.POST("/generate", h.Generate)
		recipes.POST("/save", h.Save)
		recipes.GET("/my-recipes", h.MyRecipes)
		recipes.DELETE("/remove/:recipeId", h.Remove)
	}
}

type generateRequest struct {
	Ingredients []string `json:"ingredients"`
	Cuisine     string   `json:"cuisine"`
}

func (h *RecipeHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	userID := c.MustGet("user_id").(uuid.UUID)
	result, err := h.recipes.Generate(c.Request.Context(), userID, req.Ingredients, req.Cuisine)
	if err != nil {
		h.logger.Warn("recipe generation failed", zap.Error(err))
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if result.Source == service.SourceAI {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"source": result.Source, "data": result.Recipe})
}

type saveRequest struct {
	RecipeID   string                  `json:"recipeId"`
	RecipeData *service.SaveRecipeData `json:"recipeData"`
}

func (h *RecipeHandler) Save(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	var recipeID *uuid.UUID
	if req.RecipeID != "" {
		id, err := uuid.Parse(req.RecipeID)
		if err != nil {
			respondError(c, apperrors.Validation("invalid recipe id"))
			return
		}
		recipeID = &id
	}

	userID := c.MustGet("user_id").(uuid.UUID)
	savedID, err := h.recipes.Save(c.Request.Context(), userID, recipeID, req.RecipeData)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Recipe saved successfully",
		"recipeId": savedID,
	})
}

func (h *RecipeHandler) MyRecipes(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)
	recipes, err := h.recipes.ListSaved(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": recipes})
}

func (h *RecipeHandler) Remove(c *gin.Context) {
	recipeID, err := uuid.Parse(c.Param("recipeId"))
	if err != nil {
		respondError(c, apperrors.Validation("invalid recipe id"))
		return
	}

	userID := c.MustGet("user_id").(uuid.UUID)
	if err := h.recipes.Remove(c.Request.Context(), userID, recipeID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Recipe removed successfully"})
}
