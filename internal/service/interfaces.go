package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/majidsaddiqye/reciperemix/internal/models"
)

// ILLMService defines the AI gateway operations.
type ILLMService interface {
	GenerateRecipe(ctx context.Context, ingredients []string, cuisine string, dietaryRestrictions []string) (*GeneratedRecipe, error)
	ChatReply(ctx context.Context, userMessage string, history []models.Message, dietaryPreferences []string) (string, error)
}

// IAuthService defines the credential store operations.
type IAuthService interface {
	Register(ctx context.Context, username, email, password string, dietaryPreferences []string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	GenerateToken(user *models.User) (string, error)
	ValidateToken(token string) (*TokenClaims, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateDietaryPreferences(ctx context.Context, userID uuid.UUID, prefs []string) (*models.User, error)
}

// IRecipeService defines recipe generation and saved-recipe operations.
type IRecipeService interface {
	Generate(ctx context.Context, userID uuid.UUID, ingredients []string, cuisine string) (*GenerationResult, error)
	Save(ctx context.Context, userID uuid.UUID, recipeID *uuid.UUID, data *SaveRecipeData) (uuid.UUID, error)
	ListSaved(ctx context.Context, userID uuid.UUID) ([]models.Recipe, error)
	Remove(ctx context.Context, userID, recipeID uuid.UUID) error
}

// IConversationService defines the per-user chat log operations.
type IConversationService interface {
	History(ctx context.Context, userID uuid.UUID) ([]models.Message, error)
	AppendAndSnapshot(ctx context.Context, userID uuid.UUID, role, content string) ([]models.Message, error)
	Append(ctx context.Context, userID uuid.UUID, role, content string) error
}
