package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/majidsaddiqye/reciperemix/internal/models"
	apperrors "github.com/majidsaddiqye/reciperemix/pkg/errors"
)

// Generation sources.
const (
	SourceCache = "cache"
	SourceAI    = "ai"
)

const cacheKeyPrefix = "recipe:cache:"

// GenerationResult is a generated recipe plus where it came from.
type GenerationResult struct {
	Source string        `json:"source"`
	Recipe models.Recipe `json:"data"`
}

// SaveRecipeData is an inline recipe supplied by the save endpoint for
// chat-derived recipes that have no stored row yet.
type SaveRecipeData struct {
	Title        string           `json:"title"`
	Ingredients  []string         `json:"ingredients"`
	Instructions []string         `json:"instructions"`
	Nutrition    models.Nutrition `json:"nutrition"`
	Cuisine      string           `json:"cuisine"`
	Content      string           `json:"content"`
}

// RecipeService implements cache-or-AI generation and saved-recipe management.
type RecipeService struct {
	db     *gorm.DB
	redis  *redis.Client // optional; nil disables the fast path
	llm    ILLMService
	logger *zap.Logger
}

func NewRecipeService(db *gorm.DB, redisClient *redis.Client, llm ILLMService, logger *zap.Logger) *RecipeService {
	return &RecipeService{db: db, redis: redisClient, llm: llm, logger: logger}
}

// CacheKey derives the deterministic lookup key from an ingredient list:
// lower-cased, trimmed, sorted, joined by commas.
func CacheKey(ingredients []string) string {
	normalized := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		normalized = append(normalized, strings.ToLower(strings.TrimSpace(ing)))
	}
	sort.Strings(normalized)
	return strings.Join(normalized, ",")
}

// Generate returns a recipe for the ingredient list and cuisine, serving
// from the cache when an identical request was answered before and calling
// the AI gateway otherwise. Concurrent identical misses resolve through the
// unique (cache_key, cuisine) index: the losing insert returns the winner's
// row instead of creating a duplicate.
func (s *RecipeService) Generate(ctx context.Context, userID uuid.UUID, ingredients []string, cuisine string) (*GenerationResult, error) {
	if len(ingredients) == 0 {
		return nil, apperrors.Validation("ingredients are required")
	}

	key := CacheKey(ingredients)

	if recipe, ok := s.cacheGet(ctx, key, cuisine); ok {
		return &GenerationResult{Source: SourceCache, Recipe: *recipe}, nil
	}

	var cached models.Recipe
	err := s.db.WithContext(ctx).
		Where("cache_key = ? AND cuisine = ?", key, cuisine).
		First(&cached).Error
	if err == nil {
		s.cacheSet(ctx, &cached)
		return &GenerationResult{Source: SourceCache, Recipe: cached}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var prefs []string
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err == nil {
		prefs = user.DietaryPreferences
	}

	generated, err := s.llm.GenerateRecipe(ctx, ingredients, cuisine, prefs)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		Title:        generated.Title,
		Ingredients:  generated.Ingredients,
		Instructions: generated.Instructions,
		Nutrition:    generated.Nutrition,
		Cuisine:      cuisine,
		CacheKey:     key,
		CreatedBy:    userID,
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cache_key"}, {Name: "cuisine"}},
			DoNothing: true,
		}).
		Create(&recipe)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// Lost a race with an identical request; serve the winner's row.
		if err := s.db.WithContext(ctx).
			Where("cache_key = ? AND cuisine = ?", key, cuisine).
			First(&recipe).Error; err != nil {
			return nil, err
		}
	}

	s.cacheSet(ctx, &recipe)
	return &GenerationResult{Source: SourceAI, Recipe: recipe}, nil
}

// Save persists a recipe reference into the user's saved set. Either an
// existing recipe ID or inline recipe data (chat-derived) must be supplied.
// Attaching an already-saved recipe is a no-op.
func (s *RecipeService) Save(ctx context.Context, userID uuid.UUID, recipeID *uuid.UUID, data *SaveRecipeData) (uuid.UUID, error) {
	var recipe models.Recipe

	switch {
	case recipeID != nil:
		if err := s.db.WithContext(ctx).First(&recipe, "id = ?", *recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return uuid.Nil, apperrors.NotFound("recipe not found")
			}
			return uuid.Nil, err
		}
	case data != nil:
		title := data.Title
		if title == "" {
			title = "Saved Recipe"
		}
		recipe = models.Recipe{
			Title:        title,
			Ingredients:  data.Ingredients,
			Instructions: data.Instructions,
			Nutrition:    data.Nutrition,
			Cuisine:      data.Cuisine,
			Content:      data.Content,
			// Chat-derived recipes get a per-save key so they never collide
			// with the generated-cache namespace.
			CacheKey:  "chat-" + uuid.NewString(),
			CreatedBy: userID,
		}
		if err := s.db.WithContext(ctx).Create(&recipe).Error; err != nil {
			return uuid.Nil, err
		}
	default:
		return uuid.Nil, apperrors.Validation("recipe ID or recipe data is required")
	}

	user := models.User{ID: userID}
	if err := s.db.WithContext(ctx).Model(&user).
		Association("SavedRecipes").Append(&recipe); err != nil {
		return uuid.Nil, err
	}

	return recipe.ID, nil
}

// ListSaved returns the user's saved recipes.
func (s *RecipeService) ListSaved(ctx context.Context, userID uuid.UUID) ([]models.Recipe, error) {
	user := models.User{ID: userID}
	var recipes []models.Recipe
	if err := s.db.WithContext(ctx).Model(&user).
		Association("SavedRecipes").Find(&recipes); err != nil {
		return nil, err
	}
	if recipes == nil {
		recipes = []models.Recipe{}
	}
	return recipes, nil
}

// Remove detaches a recipe from the user's saved set. Removing a recipe
// that was never saved is a no-op.
func (s *RecipeService) Remove(ctx context.Context, userID, recipeID uuid.UUID) error {
	user := models.User{ID: userID}
	return s.db.WithContext(ctx).Model(&user).
		Association("SavedRecipes").Delete(&models.Recipe{ID: recipeID})
}

// cacheGet tries the redis fast path. Failures are logged and treated as a
// miss; the database row remains authoritative.
func (s *RecipeService) cacheGet(ctx context.Context, key, cuisine string) (*models.Recipe, bool) {
	if s.redis == nil {
		return nil, false
	}

	data, err := s.redis.Get(ctx, redisKey(key, cuisine)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("recipe cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var recipe models.Recipe
	if err := json.Unmarshal(data, &recipe); err != nil {
		s.logger.Warn("recipe cache entry corrupt", zap.Error(err))
		return nil, false
	}
	return &recipe, true
}

func (s *RecipeService) cacheSet(ctx context.Context, recipe *models.Recipe) {
	if s.redis == nil {
		return
	}

	data, err := json.Marshal(recipe)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, redisKey(recipe.CacheKey, recipe.Cuisine), data, 24*time.Hour).Err(); err != nil {
		s.logger.Warn("recipe cache write failed", zap.Error(err))
	}
}

func redisKey(cacheKey, cuisine string) string {
	return fmt.Sprintf("%s%s:%s", cacheKeyPrefix, cuisine, cacheKey)
}
