package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/majidsaddiqye/reciperemix/internal/models"
	apperrors "github.com/majidsaddiqye/reciperemix/pkg/errors"
)

// historyWindow is the maximum number of prior chat turns sent to the
// provider as context; older turns are dropped.
const historyWindow = 10

// GeneratedRecipe is the structure the provider must return in structured mode.
type GeneratedRecipe struct {
	Title        string           `json:"title"`
	Ingredients  []string         `json:"ingredients"`
	Instructions []string         `json:"instructions"`
	Nutrition    models.Nutrition `json:"nutrition"`
}

// LLMService calls an OpenAI-compatible chat-completions endpoint.
type LLMService struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
	logger *zap.Logger
}

// NewLLMService creates an LLMService. All dependencies are explicit; there
// is no ambient configuration.
func NewLLMService(apiKey, apiURL, model string, logger *zap.Logger) *LLMService {
	return &LLMService{
		apiKey: apiKey,
		apiURL: apiURL,
		model:  model,
		client: &http.Client{Timeout: 60 * time.Second},
		logger: logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateRecipe asks the provider for a recipe in a fixed JSON shape and
// validates the result before returning it. A malformed or incomplete
// payload fails closed with a provider error; there are no retries.
func (s *LLMService) GenerateRecipe(ctx context.Context, ingredients []string, cuisine string, dietaryRestrictions []string) (*GeneratedRecipe, error) {
	prompt := fmt.Sprintf(
		`Create a recipe with: %s. Cuisine: %s. Dietary Restrictions: %s.
JSON Structure: { "title": "", "ingredients": [], "instructions": [], "nutrition": { "calories": 0, "protein": "", "carbs": "", "fat": "" } }`,
		strings.Join(ingredients, ", "), cuisine, strings.Join(dietaryRestrictions, ", "),
	)

	content, err := s.complete(ctx, chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a professional chef. Always respond in valid JSON format."},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return nil, err
	}

	var recipe GeneratedRecipe
	if err := json.Unmarshal([]byte(content), &recipe); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeProvider, "provider returned malformed recipe JSON", err)
	}
	if recipe.Title == "" || len(recipe.Ingredients) == 0 || len(recipe.Instructions) == 0 {
		return nil, apperrors.New(apperrors.CodeProvider, "provider returned an incomplete recipe")
	}

	return &recipe, nil
}

// ChatReply requests a free-form completion scoped to culinary topics. At
// most the last historyWindow entries of history are sent, oldest dropped.
func (s *LLMService) ChatReply(ctx context.Context, userMessage string, history []models.Message, dietaryPreferences []string) (string, error) {
	messages := make([]chatMessage, 0, historyWindow+2)
	messages = append(messages, chatMessage{Role: "system", Content: chatSystemPrompt(dietaryPreferences)})

	start := 0
	if len(history) > historyWindow {
		start = len(history) - historyWindow
	}
	for _, m := range history[start:] {
		role := models.RoleUser
		if m.Role == models.RoleAssistant {
			role = models.RoleAssistant
		}
		messages = append(messages, chatMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, chatMessage{Role: models.RoleUser, Content: userMessage})

	return s.complete(ctx, chatRequest{Model: s.model, Messages: messages})
}

func chatSystemPrompt(dietaryPreferences []string) string {
	var b strings.Builder
	b.WriteString(`You are a specialized AI Assistant for "RecipeRemix AI", a culinary platform. Your name is "RecipeRemix AI".

STRICT RULES:
1. Refuse to answer ANY questions that are not related to food, cooking, recipes, ingredients, culinary techniques, or kitchen safety.
2. If a user asks about non-food topics, politely decline and steer them back to cooking: "I only talk about food and recipes.".
3. When suggesting recipes, you MUST strictly adhere to the user's dietary preferences (if any).
4. You can generate full recipes, suggest ingredients based on what the user has, or explain cooking techniques.
5. Keep responses concise, friendly, and appetizing.`)

	if len(dietaryPreferences) > 0 {
		b.WriteString("\n\nUSER DIETARY PREFERENCES (MUST FOLLOW): ")
		b.WriteString(strings.Join(dietaryPreferences, ", "))
		b.WriteString(".\nDo NOT suggest any recipes containing ingredients identifiable as these restricted items.")
	}

	return b.String()
}

// complete performs one chat-completions call and returns the first choice.
func (s *LLMService) complete(ctx context.Context, reqBody chatRequest) (string, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeProvider, "provider request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeProvider, "failed to read provider response", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", apperrors.New(apperrors.CodeProviderQuota, "AI provider quota exceeded")
	}
	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("provider returned error status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return "", apperrors.Newf(apperrors.CodeProvider, "provider request failed with status %d: %s", resp.StatusCode, providerMessage(body))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", apperrors.Wrap(apperrors.CodeProvider, "failed to decode provider response", err)
	}
	if parsed.Error != nil {
		return "", apperrors.New(apperrors.CodeProvider, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", apperrors.New(apperrors.CodeProvider, "no response from provider")
	}

	return parsed.Choices[0].Message.Content, nil
}

// providerMessage extracts the provider's error message from a failed
// response, falling back to the raw body.
func providerMessage(body []byte) string {
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil {
		return parsed.Error.Message
	}
	return strings.TrimSpace(string(body))
}
