package testhelpers

import (
	"context"
	"sync"

	"github.com/majidsaddiqye/reciperemix/internal/models"
	"github.com/majidsaddiqye/reciperemix/internal/service"
)

// ChatCall records one ChatReply invocation.
type ChatCall struct {
	UserMessage string
	History     []models.Message
	Preferences []string
}

// FakeLLM is a substitutable AI gateway for tests.
type FakeLLM struct {
	mu            sync.Mutex
	Recipe        *service.GeneratedRecipe
	Reply         string
	Err           error
	GenerateCalls int
	ChatCalls     []ChatCall
}

var _ service.ILLMService = (*FakeLLM)(nil)

func (f *FakeLLM) GenerateRecipe(ctx context.Context, ingredients []string, cuisine string, dietaryRestrictions []string) (*service.GeneratedRecipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GenerateCalls++
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Recipe != nil {
		return f.Recipe, nil
	}
	return &service.GeneratedRecipe{
		Title:        "Test Recipe",
		Ingredients:  ingredients,
		Instructions: []string{"Mix everything", "Cook it"},
		Nutrition:    models.Nutrition{Calories: 350, Protein: "15g", Carbs: "45g", Fat: "12g"},
	}, nil
}

func (f *FakeLLM) ChatReply(ctx context.Context, userMessage string, history []models.Message, dietaryPreferences []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ChatCalls = append(f.ChatCalls, ChatCall{
		UserMessage: userMessage,
		History:     history,
		Preferences: dietaryPreferences,
	})
	if f.Err != nil {
		return "", f.Err
	}
	if f.Reply != "" {
		return f.Reply, nil
	}
	return "Here is a tasty idea!", nil
}
