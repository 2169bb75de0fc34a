package api_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/majidsaddiqye/reciperemix/pkg/errors"
)

func TestGenerateEndpoint(t *testing.T) {
	app := setupTestAPI(t)
	cookie := app.register(t, "chef", "chef@example.com")

	t.Run("requires authentication", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/api/recipes/generate", gin.H{
			"ingredients": []string{"rice"},
			"cuisine":     "indian",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects an empty ingredient list", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/api/recipes/generate", gin.H{
			"ingredients": []string{},
			"cuisine":     "indian",
		}, cookie)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("first call hits the provider, second serves the cache", func(t *testing.T) {
		payload := gin.H{
			"ingredients": []string{"Rice", "chicken", " tomato "},
			"cuisine":     "indian",
		}

		first := app.do(t, http.MethodPost, "/api/recipes/generate", payload, cookie)
		require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
		assert.Equal(t, "ai", decodeBody(t, first)["source"])
		assert.Equal(t, 1, app.llm.GenerateCalls)

		second := app.do(t, http.MethodPost, "/api/recipes/generate", payload, cookie)
		require.Equal(t, http.StatusOK, second.Code, second.Body.String())
		assert.Equal(t, "cache", decodeBody(t, second)["source"])
		assert.Equal(t, 1, app.llm.GenerateCalls)

		firstRecipe := decodeBody(t, first)["data"].(map[string]interface{})
		secondRecipe := decodeBody(t, second)["data"].(map[string]interface{})
		assert.Equal(t, firstRecipe["id"], secondRecipe["id"])
		assert.Equal(t, firstRecipe["title"], secondRecipe["title"])
	})

	t.Run("ingredient order and casing do not bypass the cache", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/api/recipes/generate", gin.H{
			"ingredients": []string{"TOMATO", "rice ", "Chicken"},
			"cuisine":     "indian",
		}, cookie)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "cache", decodeBody(t, w)["source"])
		assert.Equal(t, 1, app.llm.GenerateCalls)
	})

	t.Run("a different cuisine generates again", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/api/recipes/generate", gin.H{
			"ingredients": []string{"rice", "chicken", "tomato"},
			"cuisine":     "thai",
		}, cookie)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, "ai", decodeBody(t, w)["source"])
		assert.Equal(t, 2, app.llm.GenerateCalls)
	})

	t.Run("provider quota errors surface as 429", func(t *testing.T) {
		app.llm.Err = apperrors.New(apperrors.CodeProviderQuota, "AI provider quota exceeded")
		defer func() { app.llm.Err = nil }()

		w := app.do(t, http.MethodPost, "/api/recipes/generate", gin.H{
			"ingredients": []string{"truffle"},
			"cuisine":     "french",
		}, cookie)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})
}

func TestSavedRecipesEndpoints(t *testing.T) {
	app := setupTestAPI(t)
	cookie := app.register(t, "chef", "chef@example.com")

	generate := func(t *testing.T, cuisine string) string {
		t.Helper()
		w := app.do(t, http.MethodPost, "/api/recipes/generate", gin.H{
			"ingredients": []string{"rice", "beans"},
			"cuisine":     cuisine,
		}, cookie)
		require.Contains(t, []int{http.StatusOK, http.StatusCreated}, w.Code, w.Body.String())
		return decodeBody(t, w)["data"].(map[string]interface{})["id"].(string)
	}

	listTitles := func(t *testing.T) []interface{} {
		t.Helper()
		w := app.do(t, http.MethodGet, "/api/recipes/my-recipes", nil, cookie)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return decodeBody(t, w)["data"].([]interface{})
	}

	t.Run("saved list starts empty", func(t *testing.T) {
		assert.Empty(t, listTitles(t))
	})

	t.Run("saves a generated recipe by id", func(t *testing.T) {
		id := generate(t, "mexican")

		w := app.do(t, http.MethodPost, "/api/recipes/save", gin.H{"recipeId": id}, cookie)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, id, decodeBody(t, w)["recipeId"])

		require.Len(t, listTitles(t), 1)
	})

	t.Run("saving the same recipe again is a no-op", func(t *testing.T) {
		id := generate(t, "mexican")
		w := app.do(t, http.MethodPost, "/api/recipes/save", gin.H{"recipeId": id}, cookie)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		assert.Len(t, listTitles(t), 1)
	})

	t.Run("saves inline recipe data from chat", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/api/recipes/save", gin.H{
			"recipeData": gin.H{
				"title":        "Chat Paella",
				"ingredients":  []string{"rice", "saffron"},
				"instructions": []string{"Simmer gently"},
				"cuisine":      "spanish",
			},
		}, cookie)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.NotEmpty(t, decodeBody(t, w)["recipeId"])

		assert.Len(t, listTitles(t), 2)
	})

	t.Run("rejects an unknown recipe id", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/api/recipes/save", gin.H{
			"recipeId": "2d9d0f5e-70c1-4f26-9b62-5f3ad7f1d000",
		}, cookie)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("rejects a malformed recipe id", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/api/recipes/save", gin.H{"recipeId": "not-a-uuid"}, cookie)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("remove detaches the recipe and is idempotent", func(t *testing.T) {
		id := generate(t, "mexican")

		w := app.do(t, http.MethodDelete, "/api/recipes/remove/"+id, nil, cookie)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Len(t, listTitles(t), 1)

		// removing again succeeds without changing anything
		w = app.do(t, http.MethodDelete, "/api/recipes/remove/"+id, nil, cookie)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, listTitles(t), 1)

		// the shared cache entry survives removal from the saved list
		cached := app.do(t, http.MethodPost, "/api/recipes/generate", gin.H{
			"ingredients": []string{"rice", "beans"},
			"cuisine":     "mexican",
		}, cookie)
		require.Equal(t, http.StatusOK, cached.Code, cached.Body.String())
		assert.Equal(t, "cache", decodeBody(t, cached)["source"])
	})

	t.Run("saved lists are private to each user", func(t *testing.T) {
		otherCookie := app.register(t, "sous", "sous@example.com")
		w := app.do(t, http.MethodGet, "/api/recipes/my-recipes", nil, otherCookie)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Empty(t, decodeBody(t, w)["data"])
	})
}
