package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/majidsaddiqye/reciperemix/internal/api"
	"github.com/majidsaddiqye/reciperemix/internal/chat"
	"github.com/majidsaddiqye/reciperemix/internal/router"
	"github.com/majidsaddiqye/reciperemix/internal/service"
	"github.com/majidsaddiqye/reciperemix/internal/testhelpers"
)

type testAPI struct {
	engine *gin.Engine
	llm    *testhelpers.FakeLLM
}

func setupTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDatabase(t)
	logger := zap.NewNop()
	llm := &testhelpers.FakeLLM{}

	authService := service.NewAuthService(db, "test-secret")
	recipeService := service.NewRecipeService(db, nil, llm, logger)
	conversationService := service.NewConversationService(db)
	relay := chat.NewRelay(conversationService, authService, llm, "", logger)

	engine := router.New(
		api.NewAuthHandler(authService, logger),
		api.NewRecipeHandler(recipeService, authService, logger),
		api.NewChatHandler(relay, authService),
		"http://localhost:5173",
	)

	return &testAPI{engine: engine, llm: llm}
}

// do performs a JSON request, attaching the session cookie when given.
func (a *testAPI) do(t *testing.T, method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

// register creates an account and returns its session cookie.
func (a *testAPI) register(t *testing.T, username, email string) *http.Cookie {
	t.Helper()

	w := a.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"username": username,
		"email":    email,
		"password": "password123",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	return sessionCookie(t, w)
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "token" && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
