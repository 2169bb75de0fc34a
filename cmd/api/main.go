package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/majidsaddiqye/reciperemix/config"
	"github.com/majidsaddiqye/reciperemix/internal/api"
	"github.com/majidsaddiqye/reciperemix/internal/chat"
	"github.com/majidsaddiqye/reciperemix/internal/database"
	"github.com/majidsaddiqye/reciperemix/internal/router"
	"github.com/majidsaddiqye/reciperemix/internal/server"
	"github.com/majidsaddiqye/reciperemix/internal/service"
	"github.com/majidsaddiqye/reciperemix/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	gin.SetMode(cfg.GinMode)

	zapLogger, err := logger.New(cfg.LogLevel, cfg.GinMode != gin.ReleaseMode)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := database.New(cfg)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zapLogger.Fatal("failed to migrate database", zap.Error(err))
	}

	// Redis is a best-effort fast path; the app runs without it.
	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		zapLogger.Warn("redis unavailable, recipe cache fast path disabled", zap.Error(err))
		redisClient = nil
	}

	llmService := service.NewLLMService(cfg.OpenAIAPIKey, cfg.OpenAIAPIURL, cfg.OpenAIModel, zapLogger)
	authService := service.NewAuthService(db, cfg.JWTSecret)
	recipeService := service.NewRecipeService(db, redisClient, llmService, zapLogger)
	conversationService := service.NewConversationService(db)

	relay := chat.NewRelay(conversationService, authService, llmService, cfg.FrontendOrigin, zapLogger)

	engine := router.New(
		api.NewAuthHandler(authService, zapLogger),
		api.NewRecipeHandler(recipeService, authService, zapLogger),
		api.NewChatHandler(relay, authService),
		cfg.FrontendOrigin,
	)

	srv := server.New(cfg.Addr(), engine, zapLogger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	case sig := <-quit:
		zapLogger.Info("received signal", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown error", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}
