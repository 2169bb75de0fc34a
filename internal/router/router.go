// Package router wires the HTTP routes.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/majidsaddiqye/reciperemix/internal/api"
	"github.com/majidsaddiqye/reciperemix/internal/middleware"
)

// New builds the gin engine with all application routes registered.
func New(
	authHandler *api.AuthHandler,
	recipeHandler *api.RecipeHandler,
	chatHandler *api.ChatHandler,
	frontendOrigin string,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(frontendOrigin))

	root := router.Group("/")
	chatHandler.RegisterRoutes(root)

	apiGroup := router.Group("/api")
	authHandler.RegisterRoutes(apiGroup)
	recipeHandler.RegisterRoutes(apiGroup)

	return router
}
