package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/majidsaddiqye/reciperemix/internal/chat"
	"github.com/majidsaddiqye/reciperemix/internal/middleware"
	"github.com/majidsaddiqye/reciperemix/internal/service"
)

// ChatHandler upgrades authenticated requests to the chat relay.
type ChatHandler struct {
	relay *chat.Relay
	auth  service.IAuthService
}

func NewChatHandler(relay *chat.Relay, auth service.IAuthService) *ChatHandler {
	return &ChatHandler{relay: relay, auth: auth}
}

func (h *ChatHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/ws", middleware.Auth(h.auth), h.Connect)
}

func (h *ChatHandler) Connect(c *gin.Context) {
	claims := &service.TokenClaims{
		UserID:   c.MustGet("user_id").(uuid.UUID),
		Username: c.GetString("username"),
	}
	h.relay.Serve(c.Writer, c.Request, claims)
}
