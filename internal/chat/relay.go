// Package chat implements the websocket relay between clients and the AI
// assistant.
package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/majidsaddiqye/reciperemix/internal/models"
	"github.com/majidsaddiqye/reciperemix/internal/service"
)

// Event names exchanged over the channel.
const (
	EventLoadHistory = "load_history"
	EventChatHistory = "chat_history"
	EventSendMsg     = "send_msg"
	EventReceiveMsg  = "receive_msg"
	EventError       = "error"
)

const writeTimeout = 10 * time.Second

// Envelope is the JSON frame exchanged in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ChatMessage is an outbound assistant message.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type sendMsgPayload struct {
	UserID string `json:"userId"`
	Text   string `json:"text"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// Relay upgrades authenticated requests to websocket connections and runs
// the per-connection message loop.
type Relay struct {
	upgrader      websocket.Upgrader
	conversations service.IConversationService
	auth          service.IAuthService
	llm           service.ILLMService
	logger        *zap.Logger
}

// NewRelay creates a relay. Origin limits websocket upgrades to the
// configured frontend; an empty origin allows all (tests).
func NewRelay(conversations service.IConversationService, auth service.IAuthService, llm service.ILLMService, origin string, logger *zap.Logger) *Relay {
	return &Relay{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if origin == "" {
					return true
				}
				reqOrigin := r.Header.Get("Origin")
				return reqOrigin == "" || reqOrigin == origin
			},
		},
		conversations: conversations,
		auth:          auth,
		llm:           llm,
		logger:        logger,
	}
}

// Serve upgrades the request and relays messages until the client
// disconnects. The caller has already authenticated the request; claims
// carry the user identity, and any userId field sent by the client is
// ignored in favor of it.
func (r *Relay) Serve(w http.ResponseWriter, req *http.Request, claims *service.TokenClaims) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		relay:    r,
		conn:     conn,
		userID:   claims.UserID,
		outbound: make(chan Envelope, 16),
		done:     make(chan struct{}),
	}

	go c.writeLoop()
	c.readLoop()
}

// client is one websocket connection.
type client struct {
	relay    *Relay
	conn     *websocket.Conn
	userID   uuid.UUID
	outbound chan Envelope
	done     chan struct{}
}

// writeLoop is the single writer for the connection.
func (c *client) writeLoop() {
	for {
		select {
		case env := <-c.outbound:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(env); err != nil {
				c.relay.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *client) readLoop() {
	defer func() {
		close(c.done)
		c.conn.Close()
	}()

	for {
		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.relay.logger.Debug("websocket read failed", zap.Error(err))
			}
			return
		}

		switch env.Event {
		case EventLoadHistory:
			c.handleLoadHistory()
		case EventSendMsg:
			var payload sendMsgPayload
			if err := json.Unmarshal(env.Data, &payload); err != nil || payload.Text == "" {
				c.emitError("message text is required")
				continue
			}
			// Each message is handled concurrently; per-user append order is
			// restored by the conversation service.
			go c.handleSendMsg(payload.Text)
		default:
			c.emitError("unknown event: " + env.Event)
		}
	}
}

func (c *client) handleLoadHistory() {
	history, err := c.relay.conversations.History(context.Background(), c.userID)
	if err != nil {
		c.relay.logger.Error("failed to load chat history", zap.Error(err))
		c.emitError("failed to load chat history")
		return
	}
	c.emit(EventChatHistory, history)
}

func (c *client) handleSendMsg(text string) {
	ctx := context.Background()

	snapshot, err := c.relay.conversations.AppendAndSnapshot(ctx, c.userID, models.RoleUser, text)
	if err != nil {
		c.relay.logger.Error("failed to append chat message", zap.Error(err))
		c.emitError("failed to save your message")
		return
	}

	var prefs []string
	if user, err := c.relay.auth.GetUser(ctx, c.userID); err == nil {
		prefs = user.DietaryPreferences
	}

	reply, err := c.relay.llm.ChatReply(ctx, text, snapshot, prefs)
	if err != nil {
		c.relay.logger.Error("assistant reply failed", zap.Error(err))
		c.emitError("the assistant could not answer, please try again")
		return
	}

	if err := c.relay.conversations.Append(ctx, c.userID, models.RoleAssistant, reply); err != nil {
		c.relay.logger.Error("failed to append assistant reply", zap.Error(err))
	}

	c.emit(EventReceiveMsg, ChatMessage{Role: models.RoleAssistant, Content: reply})
}

func (c *client) emit(event string, data interface{}) {
	raw, err := json.Marshal(data)
	if err != nil {
		c.relay.logger.Error("failed to marshal event payload", zap.Error(err))
		return
	}
	select {
	case c.outbound <- Envelope{Event: event, Data: raw}:
	case <-c.done:
	}
}

func (c *client) emitError(message string) {
	c.emit(EventError, errorPayload{Message: message})
}
