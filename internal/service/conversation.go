package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/majidsaddiqye/reciperemix/internal/models"
)

// ConversationService maintains the one-per-user append-only chat log.
//
// Appends for the same user are serialized through a per-user mutex so the
// persisted order always matches arrival order, even when the relay handles
// several messages from one user concurrently.
type ConversationService struct {
	db    *gorm.DB
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewConversationService(db *gorm.DB) *ConversationService {
	return &ConversationService{
		db:    db,
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *ConversationService) userLock(userID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

// History returns the user's messages in append order, or an empty slice
// when the user has no conversation yet.
func (s *ConversationService) History(ctx context.Context, userID uuid.UUID) ([]models.Message, error) {
	var conv models.Conversation
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&conv).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return []models.Message{}, nil
		}
		return nil, err
	}
	return s.messages(ctx, conv.ID)
}

// AppendAndSnapshot appends one message and returns the history as it was
// before the append. The snapshot is what the relay hands to the AI gateway
// as context. The conversation record is created on first use.
func (s *ConversationService) AppendAndSnapshot(ctx context.Context, userID uuid.UUID, role, content string) ([]models.Message, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	conv, err := s.upsertConversation(ctx, userID)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.messages(ctx, conv.ID)
	if err != nil {
		return nil, err
	}

	if err := s.append(ctx, conv.ID, int64(len(snapshot))+1, role, content); err != nil {
		return nil, err
	}

	return snapshot, nil
}

// Append appends one message without returning a snapshot.
func (s *ConversationService) Append(ctx context.Context, userID uuid.UUID, role, content string) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	conv, err := s.upsertConversation(ctx, userID)
	if err != nil {
		return err
	}

	var next int64
	err = s.db.WithContext(ctx).Model(&models.Message{}).
		Where("conversation_id = ?", conv.ID).
		Count(&next).Error
	if err != nil {
		return err
	}

	return s.append(ctx, conv.ID, next+1, role, content)
}

func (s *ConversationService) upsertConversation(ctx context.Context, userID uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.WithContext(ctx).
		Where(models.Conversation{UserID: userID}).
		FirstOrCreate(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *ConversationService) append(ctx context.Context, conversationID uuid.UUID, seq int64, role, content string) error {
	msg := models.Message{
		ConversationID: conversationID,
		Seq:            seq,
		Role:           role,
		Content:        content,
	}
	return s.db.WithContext(ctx).Create(&msg).Error
}

func (s *ConversationService) messages(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	var msgs []models.Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("seq ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}
