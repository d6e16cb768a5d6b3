package repository

import (
	"context"

	"glimpse/internal/models"
	"glimpse/internal/pagination"

	"gorm.io/gorm"
)

// ChatRepository defines the interface for chat and message data operations
type ChatRepository interface {
	MemberChatIDs(ctx context.Context, userID uint) ([]uint, error)
	ListByIDs(ctx context.Context, chatIDs []uint) ([]*models.Chat, error)
	GetByID(ctx context.Context, chatID uint) (*models.Chat, error)
	LatestMessages(ctx context.Context, chatIDs []uint) (map[uint]*models.Message, error)
	DirectChatBetween(ctx context.Context, userA, userB uint) (*models.Chat, error)
	CreateWithMembers(ctx context.Context, chat *models.Chat, memberIDs []uint) error
	RemoveMember(ctx context.Context, chatID, userID uint) error
	IsMember(ctx context.Context, chatID, userID uint) (bool, error)
	Messages(ctx context.Context, chatID uint, key *pagination.Key, limit int) ([]*models.Message, error)
	MessageKeyOf(ctx context.Context, id uint) (*pagination.Key, error)
	CreateMessage(ctx context.Context, message *models.Message) error
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) MemberChatIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.ChatUser{}).
		Where("user_id = ?", userID).
		Pluck("chat_id", &ids).Error
	return ids, err
}

// ListByIDs loads chats with their members and a message count alias. The
// caller orders the result; the chat list ordering is computed in memory
// because it sorts on the aggregate.
func (r *chatRepository) ListByIDs(ctx context.Context, chatIDs []uint) ([]*models.Chat, error) {
	if len(chatIDs) == 0 {
		return nil, nil
	}
	var chats []*models.Chat
	err := r.db.WithContext(ctx).
		Model(&models.Chat{}).
		Select("chats.*, (SELECT COUNT(*) FROM messages WHERE messages.chat_id = chats.id) as messages_count").
		Preload("Members.User").
		Where("chats.id IN ?", chatIDs).
		Find(&chats).Error
	return chats, err
}

func (r *chatRepository) GetByID(ctx context.Context, chatID uint) (*models.Chat, error) {
	var chat models.Chat
	err := r.db.WithContext(ctx).
		Preload("Members.User").
		First(&chat, chatID).Error
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// LatestMessages batch-loads the newest message of each chat in one query.
// Message ids are monotonic, so MAX(id) per chat is the latest message.
func (r *chatRepository) LatestMessages(ctx context.Context, chatIDs []uint) (map[uint]*models.Message, error) {
	if len(chatIDs) == 0 {
		return map[uint]*models.Message{}, nil
	}
	var messages []*models.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("chat_id IN ? AND id IN (SELECT MAX(id) FROM messages WHERE chat_id IN ? GROUP BY chat_id)", chatIDs, chatIDs).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	latest := make(map[uint]*models.Message, len(messages))
	for _, m := range messages {
		latest[m.ChatID] = m
	}
	return latest, nil
}

// DirectChatBetween finds an existing 1:1 chat whose member set is exactly
// {userA, userB}. Returns nil without error when none exists.
func (r *chatRepository) DirectChatBetween(ctx context.Context, userA, userB uint) (*models.Chat, error) {
	var chatID uint
	err := r.db.WithContext(ctx).
		Model(&models.ChatUser{}).
		Select("chat_id").
		Joins("JOIN chats ON chats.id = chat_users.chat_id AND NOT chats.is_group").
		Where("chat_users.user_id IN ?", []uint{userA, userB}).
		Group("chat_id").
		Having("COUNT(DISTINCT chat_users.user_id) = 2 AND (SELECT COUNT(*) FROM chat_users cu WHERE cu.chat_id = chat_users.chat_id) = 2").
		Limit(1).
		Scan(&chatID).Error
	if err != nil {
		return nil, err
	}
	if chatID == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, chatID)
}

func (r *chatRepository) CreateWithMembers(ctx context.Context, chat *models.Chat, memberIDs []uint) error {
	if err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(chat).Error; err != nil {
			return err
		}
		members := make([]models.ChatUser, 0, len(memberIDs))
		for _, id := range memberIDs {
			members = append(members, models.ChatUser{ChatID: chat.ID, UserID: id})
		}
		return tx.Create(&members).Error
	}); err != nil {
		return err
	}
	// Reload members with their users for the response payload.
	return r.db.WithContext(ctx).
		Preload("User").
		Where("chat_id = ?", chat.ID).
		Find(&chat.Members).Error
}

func (r *chatRepository) RemoveMember(ctx context.Context, chatID, userID uint) error {
	return r.db.WithContext(ctx).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Delete(&models.ChatUser{}).Error
}

func (r *chatRepository) IsMember(ctx context.Context, chatID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ChatUser{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Count(&count).Error
	return count > 0, err
}

// Messages returns one overfetched page of a chat's timeline, newest first.
func (r *chatRepository) Messages(ctx context.Context, chatID uint, key *pagination.Key, limit int) ([]*models.Message, error) {
	var messages []*models.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("chat_id = ?", chatID).
		Scopes(pagination.Scope("messages.created_at", key)).
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

func (r *chatRepository) MessageKeyOf(ctx context.Context, id uint) (*pagination.Key, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).Select("id", "created_at").First(&message, id).Error; err != nil {
		return nil, err
	}
	return &pagination.Key{CreatedAt: message.CreatedAt, ID: message.ID}, nil
}

func (r *chatRepository) CreateMessage(ctx context.Context, message *models.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Chat{}).
		Where("id = ?", message.ChatID).
		Update("updated_at", message.CreatedAt).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).First(&message.Sender, message.SenderID).Error
}
