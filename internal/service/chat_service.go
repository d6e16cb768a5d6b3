package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"glimpse/internal/models"
	"glimpse/internal/pagination"
	"glimpse/internal/repository"

	"gorm.io/gorm"
)

const (
	maxChatListLimit    = 50
	maxMessagesLimit    = 100
	maxMessageLen       = 1000
	maxGroupNameLen     = 50
	minGroupMembers     = 3 // creator plus at least two others
	maxGroupMembers     = 20
	messagePreviewRunes = 30
)

type ChatService struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
}

type MyChatsInput struct {
	Limit    int
	Cursor   uint
	ViewerID uint
}

// ChatSummary is a chat-list entry with its display identity resolved for
// the viewer.
type ChatSummary struct {
	ID            uint                 `json:"id"`
	IsGroup       bool                 `json:"is_group"`
	Name          string               `json:"name"`
	Image         string               `json:"image"`
	Members       []models.UserSummary `json:"members"`
	LatestMessage *MessagePreview      `json:"latest_message,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

// MessagePreview is the truncated last message shown in the chat list.
type MessagePreview struct {
	Text         string `json:"text"`
	SenderID     uint   `json:"sender_id"`
	IsOwnMessage bool   `json:"is_own_message"`
}

type ChatListPage struct {
	Chats      []*ChatSummary `json:"chats"`
	NextCursor uint           `json:"next_cursor,omitempty"`
}

type MessagesPage struct {
	Messages   []*models.Message `json:"messages"`
	NextCursor uint              `json:"next_cursor,omitempty"`
}

type CreateGroupChatInput struct {
	ViewerID   uint
	GroupName  string
	GroupImage string
	MemberIDs  []uint
}

func NewChatService(chatRepo repository.ChatRepository, userRepo repository.UserRepository) *ChatService {
	return &ChatService{
		chatRepo: chatRepo,
		userRepo: userRepo,
	}
}

// GetMyChats resolves the viewer's chat list. Chats with any message traffic
// sort before never-messaged ones (message count, not last-message time),
// then by creation recency; the pagination window is applied in memory
// because the primary sort key is an aggregate.
func (s *ChatService) GetMyChats(ctx context.Context, in MyChatsInput) (*ChatListPage, error) {
	limit, err := pagination.Normalize(in.Limit, pagination.DefaultLimit, maxChatListLimit)
	if err != nil {
		return nil, err
	}

	ids, err := s.chatRepo.MemberChatIDs(ctx, in.ViewerID)
	if err != nil {
		return nil, err
	}
	chats, err := s.chatRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(chats, func(i, j int) bool {
		if chats[i].MessagesCount != chats[j].MessagesCount {
			return chats[i].MessagesCount > chats[j].MessagesCount
		}
		if !chats[i].CreatedAt.Equal(chats[j].CreatedAt) {
			return chats[i].CreatedAt.After(chats[j].CreatedAt)
		}
		return chats[i].ID > chats[j].ID
	})

	page, next := pagination.SliceAt(chats, in.Cursor, limit, func(c *models.Chat) uint { return c.ID })

	pageIDs := make([]uint, len(page))
	for i, c := range page {
		pageIDs[i] = c.ID
	}
	latest, err := s.chatRepo.LatestMessages(ctx, pageIDs)
	if err != nil {
		return nil, err
	}

	summaries := make([]*ChatSummary, 0, len(page))
	for _, chat := range page {
		summaries = append(summaries, s.summarize(chat, latest[chat.ID], in.ViewerID))
	}
	return &ChatListPage{Chats: summaries, NextCursor: next}, nil
}

// summarize resolves a chat's display identity for the viewer: a group chat
// shows its own name and image, a direct chat shows the other member's.
func (s *ChatService) summarize(chat *models.Chat, latest *models.Message, viewerID uint) *ChatSummary {
	summary := &ChatSummary{
		ID:        chat.ID,
		IsGroup:   chat.IsGroup,
		Name:      chat.GroupName,
		Image:     chat.GroupImage,
		CreatedAt: chat.CreatedAt,
	}
	for _, member := range chat.Members {
		summary.Members = append(summary.Members, member.User.Summary())
		if !chat.IsGroup && member.UserID != viewerID {
			summary.Name = member.User.DisplayName()
			summary.Image = member.User.Image
		}
	}
	if latest != nil {
		summary.LatestMessage = &MessagePreview{
			Text:         truncatePreview(latest.MessageText),
			SenderID:     latest.SenderID,
			IsOwnMessage: latest.SenderID == viewerID,
		}
	}
	return summary
}

func truncatePreview(text string) string {
	runes := []rune(text)
	if len(runes) <= messagePreviewRunes {
		return text
	}
	return string(runes[:messagePreviewRunes]) + "..."
}

// CreateDirectChat returns the existing 1:1 chat with the target, or creates
// one. The dedup means repeated "message" clicks always land in the same
// conversation.
func (s *ChatService) CreateDirectChat(ctx context.Context, viewerID, targetID uint) (*models.Chat, bool, error) {
	if viewerID == targetID {
		return nil, false, models.NewValidationError("You cannot chat with yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, models.NewNotFoundError("User", targetID)
		}
		return nil, false, err
	}

	existing, err := s.chatRepo.DirectChatBetween(ctx, viewerID, targetID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	chat := &models.Chat{}
	if err := s.chatRepo.CreateWithMembers(ctx, chat, []uint{viewerID, targetID}); err != nil {
		return nil, false, err
	}
	return chat, true, nil
}

func (s *ChatService) CreateGroupChat(ctx context.Context, in CreateGroupChatInput) (*models.Chat, error) {
	name := strings.TrimSpace(in.GroupName)
	if name == "" {
		return nil, models.NewValidationError("Group name is required")
	}
	if utf8.RuneCountInString(name) > maxGroupNameLen {
		return nil, models.NewValidationError("Group name too long (max 50 characters)")
	}

	memberSet := map[uint]struct{}{in.ViewerID: {}}
	members := []uint{in.ViewerID}
	for _, id := range in.MemberIDs {
		if _, dup := memberSet[id]; dup {
			continue
		}
		memberSet[id] = struct{}{}
		members = append(members, id)
	}
	if len(members) < minGroupMembers {
		return nil, models.NewValidationError("A group chat needs at least two other members")
	}
	if len(members) > maxGroupMembers {
		return nil, models.NewValidationError("A group chat can have at most 20 members")
	}
	users, err := s.userRepo.GetByIDs(ctx, members)
	if err != nil {
		return nil, err
	}
	if len(users) != len(members) {
		return nil, models.NewValidationError("One or more members do not exist")
	}

	chat := &models.Chat{
		IsGroup:    true,
		GroupName:  name,
		GroupImage: in.GroupImage,
	}
	if err := s.chatRepo.CreateWithMembers(ctx, chat, members); err != nil {
		return nil, err
	}
	return chat, nil
}

// GetChat returns a single chat summary. Membership is required; the chat is
// hidden from non-members the same way the message timeline is.
func (s *ChatService) GetChat(ctx context.Context, chatID, viewerID uint) (*ChatSummary, error) {
	if err := s.requireMember(ctx, chatID, viewerID); err != nil {
		return nil, err
	}
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	latest, err := s.chatRepo.LatestMessages(ctx, []uint{chatID})
	if err != nil {
		return nil, err
	}
	return s.summarize(chat, latest[chatID], viewerID), nil
}

// LeaveGroupChat removes the viewer from a group chat. Direct chats cannot
// be left; there is exactly one per pair and it is reused on re-contact.
func (s *ChatService) LeaveGroupChat(ctx context.Context, chatID, viewerID uint) error {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Chat", chatID)
		}
		return err
	}
	if !chat.IsGroup {
		return models.NewValidationError("You can only leave group chats")
	}
	member, err := s.chatRepo.IsMember(ctx, chatID, viewerID)
	if err != nil {
		return err
	}
	if !member {
		return models.NewForbiddenError("You are not a member of this chat")
	}
	return s.chatRepo.RemoveMember(ctx, chatID, viewerID)
}

// GetMessages pages a chat's timeline newest-first. Non-members are denied
// rather than shown an empty list.
func (s *ChatService) GetMessages(ctx context.Context, chatID, viewerID uint, limitIn int, cursor uint) (*MessagesPage, error) {
	limit, err := pagination.Normalize(limitIn, pagination.DefaultLimit, maxMessagesLimit)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, chatID, viewerID); err != nil {
		return nil, err
	}
	key, err := resolveCursor(ctx, s.chatRepo.MessageKeyOf, cursor)
	if err != nil {
		return nil, err
	}
	rows, err := s.chatRepo.Messages(ctx, chatID, key, limit+1)
	if err != nil {
		return nil, err
	}
	messages, next := pagination.Cut(rows, limit, func(m *models.Message) uint { return m.ID })
	for _, m := range messages {
		m.IsOwnMessage = m.SenderID == viewerID
	}
	return &MessagesPage{Messages: messages, NextCursor: next}, nil
}

func (s *ChatService) SendMessage(ctx context.Context, chatID, viewerID uint, text string) (*models.Message, error) {
	if text == "" {
		return nil, models.NewValidationError("Message text is required")
	}
	if utf8.RuneCountInString(text) > maxMessageLen {
		return nil, models.NewValidationError("Message too long (max 1000 characters)")
	}
	if err := s.requireMember(ctx, chatID, viewerID); err != nil {
		return nil, err
	}

	message := &models.Message{
		ChatID:      chatID,
		SenderID:    viewerID,
		MessageText: text,
	}
	if err := s.chatRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}
	message.IsOwnMessage = true
	return message, nil
}

func (s *ChatService) requireMember(ctx context.Context, chatID, viewerID uint) error {
	if _, err := s.chatRepo.GetByID(ctx, chatID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Chat", chatID)
		}
		return err
	}
	member, err := s.chatRepo.IsMember(ctx, chatID, viewerID)
	if err != nil {
		return err
	}
	if !member {
		return models.NewForbiddenError("You are not a member of this chat")
	}
	return nil
}
