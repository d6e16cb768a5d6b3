package server

import (
	"glimpse/internal/models"
	"glimpse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyChats handles GET /api/chats?limit=&cursor=
func (s *Server) GetMyChats(c *fiber.Ctx) error {
	page := parsePage(c)

	chats, err := s.chatService.GetMyChats(c.Context(), service.MyChatsInput{
		Limit:    page.Limit,
		Cursor:   page.Cursor,
		ViewerID: actorID(c),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(chats)
}

// GetChat handles GET /api/chats/:id
func (s *Server) GetChat(c *fiber.Ctx) error {
	chatID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	chat, err := s.chatService.GetChat(c.Context(), chatID, actorID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(chat)
}

// CreateDirectChat handles POST /api/chats/direct
func (s *Server) CreateDirectChat(c *fiber.Ctx) error {
	var req struct {
		UserID uint `json:"user_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	chat, isNew, err := s.chatService.CreateDirectChat(c.Context(), actorID(c), req.UserID)
	if err != nil {
		return respondServiceError(c, err)
	}
	status := fiber.StatusOK
	if isNew {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{"chat": chat, "is_new": isNew})
}

// CreateGroupChat handles POST /api/chats/group
func (s *Server) CreateGroupChat(c *fiber.Ctx) error {
	var req struct {
		Name      string `json:"name"`
		Image     string `json:"image,omitempty"`
		MemberIDs []uint `json:"member_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	chat, err := s.chatService.CreateGroupChat(c.Context(), service.CreateGroupChatInput{
		ViewerID:   actorID(c),
		GroupName:  req.Name,
		GroupImage: req.Image,
		MemberIDs:  req.MemberIDs,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(chat)
}

// LeaveGroupChat handles POST /api/chats/:id/leave
func (s *Server) LeaveGroupChat(c *fiber.Ctx) error {
	chatID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.chatService.LeaveGroupChat(c.Context(), chatID, actorID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetMessages handles GET /api/chats/:id/messages?limit=&cursor=
func (s *Server) GetMessages(c *fiber.Ctx) error {
	chatID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePage(c)

	messages, err := s.chatService.GetMessages(c.Context(), chatID, actorID(c), page.Limit, page.Cursor)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(messages)
}

// SendMessage handles POST /api/chats/:id/messages
func (s *Server) SendMessage(c *fiber.Ctx) error {
	chatID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	message, err := s.chatService.SendMessage(c.Context(), chatID, actorID(c), req.Text)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}
