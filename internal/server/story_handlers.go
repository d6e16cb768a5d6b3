package server

import (
	"glimpse/internal/models"
	"glimpse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetActiveStories handles GET /api/stories?limit=&cursor=
func (s *Server) GetActiveStories(c *fiber.Ctx) error {
	page := parsePage(c)
	viewerID, _ := s.optionalUserID(c)

	rail, err := s.storyService.GetActiveStories(c.Context(), service.StoryRailInput{
		Limit:    page.Limit,
		Cursor:   page.Cursor,
		ViewerID: viewerID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(rail)
}

// CreateStory handles POST /api/stories
func (s *Server) CreateStory(c *fiber.Ctx) error {
	var req struct {
		ImageURL string `json:"image_url"`
		Text     string `json:"text,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	story, err := s.storyService.CreateStory(c.Context(), service.CreateStoryInput{
		UserID:   actorID(c),
		ImageURL: req.ImageURL,
		Text:     req.Text,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(story)
}

// DeleteStory handles DELETE /api/stories/:id
func (s *Server) DeleteStory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.storyService.DeleteStory(c.Context(), actorID(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetUserStories handles GET /api/users/:id/stories
func (s *Server) GetUserStories(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	stories, err := s.storyService.GetUserStories(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"stories": stories})
}

// GetMyStories handles GET /api/me/stories (the archive, expired included)
func (s *Server) GetMyStories(c *fiber.Ctx) error {
	stories, err := s.storyService.GetMyStories(c.Context(), actorID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"stories": stories})
}
