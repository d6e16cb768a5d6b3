package server

import (
	"glimpse/internal/models"
	"glimpse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/posts?limit=&cursor=
func (s *Server) GetFeed(c *fiber.Ctx) error {
	page := parsePage(c)
	viewerID, _ := s.optionalUserID(c)

	feed, err := s.postService.Feed(c.Context(), service.FeedInput{
		Limit:    page.Limit,
		Cursor:   page.Cursor,
		ViewerID: viewerID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(feed)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewerID, _ := s.optionalUserID(c)

	post, err := s.postService.GetPost(c.Context(), id, viewerID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePage(c)
	viewerID, _ := s.optionalUserID(c)

	posts, err := s.postService.GetUserPosts(c.Context(), userID, service.FeedInput{
		Limit:    page.Limit,
		Cursor:   page.Cursor,
		ViewerID: viewerID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := actorID(c)

	var req struct {
		Caption   string   `json:"caption"`
		Location  string   `json:"location,omitempty"`
		ImageURLs []string `json:"image_urls"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:    userID,
		Caption:   req.Caption,
		Location:  req.Location,
		ImageURLs: req.ImageURLs,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Caption  *string `json:"caption"`
		Location *string `json:"location"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		UserID:   actorID(c),
		PostID:   id,
		Caption:  req.Caption,
		Location: req.Location,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.postService.DeletePost(c.Context(), actorID(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleLike handles POST /api/posts/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	liked, err := s.postService.ToggleLike(c.Context(), actorID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"liked": liked})
}

// GetLikes handles GET /api/posts/:id/likes?limit=&cursor=
func (s *Server) GetLikes(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePage(c)
	likes, err := s.postService.GetLikes(c.Context(), id, page.Limit, page.Cursor)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(likes)
}
