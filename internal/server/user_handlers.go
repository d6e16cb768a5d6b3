package server

import (
	"glimpse/internal/models"
	"glimpse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewerID, _ := s.optionalUserID(c)

	user, isFollowing, err := s.userService.GetProfile(c.Context(), userID, viewerID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"user":         user,
		"is_following": isFollowing,
	})
}

// GetUserByUsername handles GET /api/users/username/:username
func (s *Server) GetUserByUsername(c *fiber.Ctx) error {
	username := c.Params("username")
	if username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username is required"))
	}
	user, err := s.userService.GetByUsername(c.Context(), username)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// SearchUsers handles GET /api/users/search?q=&limit=&cursor=
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	page := parsePage(c)
	users, err := s.userService.Search(c.Context(), c.Query("q"), page.Limit, page.Cursor)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(users)
}

// GetMyProfile handles GET /api/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := actorID(c)
	user, _, err := s.userService.GetProfile(c.Context(), userID, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Name  *string `json:"name"`
		Bio   *string `json:"bio"`
		Image *string `json:"image"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID: actorID(c),
		Name:   req.Name,
		Bio:    req.Bio,
		Image:  req.Image,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}
