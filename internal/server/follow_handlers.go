package server

import (
	"glimpse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ToggleFollow handles POST /api/users/:id/follow
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	following, err := s.followService.ToggleFollow(c.Context(), actorID(c), targetID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"following": following})
}

// GetFollowers handles GET /api/users/:id/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePage(c)
	viewerID, _ := s.optionalUserID(c)
	followers, err := s.followService.GetFollowers(c.Context(), service.FollowListInput{
		UserID:   userID,
		ViewerID: viewerID,
		Limit:    page.Limit,
		Cursor:   page.Cursor,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(followers)
}

// GetFollowing handles GET /api/users/:id/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePage(c)
	viewerID, _ := s.optionalUserID(c)
	following, err := s.followService.GetFollowing(c.Context(), service.FollowListInput{
		UserID:   userID,
		ViewerID: viewerID,
		Limit:    page.Limit,
		Cursor:   page.Cursor,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(following)
}
