package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"glimpse/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatTestApp(s *Server) *fiber.App {
	app := fiber.New()
	chats := app.Group("/api/chats", s.AuthRequired())
	chats.Get("/", s.GetMyChats)
	chats.Post("/direct", s.CreateDirectChat)
	chats.Get("/:id/messages", s.GetMessages)
	chats.Post("/:id/messages", s.SendMessage)
	return app
}

func TestDirectChatFlow(t *testing.T) {
	s, db := newTestServer(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	mallory := seedUser(t, db, "mallory")
	app := newChatTestApp(s)
	aliceToken := authToken(t, alice.ID)

	// First contact creates the chat.
	req := jsonRequest(t, http.MethodPost, "/api/chats/direct", fiber.Map{"user_id": bob.ID})
	req.Header.Set("Authorization", "Bearer "+aliceToken)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Chat  models.Chat `json:"chat"`
		IsNew bool        `json:"is_new"`
	}
	decodeBody(t, resp, &created)
	require.NotZero(t, created.Chat.ID)
	assert.True(t, created.IsNew)

	// Second contact lands in the same conversation.
	req = jsonRequest(t, http.MethodPost, "/api/chats/direct", fiber.Map{"user_id": bob.ID})
	req.Header.Set("Authorization", "Bearer "+aliceToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var again struct {
		Chat  models.Chat `json:"chat"`
		IsNew bool        `json:"is_new"`
	}
	decodeBody(t, resp, &again)
	assert.Equal(t, created.Chat.ID, again.Chat.ID)
	assert.False(t, again.IsNew)

	// A member can post to the timeline.
	req = jsonRequest(t, http.MethodPost, addID("/api/chats/", created.Chat.ID)+"/messages", fiber.Map{"text": "hey"})
	req.Header.Set("Authorization", "Bearer "+aliceToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// A non-member is denied, not shown an empty page.
	req = httptest.NewRequest(http.MethodGet, addID("/api/chats/", created.Chat.ID)+"/messages", nil)
	req.Header.Set("Authorization", "Bearer "+authToken(t, mallory.ID))
	resp, err = app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
