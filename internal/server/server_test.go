package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLivenessCheck(t *testing.T) {
	s, _ := newTestServer(t)
	app := fiber.New()
	app.Get("/health/live", s.LivenessCheck)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	s, db := newTestServer(t)
	seedUser(t, db, "alice")

	app := fiber.New()
	app.Get("/private", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": actorID(c)})
	})

	signed := func(claims jwt.MapClaims) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
		require.NoError(t, err)
		return token
	}
	baseClaims := func() jwt.MapClaims {
		return jwt.MapClaims{
			"sub": "1",
			"iss": tokenIssuer,
			"aud": tokenAudience,
			"exp": time.Now().Add(time.Hour).Unix(),
		}
	}

	tests := []struct {
		name           string
		authorization  string
		expectedStatus int
	}{
		{
			name:           "missing token",
			authorization:  "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "malformed header",
			authorization:  "Token abc",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "garbage token",
			authorization:  "Bearer not-a-jwt",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "wrong issuer",
			authorization: "Bearer " + signed(func() jwt.MapClaims {
				c := baseClaims()
				c["iss"] = "someone-else"
				return c
			}()),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "wrong audience",
			authorization: "Bearer " + signed(func() jwt.MapClaims {
				c := baseClaims()
				c["aud"] = "other-client"
				return c
			}()),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "expired token",
			authorization: "Bearer " + signed(func() jwt.MapClaims {
				c := baseClaims()
				c["exp"] = time.Now().Add(-time.Hour).Unix()
				return c
			}()),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "valid token",
			authorization:  "Bearer " + signed(baseClaims()),
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.authorization != "" {
				req.Header.Set("Authorization", tt.authorization)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestOptionalUserID(t *testing.T) {
	s, _ := newTestServer(t)

	app := fiber.New()
	app.Get("/public", func(c *fiber.Ctx) error {
		viewerID, ok := s.optionalUserID(c)
		return c.JSON(fiber.Map{"viewer_id": viewerID, "authenticated": ok})
	})

	t.Run("anonymous passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/public", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("bad token degrades to anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/public", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param string
		want  string
	}{
		{"id", "ID"},
		{"commentId", "comment ID"},
		{"userId", "user ID"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			assert.Equal(t, tt.want, humanizeParam(tt.param))
		})
	}
}

func TestParsePage(t *testing.T) {
	app := fiber.New()
	var got Page
	app.Get("/probe", func(c *fiber.Ctx) error {
		got = parsePage(c)
		return c.SendStatus(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/probe?limit=%d&cursor=%d", 5, 42), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, 5, got.Limit)
	assert.EqualValues(t, 42, got.Cursor)
}
