package utils

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vibrantflight/internal/models"
)

const testSecret = "test-secret"

func TestTokenRoundTrip(t *testing.T) {
	principal := models.Principal{ID: uuid.New(), Role: models.RoleAdmin}

	token, err := GenerateToken(testSecret, principal, time.Hour)
	require.NoError(t, err)

	parsed, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, principal, parsed)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken(testSecret, models.Principal{ID: uuid.New(), Role: models.RoleUser}, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("other-secret", token)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken(testSecret, models.Principal{ID: uuid.New(), Role: models.RoleUser}, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseTokenRejectsUnknownRole(t *testing.T) {
	token, err := GenerateToken(testSecret, models.Principal{ID: uuid.New(), Role: "root"}, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, token)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken(testSecret, "not.a.jwt")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, CheckPassword(hash, "secret1"))
	assert.False(t, CheckPassword(hash, "secret2"))
}

func TestResetTokens(t *testing.T) {
	a, err := NewResetToken()
	require.NoError(t, err)
	b, err := NewResetToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	assert.True(t, TokensEqual(a, a))
	assert.False(t, TokensEqual(a, b))
	assert.False(t, TokensEqual("", ""))
}

func TestPaginationMeta(t *testing.T) {
	p := NewPagination(2, 10)
	assert.Equal(t, 10, p.Offset)
	assert.Equal(t, PageMeta{Page: 2, Limit: 10, Total: 21, TotalPages: 3}, p.Meta(21))

	clamped := NewPagination(0, 1000)
	assert.Equal(t, 1, clamped.Page)
	assert.Equal(t, 100, clamped.Limit)
}

func TestPasswordAtBcryptLimitHashes(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", MaxPasswordBytes))
	assert.NoError(t, err)
}

func TestPaginationClampsHugePage(t *testing.T) {
	p := NewPagination(int(^uint(0)>>1), 100)
	assert.Equal(t, maxPage, p.Page)
	assert.Equal(t, (maxPage-1)*100, p.Offset)
	assert.EqualValues(t, 0, p.Meta(0).TotalPages)
}

func TestParsePaginationFromQuery(t *testing.T) {
	var got Pagination
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		got = ParsePagination(c)
		return nil
	})

	cases := []struct {
		query string
		want  Pagination
	}{
		{"", Pagination{Page: 1, Limit: 20, Offset: 0}},
		{"?page=3&limit=5", Pagination{Page: 3, Limit: 5, Offset: 10}},
		{"?page=abc&limit=-4", Pagination{Page: 1, Limit: 20, Offset: 0}},
		{"?limit=500", Pagination{Page: 1, Limit: 100, Offset: 0}},
	}
	for _, tc := range cases {
		_, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/"+tc.query, nil))
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, tc.query)
	}
}
