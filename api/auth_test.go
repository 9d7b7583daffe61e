package api

import (
	"testing"
	"time"

	"courtside/config"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(tokenTTL time.Duration) *Server {
	return &Server{
		cfg: &config.Config{
			JWTSecret: "test-secret",
			TokenTTL:  tokenTTL,
		},
		validate: validator.New(),
	}
}

func TestTokenRoundTrip(t *testing.T) {
	s := testServer(time.Hour)

	token, err := s.issueToken(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := s.parseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestParseToken_WrongSecret(t *testing.T) {
	s := testServer(time.Hour)

	token, err := s.issueToken(42)
	require.NoError(t, err)

	other := testServer(time.Hour)
	other.cfg.JWTSecret = "different-secret"

	_, err = other.parseToken(token)
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	s := testServer(-time.Minute)

	token, err := s.issueToken(42)
	require.NoError(t, err)

	_, err = s.parseToken(token)
	assert.Error(t, err)
}

func TestParseToken_Garbage(t *testing.T) {
	s := testServer(time.Hour)

	_, err := s.parseToken("not.a.token")
	assert.Error(t, err)
}
