package auth

import (
	"testing"
	"time"

	"campuspay/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.JWTConfig {
	return &config.JWTConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
		Issuer:        "campuspay-test",
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	cfg := testConfig()
	token, err := GenerateAccessToken(cfg, 42, "s@uni.edu", "STUDENT")
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "s@uni.edu", claims.Email)
	assert.Equal(t, "STUDENT", claims.Role)
}

func TestParseAccessTokenRejects(t *testing.T) {
	cfg := testConfig()

	t.Run("wrong secret", func(t *testing.T) {
		other := testConfig()
		other.AccessSecret = "someone-else"
		token, err := GenerateAccessToken(other, 1, "s@uni.edu", "STUDENT")
		require.NoError(t, err)
		_, err = ParseAccessToken(cfg, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := testConfig()
		other.Issuer = "not-us"
		token, err := GenerateAccessToken(other, 1, "s@uni.edu", "STUDENT")
		require.NoError(t, err)
		_, err = ParseAccessToken(cfg, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned token", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject: "1",
			Issuer:  cfg.Issuer,
		})
		token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = ParseAccessToken(cfg, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		short := testConfig()
		short.AccessExpiry = -time.Minute
		token, err := GenerateAccessToken(short, 1, "s@uni.edu", "STUDENT")
		require.NoError(t, err)
		_, err = ParseAccessToken(cfg, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestParseRefreshToken(t *testing.T) {
	cfg := testConfig()

	t.Run("round trip", func(t *testing.T) {
		token, err := GenerateRefreshToken(cfg, 42)
		require.NoError(t, err)
		userID, err := ParseRefreshToken(cfg, token)
		require.NoError(t, err)
		assert.Equal(t, uint(42), userID)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		token, err := GenerateAccessToken(cfg, 42, "s@uni.edu", "STUDENT")
		require.NoError(t, err)
		_, err = ParseRefreshToken(cfg, token)
		assert.ErrorIs(t, err, ErrInvalidToken, "signed with the access secret")
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseRefreshToken(cfg, "not.a.jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
