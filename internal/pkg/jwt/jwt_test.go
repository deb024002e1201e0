package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("s3cret")
	token, err := GenerateToken("u1", "user@example.com", "stamp-1", secret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token, secret)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.UserID)
	require.Equal(t, "user@example.com", claims.Email)
	require.Equal(t, "stamp-1", claims.Stamp)
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("u1", "", "stamp-1", []byte("right"), time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, []byte("wrong"))
	require.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	secret := []byte("s3cret")
	token, err := GenerateToken("u1", "", "stamp-1", secret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, secret)
	require.Error(t, err)
}
