package helpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)
	tok, exp, err := m.GenerateAccessToken("user-1", "sid-1")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Minute), exp, 5*time.Second)

	claims, err := m.ParseAccessToken(tok)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "sid-1", claims.SessionID)
	require.Equal(t, "user-1", claims.Subject)
}

func TestJWTRejects(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)

	foreign, _, err := NewJWTManager("other", time.Minute).GenerateAccessToken("user-1", "")
	require.NoError(t, err)
	_, err = m.ParseAccessToken(foreign)
	require.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	expired, _, err := NewJWTManager("secret", -time.Minute).GenerateAccessToken("user-1", "")
	require.NoError(t, err)
	_, err = m.ParseAccessToken(expired)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)

	anonymous, _, err := m.GenerateAccessToken("", "")
	require.NoError(t, err)
	_, err = m.ParseAccessToken(anonymous)
	require.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "user-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.ParseAccessToken(none)
	require.Error(t, err)
}

func TestSessionKey(t *testing.T) {
	require.Equal(t, "user:session:abc", SessionKey("abc"))
}
