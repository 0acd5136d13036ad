package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", 30*time.Second)

	token, exp, err := svc.GenerateAccessToken("user-1", "hr", time.Hour)
	require.NoError(t, err)
	assert.Greater(t, exp, time.Now().Unix())

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	typ, ok := decoded.Get("type")
	require.True(t, ok)
	assert.Equal(t, TokenTypeAccess, typ)
	sub, _ := decoded.Get("user_id")
	assert.Equal(t, "user-1", sub)
}

func TestDecode_RejectsOtherSecret(t *testing.T) {
	token, _, err := NewJWTService("secret-a", 0).GenerateAccessToken("user-1", "hr", time.Hour)
	require.NoError(t, err)

	_, err = NewJWTService("secret-b", 0).JWTAuth().Decode(token)
	assert.Error(t, err)
}
