package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentTokenRoundTrip(t *testing.T) {
	token, err := GenerateContentToken(42, "recording", 7, time.Minute, "secret")
	require.NoError(t, err)

	claims, err := VerifyContentToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "recording", claims.ContentKind)
	assert.Equal(t, uint(7), claims.ContentID)
}

func TestContentTokenRejectsTampering(t *testing.T) {
	token, err := GenerateContentToken(1, "video", 2, time.Minute, "secret")
	require.NoError(t, err)

	_, err = VerifyContentToken(token, "other-secret")
	assert.Error(t, err)

	_, err = VerifyContentToken(token+"x", "secret")
	assert.Error(t, err)

	_, err = VerifyContentToken("not-a-token", "secret")
	assert.Error(t, err)
}

func TestContentTokenExpires(t *testing.T) {
	token, err := GenerateContentToken(1, "ebook", 3, -time.Second, "secret")
	require.NoError(t, err)

	_, err = VerifyContentToken(token, "secret")
	assert.Error(t, err)
}

func TestContentTokenRequiresSecret(t *testing.T) {
	_, err := GenerateContentToken(1, "video", 2, time.Minute, "")
	assert.Error(t, err)

	_, err = VerifyContentToken("a.b", "")
	assert.Error(t, err)
}
