package auth_test

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"testing"
	"time"

	auth "github.com/goliatone/go-auth-lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexToken = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestTokenIssuer_TokenShape(t *testing.T) {
	issuer := auth.NewTokenIssuer(0)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		token, err := issuer.Token()
		require.NoError(t, err)
		assert.Len(t, token, auth.TokenLength)
		assert.Regexp(t, hexToken, token)
		assert.False(t, seen[token], "token repeated")
		seen[token] = true
	}
}

func TestTokenIssuer_TokenIsDigestOfSeed(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, 32)
	issuer := auth.NewTokenIssuer(0).WithRandom(bytes.NewReader(seed))

	token, err := issuer.Token()
	require.NoError(t, err)

	sum := sha256.Sum256(seed)
	assert.Equal(t, hex.EncodeToString(sum[:]), token)
}

func TestTokenIssuer_ShortEntropyFails(t *testing.T) {
	issuer := auth.NewTokenIssuer(0).WithRandom(bytes.NewReader([]byte{1, 2, 3}))

	_, err := issuer.Token()
	assert.Error(t, err)
}

func TestTokenIssuer_ResetTokenExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	issuer := auth.NewTokenIssuer(0).WithClock(func() time.Time { return now })

	token, err := issuer.ResetToken()
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), token.ExpiresAt)
	assert.Equal(t, now, issuer.Now())

	custom := auth.NewTokenIssuer(15*time.Minute).WithClock(func() time.Time { return now })
	token, err = custom.ResetToken()
	require.NoError(t, err)
	assert.Equal(t, now.Add(15*time.Minute), token.ExpiresAt)
}

func TestTokenIssuer_DataDirectoryToken(t *testing.T) {
	issuer := auth.NewTokenIssuer(0).WithRandom(bytes.NewReader([]byte{0xde, 0xad, 0xbe, 0xef, 0, 1, 2, 3}))

	dir, err := issuer.DataDirectoryToken()
	require.NoError(t, err)
	assert.Equal(t, "deadbeef00010203", dir)
}

func TestPasswordResetRecord_Expired(t *testing.T) {
	expiry := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
	record := auth.PasswordResetRecord{UserID: 1, Hash: "h", ExpiresAt: expiry}

	assert.False(t, record.Expired(expiry.Add(-time.Second)))
	assert.True(t, record.Expired(expiry), "expiry instant is already expired")
	assert.True(t, record.Expired(expiry.Add(time.Second)))
}
