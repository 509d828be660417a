package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"time"
)

// TokenLength is the length of every verification token
const TokenLength = sha256.Size * 2

// tokenSeedBytes feeds the digest; 32 bytes is 256 bits of entropy
const tokenSeedBytes = 32

// Clock returns the current time. Workflows take one so expiry can be tested.
type Clock func() time.Time

func normalizeClock(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

// ResetToken is an issued recovery token with its absolute expiry
type ResetToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenIssuer produces single use verification tokens.
type TokenIssuer struct {
	random io.Reader
	clock  Clock
	ttl    time.Duration
}

// NewTokenIssuer returns an issuer reading from crypto/rand. A ttl of zero
// uses ResetTokenTTL.
func NewTokenIssuer(ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = ResetTokenTTL
	}
	return &TokenIssuer{
		random: rand.Reader,
		clock:  time.Now,
		ttl:    ttl,
	}
}

// WithClock replaces the time source
func (t *TokenIssuer) WithClock(c Clock) *TokenIssuer {
	t.clock = normalizeClock(c)
	return t
}

// WithRandom replaces the entropy source
func (t *TokenIssuer) WithRandom(r io.Reader) *TokenIssuer {
	if r != nil {
		t.random = r
	}
	return t
}

// Now returns the issuer's current time
func (t *TokenIssuer) Now() time.Time {
	return t.clock()
}

// Token returns a fresh opaque token: the hex SHA-256 digest of a random seed.
func (t *TokenIssuer) Token() (string, error) {
	seed := make([]byte, tokenSeedBytes)
	if _, err := io.ReadFull(t.random, seed); err != nil {
		return "", err
	}
	sum := sha256.Sum256(seed)
	return hex.EncodeToString(sum[:]), nil
}

// ResetToken returns a token that expires ttl after issuance.
func (t *TokenIssuer) ResetToken() (ResetToken, error) {
	value, err := t.Token()
	if err != nil {
		return ResetToken{}, err
	}
	return ResetToken{
		Value:     value,
		ExpiresAt: t.clock().Add(t.ttl),
	}, nil
}

// DataDirectoryToken returns the 16 hex character name of a user's private
// storage directory.
func (t *TokenIssuer) DataDirectoryToken() (string, error) {
	buf := make([]byte, 8)
	if _, err := io.ReadFull(t.random, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
