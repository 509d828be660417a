package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"io"
)

const (
	formTokenSessionPrefix = "form_token_"
	formTokenLength        = 32
)

// FormTokens issues and checks anti-forgery tokens kept in the session,
// one per form key.
type FormTokens struct {
	random io.Reader
}

// NewFormTokens returns a token manager reading from crypto/rand
func NewFormTokens() *FormTokens {
	return &FormTokens{random: rand.Reader}
}

// Issue creates a token for key, stores it in s and returns it for
// embedding in the form.
func (f *FormTokens) Issue(s Session, key string) (string, error) {
	buf := make([]byte, formTokenLength)
	if _, err := io.ReadFull(f.random, buf); err != nil {
		return "", unexpected(err, "generate form token")
	}
	token := base64.RawURLEncoding.EncodeToString(buf)
	s.Set(formTokenSessionPrefix+key, token)
	return token, nil
}

// ValidateToken implements FormTokenValidator.
func (f *FormTokens) ValidateToken(s Session, token, key string) bool {
	if s == nil || token == "" || key == "" {
		return false
	}
	raw, ok := s.Get(formTokenSessionPrefix + key)
	if !ok {
		return false
	}
	expected, _ := raw.(string)
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(expected)) == 1
}
