package auth

import (
	"crypto/subtle"
	"strings"
)

const captchaSessionPrefix = "captcha_"

// SessionCaptcha verifies captcha answers against the expected phrase the
// host stored in the session when rendering the challenge. Each phrase is
// single use: it is removed on the first validation attempt.
type SessionCaptcha struct {
	session Session
}

// NewSessionCaptcha returns a verifier bound to s
func NewSessionCaptcha(s Session) *SessionCaptcha {
	return &SessionCaptcha{session: s}
}

// Store saves phrase as the expected answer for challenge
func (c *SessionCaptcha) Store(challenge, phrase string) {
	c.session.Set(captchaSessionPrefix+challenge, phrase)
}

// Validate implements CaptchaVerifier. Comparison ignores case.
func (c *SessionCaptcha) Validate(response, challenge string) bool {
	if c == nil || c.session == nil || response == "" {
		return false
	}
	key := captchaSessionPrefix + challenge
	raw, ok := c.session.Get(key)
	c.session.Delete(key)
	if !ok {
		return false
	}
	expected, _ := raw.(string)
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare(
		[]byte(strings.ToLower(strings.TrimSpace(response))),
		[]byte(strings.ToLower(expected)),
	) == 1
}

// CaptchaFunc adapts a function to CaptchaVerifier
type CaptchaFunc func(response, challenge string) bool

// Validate implements CaptchaVerifier.
func (f CaptchaFunc) Validate(response, challenge string) bool {
	return f(response, challenge)
}
