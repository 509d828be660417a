package auth

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Mail is a rendered message ready for delivery
type Mail struct {
	To       string
	From     string
	FromName string
	Subject  string
	Body     string
	HTML     bool
}

// Mailer hands a message over for delivery. A nil error means the message
// was accepted, not that it was delivered.
type Mailer interface {
	SendMail(ctx context.Context, mail Mail) error
}

// MailerFunc adapts a function to the Mailer interface.
type MailerFunc func(ctx context.Context, mail Mail) error

// SendMail implements Mailer.
func (f MailerFunc) SendMail(ctx context.Context, mail Mail) error {
	return f(ctx, mail)
}

// CaptchaVerifier checks a captcha answer against a named challenge
type CaptchaVerifier interface {
	Validate(response, challenge string) bool
}

// FormTokenValidator checks an anti-forgery token stored under key
type FormTokenValidator interface {
	ValidateToken(session Session, token, key string) bool
}

// Session holds per visitor values
type Session interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Delete(key string)
}

// CookieJar gives access to the client's cookies
type CookieJar interface {
	Get(name string) string
	Delete(name string)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

func normalizeLogger(l Logger) Logger {
	if l == nil {
		return defLogger{}
	}
	return l
}
