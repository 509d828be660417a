package auth

import (
	"time"

	"github.com/goliatone/go-router"
)

// SessionResolver returns the session bound to the request
type SessionResolver func(c router.Context) (Session, error)

// LocalsSession resolves the session the host stored in the request locals
// under key.
func LocalsSession(key string) SessionResolver {
	return func(c router.Context) (Session, error) {
		s, ok := c.Locals(key).(Session)
		if !ok || s == nil {
			return nil, ErrRecordNotFound
		}
		return s, nil
	}
}

// CookieLoginConfig configures CookieLoginMiddleware
type CookieLoginConfig struct {
	CookieLogin *CookieLogin
	Sessions    SessionResolver
	Logger      Logger
	// Filter skips the middleware when it returns true
	Filter func(c router.Context) bool
}

// CookieLoginMiddleware attempts a remember-me login once per request
// before the handler runs. Failures never stop the request.
func CookieLoginMiddleware(cfg CookieLoginConfig) router.MiddlewareFunc {
	logger := normalizeLogger(cfg.Logger)
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.CookieLogin == nil || cfg.Sessions == nil {
				return ctx.Next()
			}
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			session, err := cfg.Sessions(ctx)
			if err != nil {
				logger.Debug("cookie login skipped, no session: %v", err)
				return ctx.Next()
			}

			if _, err := cfg.CookieLogin.Restore(ctx.Context(), session, RouterCookies(ctx)); err != nil {
				logger.Error("cookie login failed: %v", err)
			}
			return ctx.Next()
		}
	}
}

// SetRememberMeCookie writes the signed remember-me credential
func (c *CookieLogin) SetRememberMeCookie(ctx router.Context, value string) {
	ctx.Cookie(&router.Cookie{
		Name:     c.cfg.RememberMeCookieName,
		Value:    value,
		Expires:  c.tokens.Now().Add(c.cfg.RememberMeDuration),
		HTTPOnly: true,
	})
}

type routerCookies struct {
	ctx router.Context
}

// RouterCookies adapts a router context to CookieJar
func RouterCookies(ctx router.Context) CookieJar {
	return routerCookies{ctx: ctx}
}

func (r routerCookies) Get(name string) string {
	return r.ctx.Cookies(name)
}

func (r routerCookies) Delete(name string) {
	r.ctx.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
	})
}
