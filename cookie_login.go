package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	goerrors "github.com/goliatone/go-errors"
	"github.com/golang-jwt/jwt/v5"
)

// RememberMeClaims is the payload of the persistent login cookie. The
// subject is the user id, Token the value stored on the user record.
type RememberMeClaims struct {
	Token string `json:"rmt"`
	jwt.RegisteredClaims
}

// CookieLogin restores a session from a remember-me cookie.
type CookieLogin struct {
	cfg      Config
	store    RememberMeStore
	tokens   *TokenIssuer
	texts    TextProvider
	logger   Logger
	activity ActivitySink
}

// NewCookieLogin returns the cookie re-authentication workflow
func NewCookieLogin(cfg Config, store RememberMeStore) *CookieLogin {
	cfg = cfg.normalize()
	return &CookieLogin{
		cfg:      cfg,
		store:    store,
		tokens:   NewTokenIssuer(cfg.ResetTokenTTL),
		texts:    NewTextCatalog(nil),
		logger:   defLogger{},
		activity: noopActivitySink{},
	}
}

// WithLogger sets the logger
func (c *CookieLogin) WithLogger(logger Logger) *CookieLogin {
	c.logger = normalizeLogger(logger)
	return c
}

// WithActivitySink sets the sink that receives login events
func (c *CookieLogin) WithActivitySink(sink ActivitySink) *CookieLogin {
	c.activity = normalizeActivitySink(sink)
	return c
}

// WithTexts sets the text provider
func (c *CookieLogin) WithTexts(texts TextProvider) *CookieLogin {
	c.texts = normalizeTextProvider(texts)
	return c
}

// WithTokenIssuer replaces the token issuer
func (c *CookieLogin) WithTokenIssuer(tokens *TokenIssuer) *CookieLogin {
	if tokens != nil {
		c.tokens = tokens
	}
	return c
}

// CookieName is the name of the remember-me cookie
func (c *CookieLogin) CookieName() string {
	return c.cfg.RememberMeCookieName
}

// IssueRememberMe stores a fresh remember-me token on the user and returns
// the signed cookie value.
func (c *CookieLogin) IssueRememberMe(ctx context.Context, userID int64) (string, error) {
	if len(c.cfg.RememberMeSigningKey) == 0 {
		return "", goerrors.New("remember-me signing key is not configured", goerrors.CategoryInternal).
			WithCode(goerrors.CodeInternal)
	}

	token, err := c.tokens.Token()
	if err != nil {
		return "", unexpected(err, "failed to generate remember-me token")
	}

	affected, err := c.store.SaveRememberMeToken(ctx, userID, token)
	if err != nil {
		return "", unexpected(err, "failed to store remember-me token", map[string]any{"user_id": userID})
	}
	if affected != 1 {
		return "", goerrors.New("remember-me token was not stored", goerrors.CategoryConflict).
			WithCode(goerrors.CodeConflict).
			WithMetadata(map[string]any{"user_id": userID, "affected": affected})
	}

	now := c.tokens.Now()
	claims := RememberMeClaims{
		Token: token,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.cfg.RememberMeDuration)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.cfg.RememberMeSigningKey))
	if err != nil {
		return "", unexpected(err, "failed to sign remember-me cookie")
	}
	return signed, nil
}

// Restore logs the visitor in from the remember-me cookie. It returns a nil
// Outcome when there is nothing to do: the feature is off, the session is
// already authenticated or no cookie was sent. A rejected cookie is deleted
// and reported as negative feedback; the request carries on anonymous.
func (c *CookieLogin) Restore(ctx context.Context, session Session, cookies CookieJar) (*Outcome, error) {
	if !c.cfg.CookieLoginEnabled || session == nil || cookies == nil {
		return nil, nil
	}
	if PrincipalFromSession(session).LoggedIn {
		return nil, nil
	}
	raw := cookies.Get(c.cfg.RememberMeCookieName)
	if raw == "" {
		return nil, nil
	}

	o := NewOutcome()

	userID, token, err := c.parse(raw)
	if err != nil {
		c.logger.Debug("remember-me cookie rejected: %v", err)
		c.reject(ctx, o, session, cookies, 0)
		return o, nil
	}

	users, err := c.store.FindByIDAndRememberMeToken(ctx, userID, token)
	if err != nil {
		c.logger.Error("remember-me lookup failed for user %d: %v", userID, err)
		o.Fail(http.StatusInternalServerError, c.texts.Text(TextUnknownError))
		return o, unexpected(err, "remember-me lookup failed")
	}
	if len(users) != 1 {
		c.reject(ctx, o, session, cookies, userID)
		return o, nil
	}

	settings, err := c.store.Settings(ctx, userID)
	if err != nil {
		c.logger.Error("failed to load settings for user %d: %v", userID, err)
		o.Fail(http.StatusInternalServerError, c.texts.Text(TextUnknownError))
		return o, unexpected(err, "failed to load user settings")
	}

	HydrateSession(session, users[0], settings)
	AddFeedbackPositive(session, c.texts.Text(TextCookieSuccessful))
	recordActivity(ctx, c.activity, c.logger, ActivityEvent{
		EventType:  ActivityEventCookieLoginSuccess,
		ActorID:    userID,
		UserID:     userID,
		OccurredAt: c.tokens.Now(),
	})

	o.Succeed(c.texts.Text(TextCookieSuccessful))
	return o, nil
}

func (c *CookieLogin) reject(ctx context.Context, o *Outcome, session Session, cookies CookieJar, userID int64) {
	message := c.texts.Text(TextCookieInvalid)
	o.Fail(http.StatusUnauthorized, message)
	AddFeedbackNegative(session, message)
	cookies.Delete(c.cfg.RememberMeCookieName)
	recordActivity(ctx, c.activity, c.logger, ActivityEvent{
		EventType:  ActivityEventCookieLoginFailure,
		UserID:     userID,
		OccurredAt: c.tokens.Now(),
	})
}

func (c *CookieLogin) parse(raw string) (int64, string, error) {
	if len(c.cfg.RememberMeSigningKey) == 0 {
		return 0, "", ErrInvalidRememberMe
	}

	claims := &RememberMeClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return []byte(c.cfg.RememberMeSigningKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.tokens.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return 0, "", errors.Join(ErrInvalidRememberMe, err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 || claims.Token == "" {
		return 0, "", ErrInvalidRememberMe
	}
	return userID, claims.Token, nil
}
