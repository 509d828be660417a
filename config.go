package auth

import (
	"time"

	"github.com/caarlos0/env/v10"
	goerrors "github.com/goliatone/go-errors"
)

// ResetTokenTTL is how long a password reset link stays usable
const ResetTokenTTL = time.Hour

// MinPasswordLength is the shortest password the policy accepts
const MinPasswordLength = 6

// Config holds the settings shared by the workflows. It is passed to each
// workflow at construction, never read from globals.
type Config struct {
	RecoveryEnabled    bool `env:"AUTH_RECOVERY_ENABLED" envDefault:"true"`
	InvitationEnabled  bool `env:"AUTH_INVITATION_ENABLED" envDefault:"true"`
	CookieLoginEnabled bool `env:"AUTH_COOKIE_LOGIN_ENABLED" envDefault:"true"`

	AppName string `env:"AUTH_APP_NAME" envDefault:"Lifecycle"`
	AppURL  string `env:"AUTH_APP_URL" envDefault:"http://localhost:8080"`

	AppCopyright string `env:"AUTH_APP_COPYRIGHT"`

	ResetVerifyURL  string `env:"AUTH_RESET_VERIFY_URL" envDefault:"/login/verify-password-reset"`
	InviteVerifyURL string `env:"AUTH_INVITE_VERIFY_URL" envDefault:"/register/verify-invitation"`

	ResetMailFromEmail string `env:"AUTH_RESET_MAIL_FROM_EMAIL" envDefault:"no-reply@example.com"`
	ResetMailFromName  string `env:"AUTH_RESET_MAIL_FROM_NAME" envDefault:"Lifecycle"`
	ResetMailSubject   string `env:"AUTH_RESET_MAIL_SUBJECT" envDefault:"Password reset"`
	ResetMailContent   string `env:"AUTH_RESET_MAIL_CONTENT" envDefault:"Please click on this link to reset your password:"`

	InviteMailFromEmail string `env:"AUTH_INVITE_MAIL_FROM_EMAIL" envDefault:"no-reply@example.com"`
	InviteMailFromName  string `env:"AUTH_INVITE_MAIL_FROM_NAME" envDefault:"Lifecycle"`

	ResetTokenTTL time.Duration `env:"AUTH_RESET_TOKEN_TTL" envDefault:"1h"`
	BcryptCost    int           `env:"AUTH_BCRYPT_COST" envDefault:"12"`

	// CaseInsensitiveIdentity makes name and email uniqueness checks ignore case
	CaseInsensitiveIdentity bool `env:"AUTH_CASE_INSENSITIVE_IDENTITY" envDefault:"false"`

	RememberMeCookieName string        `env:"AUTH_REMEMBER_ME_COOKIE" envDefault:"remember_me"`
	RememberMeSigningKey string        `env:"AUTH_REMEMBER_ME_SIGNING_KEY"`
	RememberMeDuration   time.Duration `env:"AUTH_REMEMBER_ME_DURATION" envDefault:"336h"`
}

// DefaultConfig returns the configuration used when nothing is set in the
// environment.
func DefaultConfig() Config {
	return Config{
		RecoveryEnabled:      true,
		InvitationEnabled:    true,
		CookieLoginEnabled:   true,
		AppName:              "Lifecycle",
		AppURL:               "http://localhost:8080",
		ResetVerifyURL:       "/login/verify-password-reset",
		InviteVerifyURL:      "/register/verify-invitation",
		ResetMailFromEmail:   "no-reply@example.com",
		ResetMailFromName:    "Lifecycle",
		ResetMailSubject:     "Password reset",
		ResetMailContent:     "Please click on this link to reset your password:",
		InviteMailFromEmail:  "no-reply@example.com",
		InviteMailFromName:   "Lifecycle",
		ResetTokenTTL:        ResetTokenTTL,
		BcryptCost:           DefaultBcryptCost,
		RememberMeCookieName: "remember_me",
		RememberMeDuration:   14 * 24 * time.Hour,
	}
}

// LoadConfig reads the configuration from environment variables
func LoadConfig() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, goerrors.Wrap(err, goerrors.CategoryValidation, "parse auth config").
			WithCode(goerrors.CodeBadRequest)
	}
	return cfg.normalize(), nil
}

func (c Config) normalize() Config {
	if c.ResetTokenTTL <= 0 {
		c.ResetTokenTTL = ResetTokenTTL
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = DefaultBcryptCost
	}
	if c.RememberMeCookieName == "" {
		c.RememberMeCookieName = "remember_me"
	}
	if c.RememberMeDuration <= 0 {
		c.RememberMeDuration = 14 * 24 * time.Hour
	}
	return c
}
