package auth

import (
	"context"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// DefaultCaptchaChallenge names the captcha shown on the recovery form
const DefaultCaptchaChallenge = "recovery"

// RequestResetMessage is the input of the password reset request
type RequestResetMessage struct {
	Identifier       string `json:"identifier" doc:"User name or email"`
	Captcha          string `json:"captcha" doc:"Captcha answer"`
	CaptchaChallenge string `json:"-"`
}

// CommitPasswordMessage is the input of the password change
type CommitPasswordMessage struct {
	Name           string `json:"user_name"`
	Token          string `json:"token"`
	Password       string `json:"password"`
	PasswordRepeat string `json:"password_repeat"`
}

// Recovery drives the password reset workflow: request, link verification
// and password change. A user moves from normal to reset requested when a
// token is stored, and back once the token is consumed.
type Recovery struct {
	cfg       Config
	store     RecoveryStore
	mailer    Mailer
	captcha   CaptchaVerifier
	composer  *MailComposer
	builtIn   bool
	tokens    *TokenIssuer
	texts     TextProvider
	validator *Validator
	logger    Logger
	activity  ActivitySink
}

// NewRecovery wires the workflow. A nil captcha rejects every request. A
// nil composer uses the built in templates.
func NewRecovery(cfg Config, store RecoveryStore, mailer Mailer, captcha CaptchaVerifier, composer *MailComposer) *Recovery {
	cfg = cfg.normalize()
	texts := NewTextCatalog(nil)
	builtIn := composer == nil
	if builtIn {
		composer = defaultComposer(cfg, texts)
	}
	return &Recovery{
		cfg:       cfg,
		store:     store,
		mailer:    mailer,
		captcha:   captcha,
		composer:  composer,
		builtIn:   builtIn,
		tokens:    NewTokenIssuer(cfg.ResetTokenTTL),
		texts:     texts,
		validator: NewValidator(texts, nil),
		logger:    defLogger{},
		activity:  noopActivitySink{},
	}
}

// WithLogger sets the logger
func (r *Recovery) WithLogger(logger Logger) *Recovery {
	r.logger = normalizeLogger(logger)
	r.validator.WithLogger(r.logger)
	return r
}

// WithActivitySink sets the sink that receives recovery events
func (r *Recovery) WithActivitySink(sink ActivitySink) *Recovery {
	r.activity = normalizeActivitySink(sink)
	return r
}

// WithTexts sets the text provider. The built in composer is rebuilt so
// mail subjects and bodies follow the new texts.
func (r *Recovery) WithTexts(texts TextProvider) *Recovery {
	r.texts = normalizeTextProvider(texts)
	if r.builtIn {
		r.composer = defaultComposer(r.cfg, r.texts)
	}
	r.validator = NewValidator(r.texts, nil).WithLogger(r.logger)
	return r
}

// WithTokenIssuer replaces the token issuer
func (r *Recovery) WithTokenIssuer(tokens *TokenIssuer) *Recovery {
	if tokens != nil {
		r.tokens = tokens
	}
	return r
}

func (r *Recovery) text(key string) string {
	return r.texts.Text(key)
}

// RequestReset issues a reset token for the account named by identifier
// and mails the verification link. The response is the same whether or
// not the account exists.
func (r *Recovery) RequestReset(ctx context.Context, msg RequestResetMessage) (*Outcome, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during password reset request")
	default:
	}

	o := NewOutcome(http.StatusOK)
	if !r.enabled(o) {
		return o, nil
	}

	challenge := msg.CaptchaChallenge
	if challenge == "" {
		challenge = DefaultCaptchaChallenge
	}
	identifier := strings.TrimSpace(msg.Identifier)

	ok := RunChain(o,
		func(o *Outcome) bool {
			valid := r.captcha != nil && r.captcha.Validate(msg.Captcha, challenge)
			return o.AssertTrue(valid, http.StatusBadRequest, r.text(TextInvalidCaptcha))
		},
		func(o *Outcome) bool {
			return o.AssertTrue(identifier != "", http.StatusBadRequest, r.text(TextRecoveryNameEmailEmpty))
		},
	)
	if !ok {
		return o, nil
	}

	user, err := r.store.FindByNameOrEmail(ctx, identifier)
	switch {
	case IsRecordNotFound(err):
		r.logger.Debug("password reset requested for unknown account")
	case err != nil:
		return r.failUnexpected(o, err, "failed to retrieve user for password reset")
	case user.Provider != ProviderDefault:
		r.logger.Debug("password reset ignored for %s provider account", user.Provider)
	default:
		if err := r.issue(ctx, o, user); err != nil {
			return o, err
		}
	}

	o.Succeed(r.text(TextRecoverySuccessful))
	r.logger.Debug("password reset request outcome: %s", print.MaybePrettyJSON(o.View()))
	return o, nil
}

func (r *Recovery) issue(ctx context.Context, o *Outcome, user *User) error {
	token, err := r.tokens.ResetToken()
	if err != nil {
		_, err = r.failUnexpected(o, err, "failed to generate password reset token")
		return err
	}

	affected, err := r.store.SavePasswordResetToken(ctx, user.ID, token.Value, token.ExpiresAt)
	if err != nil {
		_, err = r.failUnexpected(o, err, "failed to store password reset token")
		return err
	}
	if !o.AssertTrue(affected == 1, http.StatusBadRequest, r.text(TextRecoveryWriteTokenFail)) {
		r.logger.Warn("password reset token write touched %d rows for user %d", affected, user.ID)
		return nil
	}

	recordActivity(ctx, r.activity, r.logger, ActivityEvent{
		EventType:  ActivityEventPasswordResetRequested,
		UserID:     user.ID,
		OccurredAt: r.tokens.Now(),
		Metadata:   map[string]any{"expires_at": token.ExpiresAt},
	})

	mail := r.composer.PasswordReset(user.Email, user.Name, token.Value)
	if err := r.mailer.SendMail(ctx, mail); err != nil {
		r.logger.Error("password reset mail for user %d not accepted: %v", user.ID, err)
		o.Fail(http.StatusInternalServerError, r.text(TextRecoveryMailSendingError))
	}
	return nil
}

// VerifyResetLink checks that name and token identify exactly one pending
// reset that has not expired. It does not modify the account.
func (r *Recovery) VerifyResetLink(ctx context.Context, name, token string) (*Outcome, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during reset link verification")
	default:
	}

	o := NewOutcome()
	if !r.enabled(o) {
		return o, nil
	}

	if !o.AssertTrue(name != "" && token != "", http.StatusBadRequest, r.text(TextRecoveryNameHashNotFound)) {
		return o, nil
	}

	records, err := r.store.FindPasswordResets(ctx, name, token)
	if err != nil {
		return r.failUnexpected(o, err, "failed to look up password reset")
	}

	// unknown name and wrong token share one message
	if !o.AssertTrue(len(records) == 1, http.StatusBadRequest, r.text(TextRecoveryNameHashNotFound)) {
		return o, nil
	}

	if !o.AssertFalse(records[0].Expired(r.tokens.Now()), http.StatusBadRequest, r.text(TextRecoveryLinkExpired)) {
		return o, nil
	}

	o.Succeed(r.text(TextRecoveryLinkValidated))
	return o, nil
}

// CommitNewPassword sets the new password and consumes the reset token in
// one conditional write. A token that was already used, or lost a race to
// a concurrent request, fails the same way as a wrong one.
func (r *Recovery) CommitNewPassword(ctx context.Context, msg CommitPasswordMessage) (*Outcome, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during password change")
	default:
	}

	o := NewOutcome()
	if !r.enabled(o) {
		return o, nil
	}

	ok := RunChain(o,
		func(o *Outcome) bool {
			return o.AssertTrue(msg.Name != "", http.StatusBadRequest, r.text(TextUserNameEmpty))
		},
		func(o *Outcome) bool {
			return o.AssertTrue(msg.Token != "", http.StatusBadRequest, r.text(TextPasswordChangeBadToken))
		},
		r.validator.PasswordPolicy(msg.Password, msg.PasswordRepeat),
	)
	if !ok {
		return o, nil
	}

	hash, err := HashPassword(msg.Password, r.cfg.BcryptCost)
	if err != nil {
		return r.failUnexpected(o, err, "failed to hash password")
	}

	affected, err := r.store.ResetPasswordWithToken(ctx, msg.Name, msg.Token, hash, r.tokens.Now())
	if err != nil {
		return r.failUnexpected(o, err, "failed to update password")
	}
	if !o.AssertTrue(affected == 1, http.StatusInternalServerError, r.text(TextPasswordChangeFailed)) {
		r.logger.Info("password change rejected for %q: %d rows affected", msg.Name, affected)
		return o, nil
	}

	recordActivity(ctx, r.activity, r.logger, ActivityEvent{
		EventType:  ActivityEventPasswordResetSuccess,
		OccurredAt: r.tokens.Now(),
		Metadata:   map[string]any{"user_name": msg.Name},
	})

	o.Succeed(r.text(TextPasswordChangeOK))
	return o, nil
}

func (r *Recovery) enabled(o *Outcome) bool {
	return o.AssertTrue(r.cfg.RecoveryEnabled, http.StatusNotFound, r.text(TextInvalidRequest))
}

func (r *Recovery) failUnexpected(o *Outcome, err error, message string) (*Outcome, error) {
	r.logger.Error("%s: %v", message, err)
	o.Fail(http.StatusInternalServerError, r.text(TextUnknownError))
	return o, unexpected(err, message)
}
