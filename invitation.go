package auth

import (
	"context"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// InviteMessage is the input of an administrator's invitation
type InviteMessage struct {
	Email        string `json:"email"`
	FormToken    string `json:"token"`
	FormTokenKey string `json:"-"`
}

// CompleteRegistrationMessage is the input the invited user submits
type CompleteRegistrationMessage struct {
	UserID         string `json:"user_id"`
	Name           string `json:"user_name"`
	Password       string `json:"password"`
	PasswordRepeat string `json:"password_repeat"`
	ActivationHash string `json:"activation_hash"`
}

// Invitation drives admin issued account creation. An invited account has
// no password and a pending activation hash until the recipient completes
// registration. Invitation links do not expire.
type Invitation struct {
	cfg        Config
	store      InvitationStore
	mailer     Mailer
	formTokens FormTokenValidator
	composer   *MailComposer
	builtIn    bool
	tokens     *TokenIssuer
	texts      TextProvider
	validator  *Validator
	logger     Logger
	activity   ActivitySink
}

// NewInvitation wires the workflow. A nil composer uses the built in
// template.
func NewInvitation(cfg Config, store InvitationStore, mailer Mailer, formTokens FormTokenValidator, composer *MailComposer) *Invitation {
	cfg = cfg.normalize()
	texts := NewTextCatalog(nil)
	builtIn := composer == nil
	if builtIn {
		composer = defaultComposer(cfg, texts)
	}
	return &Invitation{
		cfg:        cfg,
		store:      store,
		mailer:     mailer,
		formTokens: formTokens,
		composer:   composer,
		builtIn:    builtIn,
		tokens:     NewTokenIssuer(cfg.ResetTokenTTL),
		texts:      texts,
		validator:  NewValidator(texts, store),
		logger:     defLogger{},
		activity:   noopActivitySink{},
	}
}

// WithLogger sets the logger
func (i *Invitation) WithLogger(logger Logger) *Invitation {
	i.logger = normalizeLogger(logger)
	i.validator.WithLogger(i.logger)
	return i
}

// WithActivitySink sets the sink that receives invitation events
func (i *Invitation) WithActivitySink(sink ActivitySink) *Invitation {
	i.activity = normalizeActivitySink(sink)
	return i
}

// WithTexts sets the text provider. The built in composer is rebuilt so
// mail subjects and bodies follow the new texts.
func (i *Invitation) WithTexts(texts TextProvider) *Invitation {
	i.texts = normalizeTextProvider(texts)
	if i.builtIn {
		i.composer = defaultComposer(i.cfg, i.texts)
	}
	i.validator = NewValidator(i.texts, i.store).WithLogger(i.logger)
	return i
}

// WithTokenIssuer replaces the token issuer
func (i *Invitation) WithTokenIssuer(tokens *TokenIssuer) *Invitation {
	if tokens != nil {
		i.tokens = tokens
	}
	return i
}

func (i *Invitation) text(key string) string {
	return i.texts.Text(key)
}

// InviteNewUser creates a pending account for msg.Email under a temporary
// name and mails the activation link. The caller must present a valid form
// token and be a logged in administrator.
//
// The account is kept when the mail cannot be sent; an admin can invite
// again.
func (i *Invitation) InviteNewUser(ctx context.Context, session Session, msg InviteMessage) (*Outcome, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during invitation")
	default:
	}

	o := NewOutcome()
	if !i.enabled(o) {
		return o, nil
	}

	principal := PrincipalFromSession(session)
	ok := RunChain(o,
		func(o *Outcome) bool {
			valid := i.formTokens != nil && i.formTokens.ValidateToken(session, msg.FormToken, msg.FormTokenKey)
			return o.AssertTrue(valid, http.StatusMethodNotAllowed, i.text(TextInvalidToken))
		},
		i.validator.AdminGate(principal),
	)
	if !ok {
		return o, nil
	}

	email := StripTags(msg.Email)
	name := temporaryUserName()

	var lookupErr error
	ok = RunChain(o,
		i.validator.NameShape(name),
		i.validator.NameUnique(ctx, name, 0, &lookupErr),
		i.validator.EmailShape(email, email),
		i.validator.EmailUnique(ctx, email, 0, &lookupErr),
	)
	if lookupErr != nil {
		return o, lookupErr
	}
	if !ok {
		return o, nil
	}

	activationHash, err := i.tokens.Token()
	if err != nil {
		return i.failUnexpected(o, err, "failed to generate activation hash")
	}

	err = i.store.InsertInvitedUser(ctx, NewInvitedUser{
		Name:           name,
		Email:          email,
		ActivationHash: activationHash,
	})
	if err != nil {
		i.logger.Error("failed to insert invited user: %v", err)
		o.Fail(http.StatusInternalServerError, i.text(TextNewAccountCreationFailed))
		return o, nil
	}

	userID, err := i.store.FindIDByName(ctx, name)
	if err != nil {
		i.logger.Error("failed to read back invited user %q: %v", name, err)
		o.Fail(http.StatusInternalServerError, i.text(TextUnknownError))
		return o, nil
	}

	recordActivity(ctx, i.activity, i.logger, ActivityEvent{
		EventType:  ActivityEventUserInvited,
		ActorID:    principal.UserID,
		UserID:     userID,
		OccurredAt: i.tokens.Now(),
	})

	mail, err := i.composer.Invitation(email, userID, activationHash)
	if err == nil {
		err = i.mailer.SendMail(ctx, mail)
	}
	if err != nil {
		i.logger.Error("invitation mail for user %d not accepted: %v", userID, err)
		o.Fail(http.StatusInternalServerError, i.text(TextNewAccountMailSendingError))
		return o, nil
	}

	o.Succeed(i.text(TextInvitationSentSuccess))
	return o, nil
}

// VerifyInvitedUser checks that id and activation hash match exactly one
// pending account. It does not modify the account.
func (i *Invitation) VerifyInvitedUser(ctx context.Context, userID, activationHash string) (*Outcome, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during invitation verification")
	default:
	}

	o := NewOutcome()
	if !i.enabled(o) {
		return o, nil
	}

	var id int64
	ok := RunChain(o,
		i.validator.IDShape(userID, &id),
		func(o *Outcome) bool {
			return o.AssertTrue(activationHash != "", http.StatusNotFound, i.text(TextNewAccountActivationFailed))
		},
	)
	if !ok {
		return o, nil
	}

	count, err := i.store.CountByIDAndActivationHash(ctx, id, activationHash)
	if err != nil {
		return i.failUnexpected(o, err, "failed to verify invitation")
	}
	if !o.AssertTrue(count == 1, http.StatusNotFound, i.text(TextNewAccountActivationFailed)) {
		return o, nil
	}

	o.Succeed(i.text(TextInvitationValidated))
	return o, nil
}

// CompleteRegistration sets the chosen name and password and activates
// the account, consuming the activation hash in the same write. A wrong
// id or an already used hash fails without touching the account.
func (i *Invitation) CompleteRegistration(ctx context.Context, msg CompleteRegistrationMessage) (*Outcome, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during registration")
	default:
	}

	o := NewOutcome()
	if !i.enabled(o) {
		return o, nil
	}

	name := StripTags(msg.Name)

	var id int64
	var lookupErr error
	ok := RunChain(o,
		i.validator.IDShape(msg.UserID, &id),
		i.validator.NameShape(name),
		func(o *Outcome) bool {
			// the id is only known once IDShape ran
			return i.validator.NameUnique(ctx, name, id, &lookupErr)(o)
		},
		i.validator.PasswordPolicy(msg.Password, msg.PasswordRepeat),
	)
	if lookupErr != nil {
		return o, lookupErr
	}
	if !ok {
		return o, nil
	}

	passwordHash, err := HashPassword(msg.Password, i.cfg.BcryptCost)
	if err != nil {
		return i.failUnexpected(o, err, "failed to hash password")
	}

	directory, err := i.tokens.DataDirectoryToken()
	if err != nil {
		return i.failUnexpected(o, err, "failed to generate data directory")
	}

	affected, err := i.store.ActivateInvitedUser(ctx, InvitationActivation{
		UserID:         id,
		ActivationHash: msg.ActivationHash,
		Name:           name,
		PasswordHash:   passwordHash,
		DataDirectory:  directory,
	})
	if err != nil {
		return i.failUnexpected(o, err, "failed to activate invited user")
	}
	if !o.AssertTrue(affected == 1, http.StatusMethodNotAllowed, i.text(TextNewAccountActivationFailed)) {
		i.logger.Info("activation rejected for user %d: %d rows affected", id, affected)
		return o, nil
	}

	recordActivity(ctx, i.activity, i.logger, ActivityEvent{
		EventType:  ActivityEventInvitationCompleted,
		ActorID:    id,
		UserID:     id,
		OccurredAt: i.tokens.Now(),
	})

	o.Succeed(i.text(TextNewAccountActivationOK))
	return o, nil
}

func (i *Invitation) enabled(o *Outcome) bool {
	return o.AssertTrue(i.cfg.InvitationEnabled, http.StatusNotFound, i.text(TextInvalidRequest))
}

func (i *Invitation) failUnexpected(o *Outcome, err error, message string) (*Outcome, error) {
	i.logger.Error("%s: %v", message, err)
	o.Fail(http.StatusInternalServerError, i.text(TextUnknownError))
	return o, unexpected(err, message)
}

// temporaryUserName returns "user" followed by 13 hex characters.
func temporaryUserName() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "user" + id[:13]
}
