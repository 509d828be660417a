package auth

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	namePattern  = regexp.MustCompile(`^[a-zA-Z0-9]{2,64}$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`)
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	idPattern    = regexp.MustCompile(`^[1-9][0-9]*$`)
)

var (
	nameRules     = []validation.Rule{validation.Required, validation.Match(namePattern)}
	emailRules    = []validation.Rule{validation.Required, validation.Length(3, 254), validation.Match(emailPattern)}
	passwordRules = []validation.Rule{validation.Required, validation.Length(MinPasswordLength, 0)}
	idRules       = []validation.Rule{validation.Required, validation.Match(idPattern)}
)

// StripTags removes markup from user supplied input
func StripTags(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
}

// Validator builds the checks shared by the workflows. Messages come from
// the text provider; uniqueness is answered by the identity lookup.
type Validator struct {
	texts  TextProvider
	lookup IdentityLookup
	logger Logger
}

// NewValidator returns a validator. lookup may be nil when no uniqueness
// check is needed.
func NewValidator(texts TextProvider, lookup IdentityLookup) *Validator {
	return &Validator{
		texts:  normalizeTextProvider(texts),
		lookup: lookup,
		logger: defLogger{},
	}
}

// WithLogger sets the logger
func (v *Validator) WithLogger(logger Logger) *Validator {
	v.logger = normalizeLogger(logger)
	return v
}

func (v *Validator) text(key string) string {
	return v.texts.Text(key)
}

// NameShape checks the user name is present and matches the allowed pattern
func (v *Validator) NameShape(name string) Check {
	return func(o *Outcome) bool {
		if !o.AssertTrue(name != "", http.StatusBadRequest, v.text(TextUserNameEmpty)) {
			return false
		}
		return o.AssertTrue(validation.Validate(name, nameRules...) == nil, http.StatusBadRequest, v.text(TextUserNameBadPattern))
	}
}

// NameUnique checks no other user holds name. A lookup failure is stored
// in errp and stops the chain.
func (v *Validator) NameUnique(ctx context.Context, name string, excludeID int64, errp *error) Check {
	return func(o *Outcome) bool {
		count, ok := v.count(ctx, o, errp, "name", func() (int, error) {
			return v.lookup.CountByName(ctx, name, excludeID)
		})
		if !ok {
			return false
		}
		return o.AssertTrue(count == 0, http.StatusBadRequest, v.text(TextUserNameAlreadyTaken))
	}
}

// EmailShape checks the email is present and well formed, and equal to
// repeat.
func (v *Validator) EmailShape(email, repeat string) Check {
	return func(o *Outcome) bool {
		if !o.AssertTrue(email != "", http.StatusBadRequest, v.text(TextUserEmailEmpty)) {
			return false
		}
		if !o.AssertTrue(validation.Validate(email, emailRules...) == nil, http.StatusBadRequest, v.text(TextUserEmailBadPattern)) {
			return false
		}
		return o.AssertTrue(email == repeat, http.StatusBadRequest, v.text(TextUserEmailRepeatWrong))
	}
}

// EmailUnique checks no other user holds email
func (v *Validator) EmailUnique(ctx context.Context, email string, excludeID int64, errp *error) Check {
	return func(o *Outcome) bool {
		count, ok := v.count(ctx, o, errp, "email", func() (int, error) {
			return v.lookup.CountByEmail(ctx, email, excludeID)
		})
		if !ok {
			return false
		}
		return o.AssertTrue(count == 0, http.StatusBadRequest, v.text(TextUserEmailAlreadyTaken))
	}
}

// PasswordPolicy checks the password is present, long enough and repeated.
func (v *Validator) PasswordPolicy(password, repeat string) Check {
	return func(o *Outcome) bool {
		if !o.AssertTrue(password != "" && repeat != "", http.StatusBadRequest, v.text(TextPasswordEmpty)) {
			return false
		}
		if !o.AssertTrue(password == repeat, http.StatusBadRequest, v.text(TextPasswordRepeatWrong)) {
			return false
		}
		return o.AssertTrue(validation.Validate(password, passwordRules...) == nil, http.StatusBadRequest, v.text(TextPasswordTooShort))
	}
}

// IDShape checks raw is a positive decimal integer without sign or leading
// zeros and stores it in dst.
func (v *Validator) IDShape(raw string, dst *int64) Check {
	return func(o *Outcome) bool {
		raw = strings.TrimSpace(raw)
		if !o.AssertTrue(raw != "", http.StatusBadRequest, v.text(TextUserIDEmpty)) {
			return false
		}
		var id int64
		err := validation.Validate(raw, idRules...)
		if err == nil {
			id, err = strconv.ParseInt(raw, 10, 64)
		}
		if !o.AssertTrue(err == nil && id > 0, http.StatusBadRequest, v.text(TextUserIDBadFormat)) {
			return false
		}
		if dst != nil {
			*dst = id
		}
		return true
	}
}

// AdminGate checks the principal is logged in and an administrator.
func (v *Validator) AdminGate(p Principal) Check {
	return func(o *Outcome) bool {
		return o.AssertTrue(p.LoggedIn && p.IsAdmin, http.StatusForbidden, v.text(TextInvalidPermissions))
	}
}

func (v *Validator) count(ctx context.Context, o *Outcome, errp *error, field string, fn func() (int, error)) (int, bool) {
	if v.lookup == nil {
		return 0, true
	}
	count, err := fn()
	if err != nil {
		v.logger.Error("uniqueness lookup on %s failed: %v", field, err)
		o.Fail(http.StatusInternalServerError, v.text(TextUnknownError))
		if errp != nil {
			*errp = unexpected(err, "identity lookup failed", map[string]any{"field": field})
		}
		return 0, false
	}
	return count, true
}
