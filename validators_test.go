package auth_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	auth "github.com/goliatone/go-auth-lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func texts() *auth.TextCatalog {
	return auth.NewTextCatalog(nil)
}

func runCheck(check auth.Check) (*auth.Outcome, bool) {
	o := auth.NewOutcome(http.StatusOK)
	return o, check(o)
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "ann@example.com", auth.StripTags(" <b>ann@example.com</b> "))
	assert.Equal(t, "alert(1)", auth.StripTags("<script>alert(1)</script>"))
	assert.Equal(t, "plain", auth.StripTags("plain"))
}

func TestValidator_NameShape(t *testing.T) {
	v := auth.NewValidator(texts(), nil)

	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"empty", "", texts().Text(auth.TextUserNameEmpty)},
		{"too short", "a", texts().Text(auth.TextUserNameBadPattern)},
		{"too long", strings.Repeat("a", 65), texts().Text(auth.TextUserNameBadPattern)},
		{"symbols", "ann-marie", texts().Text(auth.TextUserNameBadPattern)},
		{"valid", "Ann42", ""},
		{"max length", strings.Repeat("b", 64), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, ok := runCheck(v.NameShape(tt.input))
			if tt.message == "" {
				assert.True(t, ok)
				assert.True(t, o.Success())
				return
			}
			assert.False(t, ok)
			assert.Equal(t, http.StatusBadRequest, o.Code())
			assert.Equal(t, []string{tt.message}, o.Errors())
		})
	}
}

func TestValidator_EmailShape(t *testing.T) {
	v := auth.NewValidator(texts(), nil)

	tests := []struct {
		name    string
		email   string
		repeat  string
		message string
	}{
		{"empty", "", "", texts().Text(auth.TextUserEmailEmpty)},
		{"no at", "ann.example.com", "ann.example.com", texts().Text(auth.TextUserEmailBadPattern)},
		{"no tld", "ann@example", "ann@example", texts().Text(auth.TextUserEmailBadPattern)},
		{"repeat differs", "ann@example.com", "ann@example.org", texts().Text(auth.TextUserEmailRepeatWrong)},
		{"valid", "ann.lee+auth@mail.example.com", "ann.lee+auth@mail.example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, ok := runCheck(v.EmailShape(tt.email, tt.repeat))
			if tt.message == "" {
				assert.True(t, ok)
				return
			}
			assert.False(t, ok)
			assert.Equal(t, []string{tt.message}, o.Errors())
		})
	}
}

func TestValidator_PasswordPolicyPrecedence(t *testing.T) {
	v := auth.NewValidator(texts(), nil)

	tests := []struct {
		name     string
		password string
		repeat   string
		message  string
	}{
		{"empty", "", "", texts().Text(auth.TextPasswordEmpty)},
		{"empty repeat", "secret1", "", texts().Text(auth.TextPasswordEmpty)},
		{"mismatch before length", "abc", "abd", texts().Text(auth.TextPasswordRepeatWrong)},
		{"too short", "abc12", "abc12", texts().Text(auth.TextPasswordTooShort)},
		{"minimum", "abc123", "abc123", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, ok := runCheck(v.PasswordPolicy(tt.password, tt.repeat))
			if tt.message == "" {
				assert.True(t, ok)
				return
			}
			assert.False(t, ok)
			assert.Equal(t, http.StatusBadRequest, o.Code())
			assert.Equal(t, []string{tt.message}, o.Errors())
		})
	}
}

func TestValidator_IDShape(t *testing.T) {
	v := auth.NewValidator(texts(), nil)

	var id int64
	_, ok := runCheck(v.IDShape(" 42 ", &id))
	require.True(t, ok)
	assert.Equal(t, int64(42), id)

	o, ok := runCheck(v.IDShape("", &id))
	assert.False(t, ok)
	assert.Equal(t, []string{texts().Text(auth.TextUserIDEmpty)}, o.Errors())

	for _, raw := range []string{"abc", "0", "-3", "4.2", "+42", "0042", "99999999999999999999"} {
		o, ok = runCheck(v.IDShape(raw, nil))
		assert.False(t, ok, raw)
		assert.Equal(t, []string{texts().Text(auth.TextUserIDBadFormat)}, o.Errors(), raw)
	}
}

func TestValidator_AdminGate(t *testing.T) {
	v := auth.NewValidator(texts(), nil)

	_, ok := runCheck(v.AdminGate(auth.Principal{UserID: 1, LoggedIn: true, IsAdmin: true}))
	assert.True(t, ok)

	o, ok := runCheck(v.AdminGate(auth.Principal{UserID: 1, LoggedIn: true}))
	assert.False(t, ok)
	assert.Equal(t, http.StatusForbidden, o.Code())

	o, ok = runCheck(v.AdminGate(auth.Principal{IsAdmin: true}))
	assert.False(t, ok)
	assert.Equal(t, []string{texts().Text(auth.TextInvalidPermissions)}, o.Errors())
}

func TestValidator_Uniqueness(t *testing.T) {
	ctx := context.Background()
	lookup := new(MockInvitationStore)
	lookup.On("CountByName", ctx, "ann", int64(0)).Return(1, nil)
	lookup.On("CountByName", ctx, "ann", int64(7)).Return(0, nil)
	lookup.On("CountByEmail", ctx, "ann@example.com", int64(0)).Return(1, nil)

	v := auth.NewValidator(texts(), lookup).WithLogger(silentLogger{})

	var lookupErr error
	o, ok := runCheck(v.NameUnique(ctx, "ann", 0, &lookupErr))
	assert.False(t, ok)
	assert.Equal(t, []string{texts().Text(auth.TextUserNameAlreadyTaken)}, o.Errors())

	_, ok = runCheck(v.NameUnique(ctx, "ann", 7, &lookupErr))
	assert.True(t, ok, "own record does not conflict")

	o, ok = runCheck(v.EmailUnique(ctx, "ann@example.com", 0, &lookupErr))
	assert.False(t, ok)
	assert.Equal(t, []string{texts().Text(auth.TextUserEmailAlreadyTaken)}, o.Errors())

	assert.NoError(t, lookupErr)
	lookup.AssertExpectations(t)
}

func TestValidator_UniquenessLookupFailure(t *testing.T) {
	ctx := context.Background()
	lookup := new(MockInvitationStore)
	lookup.On("CountByEmail", ctx, mock.Anything, int64(0)).Return(0, assert.AnError)

	v := auth.NewValidator(texts(), lookup).WithLogger(silentLogger{})

	var lookupErr error
	o, ok := runCheck(v.EmailUnique(ctx, "ann@example.com", 0, &lookupErr))

	assert.False(t, ok)
	assert.Equal(t, http.StatusInternalServerError, o.Code())
	assert.Equal(t, []string{texts().Text(auth.TextUnknownError)}, o.Errors())
	assert.Error(t, lookupErr)
}

func TestTextCatalog(t *testing.T) {
	c := auth.NewTextCatalog(map[string]string{auth.TextInvalidToken: "Jeton invalide"})

	assert.Equal(t, "Jeton invalide", c.Text(auth.TextInvalidToken))
	assert.Equal(t, "Invalid request", c.Text(auth.TextInvalidRequest))
	assert.Equal(t, "SOMETHING_ELSE", c.Text("SOMETHING_ELSE"))

	var nilCatalog *auth.TextCatalog
	assert.Equal(t, "Invalid request", nilCatalog.Text(auth.TextInvalidRequest))

	fn := auth.TextProviderFunc(func(key string) string { return "x" + key })
	assert.Equal(t, "xA", fn.Text("A"))
}
