package auth_test

import (
	"context"
	"time"

	auth "github.com/goliatone/go-auth-lifecycle"
	"github.com/stretchr/testify/mock"
)

// MockRecoveryStore implements auth.RecoveryStore
type MockRecoveryStore struct {
	mock.Mock
}

func (m *MockRecoveryStore) FindByNameOrEmail(ctx context.Context, identifier string) (*auth.User, error) {
	args := m.Called(ctx, identifier)
	user, _ := args.Get(0).(*auth.User)
	return user, args.Error(1)
}

func (m *MockRecoveryStore) FindPasswordResets(ctx context.Context, name, hash string) ([]auth.PasswordResetRecord, error) {
	args := m.Called(ctx, name, hash)
	records, _ := args.Get(0).([]auth.PasswordResetRecord)
	return records, args.Error(1)
}

func (m *MockRecoveryStore) SavePasswordResetToken(ctx context.Context, userID int64, hash string, expiresAt time.Time) (int64, error) {
	args := m.Called(ctx, userID, hash, expiresAt)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecoveryStore) ResetPasswordWithToken(ctx context.Context, name, hash, passwordHash string, now time.Time) (int64, error) {
	args := m.Called(ctx, name, hash, passwordHash, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockInvitationStore implements auth.InvitationStore
type MockInvitationStore struct {
	mock.Mock
}

func (m *MockInvitationStore) CountByName(ctx context.Context, name string, excludeID int64) (int, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Int(0), args.Error(1)
}

func (m *MockInvitationStore) CountByEmail(ctx context.Context, email string, excludeID int64) (int, error) {
	args := m.Called(ctx, email, excludeID)
	return args.Int(0), args.Error(1)
}

func (m *MockInvitationStore) InsertInvitedUser(ctx context.Context, user auth.NewInvitedUser) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockInvitationStore) FindIDByName(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvitationStore) CountByIDAndActivationHash(ctx context.Context, id int64, hash string) (int, error) {
	args := m.Called(ctx, id, hash)
	return args.Int(0), args.Error(1)
}

func (m *MockInvitationStore) ActivateInvitedUser(ctx context.Context, activation auth.InvitationActivation) (int64, error) {
	args := m.Called(ctx, activation)
	return args.Get(0).(int64), args.Error(1)
}

// MockRememberMeStore implements auth.RememberMeStore
type MockRememberMeStore struct {
	mock.Mock
}

func (m *MockRememberMeStore) SaveRememberMeToken(ctx context.Context, userID int64, token string) (int64, error) {
	args := m.Called(ctx, userID, token)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRememberMeStore) FindByIDAndRememberMeToken(ctx context.Context, userID int64, token string) ([]*auth.User, error) {
	args := m.Called(ctx, userID, token)
	users, _ := args.Get(0).([]*auth.User)
	return users, args.Error(1)
}

func (m *MockRememberMeStore) Settings(ctx context.Context, userID int64) (map[string]string, error) {
	args := m.Called(ctx, userID)
	settings, _ := args.Get(0).(map[string]string)
	return settings, args.Error(1)
}

// MockMailer implements auth.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendMail(ctx context.Context, mail auth.Mail) error {
	args := m.Called(ctx, mail)
	return args.Error(0)
}

// MockFormTokens implements auth.FormTokenValidator
type MockFormTokens struct {
	mock.Mock
}

func (m *MockFormTokens) ValidateToken(session auth.Session, token, key string) bool {
	args := m.Called(session, token, key)
	return args.Bool(0)
}

type cookieJar struct {
	values  map[string]string
	deleted []string
}

func newCookieJar(values map[string]string) *cookieJar {
	if values == nil {
		values = map[string]string{}
	}
	return &cookieJar{values: values}
}

func (c *cookieJar) Get(name string) string {
	return c.values[name]
}

func (c *cookieJar) Delete(name string) {
	delete(c.values, name)
	c.deleted = append(c.deleted, name)
}

type activityRecorder struct {
	events []auth.ActivityEvent
}

func (r *activityRecorder) Record(_ context.Context, event auth.ActivityEvent) error {
	r.events = append(r.events, event)
	return nil
}

func (r *activityRecorder) types() []auth.ActivityEventType {
	out := make([]auth.ActivityEventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType)
	}
	return out
}

type silentLogger struct{}

func (silentLogger) Debug(string, ...any) {}
func (silentLogger) Info(string, ...any)  {}
func (silentLogger) Warn(string, ...any)  {}
func (silentLogger) Error(string, ...any) {}
