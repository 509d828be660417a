package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	auth "github.com/goliatone/go-auth-lifecycle"
	"github.com/uptrace/bun"
)

// Store implements the auth storage contracts on top of bun. Every write
// is a single conditional UPDATE and reports the rows it affected.
type Store struct {
	db              *bun.DB
	caseInsensitive bool
}

var (
	_ auth.RecoveryStore   = (*Store)(nil)
	_ auth.InvitationStore = (*Store)(nil)
	_ auth.RememberMeStore = (*Store)(nil)
)

// Option configures a Store
type Option func(*Store)

// WithCaseInsensitiveIdentity makes uniqueness checks and name or email
// lookups ignore case.
func WithCaseInsensitiveIdentity(enabled bool) Option {
	return func(s *Store) {
		s.caseInsensitive = enabled
	}
}

// FromConfig applies the storage related settings of cfg
func FromConfig(cfg auth.Config) Option {
	return WithCaseInsensitiveIdentity(cfg.CaseInsensitiveIdentity)
}

// New returns a store using db
func New(db *bun.DB, opts ...Option) *Store {
	s := &Store{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB returns the underlying connection
func (s *Store) DB() *bun.DB {
	return s.db
}

func (s *Store) users() *bun.SelectQuery {
	return s.db.NewSelect().Model((*auth.User)(nil))
}

func (s *Store) identityCondition(column string) string {
	if s.caseInsensitive {
		return "LOWER(usr." + column + ") = LOWER(?)"
	}
	return "usr." + column + " = ?"
}

// CountByName implements auth.IdentityLookup.
func (s *Store) CountByName(ctx context.Context, name string, excludeID int64) (int, error) {
	return s.users().
		Where(s.identityCondition("user_name"), name).
		Where("usr.id != ?", excludeID).
		Count(ctx)
}

// CountByEmail implements auth.IdentityLookup.
func (s *Store) CountByEmail(ctx context.Context, email string, excludeID int64) (int, error) {
	return s.users().
		Where(s.identityCondition("user_email"), email).
		Where("usr.id != ?", excludeID).
		Count(ctx)
}

// FindByNameOrEmail implements auth.RecoveryStore.
func (s *Store) FindByNameOrEmail(ctx context.Context, identifier string) (*auth.User, error) {
	user := &auth.User{}
	err := s.db.NewSelect().
		Model(user).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where(s.identityCondition("user_name"), identifier).
				WhereOr(s.identityCondition("user_email"), identifier)
		}).
		OrderExpr("usr.id ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return user, nil
}

// FindPasswordResets implements auth.RecoveryStore.
func (s *Store) FindPasswordResets(ctx context.Context, name, hash string) ([]auth.PasswordResetRecord, error) {
	var users []auth.User
	err := s.db.NewSelect().
		Model(&users).
		Column("id", "password_reset_hash", "password_reset_expires_at").
		Where("usr.user_name = ?", name).
		Where("usr.password_reset_hash = ?", hash).
		Where("usr.provider = ?", auth.ProviderDefault).
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	records := make([]auth.PasswordResetRecord, 0, len(users))
	for _, u := range users {
		record := auth.PasswordResetRecord{UserID: u.ID}
		if u.PasswordResetHash != nil {
			record.Hash = *u.PasswordResetHash
		}
		if u.PasswordResetExpiresAt != nil {
			record.ExpiresAt = *u.PasswordResetExpiresAt
		}
		records = append(records, record)
	}
	return records, nil
}

// SavePasswordResetToken implements auth.RecoveryStore.
func (s *Store) SavePasswordResetToken(ctx context.Context, userID int64, hash string, expiresAt time.Time) (int64, error) {
	res, err := s.db.NewUpdate().
		Table("users").
		Set("password_reset_hash = ?", hash).
		Set("password_reset_expires_at = ?", expiresAt.UTC()).
		Where("id = ?", userID).
		Exec(ctx)
	return rowsAffected(res, err)
}

// ResetPasswordWithToken implements auth.RecoveryStore.
func (s *Store) ResetPasswordWithToken(ctx context.Context, name, hash, passwordHash string, now time.Time) (int64, error) {
	res, err := s.db.NewUpdate().
		Table("users").
		Set("password_hash = ?", passwordHash).
		Set("password_reset_hash = NULL").
		Set("password_reset_expires_at = NULL").
		Where("user_name = ?", name).
		Where("password_reset_hash = ?", hash).
		Where("provider = ?", auth.ProviderDefault).
		Where("password_reset_expires_at > ?", now.UTC()).
		Exec(ctx)
	return rowsAffected(res, err)
}

// InsertInvitedUser implements auth.InvitationStore.
func (s *Store) InsertInvitedUser(ctx context.Context, invited auth.NewInvitedUser) error {
	user := &auth.User{
		Name:           invited.Name,
		Email:          invited.Email,
		Role:           auth.RoleMember,
		Provider:       auth.ProviderDefault,
		ActivationHash: auth.StringPtr(invited.ActivationHash),
		Activated:      false,
		CreatedAt:      time.Now().UTC(),
	}
	_, err := s.db.NewInsert().Model(user).Exec(ctx)
	return err
}

// FindIDByName implements auth.InvitationStore.
func (s *Store) FindIDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.users().
		Column("id").
		Where(s.identityCondition("user_name"), name).
		Limit(1).
		Scan(ctx, &id)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return id, nil
}

// CountByIDAndActivationHash implements auth.InvitationStore.
func (s *Store) CountByIDAndActivationHash(ctx context.Context, id int64, hash string) (int, error) {
	return s.users().
		Where("usr.id = ?", id).
		Where("usr.activation_hash = ?", hash).
		Count(ctx)
}

// ActivateInvitedUser implements auth.InvitationStore.
func (s *Store) ActivateInvitedUser(ctx context.Context, a auth.InvitationActivation) (int64, error) {
	res, err := s.db.NewUpdate().
		Table("users").
		Set("user_name = ?", a.Name).
		Set("password_hash = ?", a.PasswordHash).
		Set("activation_hash = NULL").
		Set("data_directory = ?", a.DataDirectory).
		Set("activated = ?", true).
		Where("id = ?", a.UserID).
		Where("activation_hash = ?", a.ActivationHash).
		Exec(ctx)
	return rowsAffected(res, err)
}

// SaveRememberMeToken implements auth.RememberMeStore.
func (s *Store) SaveRememberMeToken(ctx context.Context, userID int64, token string) (int64, error) {
	res, err := s.db.NewUpdate().
		Table("users").
		Set("remember_me_token = ?", token).
		Where("id = ?", userID).
		Exec(ctx)
	return rowsAffected(res, err)
}

// FindByIDAndRememberMeToken implements auth.RememberMeStore.
func (s *Store) FindByIDAndRememberMeToken(ctx context.Context, userID int64, token string) ([]*auth.User, error) {
	var users []*auth.User
	err := s.db.NewSelect().
		Model(&users).
		Where("usr.id = ?", userID).
		Where("usr.remember_me_token = ?", token).
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return users, nil
}

// Settings implements auth.RememberMeStore.
func (s *Store) Settings(ctx context.Context, userID int64) (map[string]string, error) {
	var rows []auth.UserSetting
	err := s.db.NewSelect().
		Model(&rows).
		Where("ust.user_id = ?", userID).
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	settings := make(map[string]string, len(rows))
	for _, row := range rows {
		settings[row.Key] = row.Value
	}
	return settings, nil
}

// PutSetting stores a user preference, replacing any previous value
func (s *Store) PutSetting(ctx context.Context, userID int64, key, value string) error {
	_, err := s.db.NewInsert().
		Model(&auth.UserSetting{UserID: userID, Key: key, Value: value}).
		On("CONFLICT (user_id, setting_key) DO UPDATE").
		Set("setting_value = EXCLUDED.setting_value").
		Exec(ctx)
	return err
}

func rowsAffected(res sql.Result, err error) (int64, error) {
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return auth.ErrRecordNotFound
	}
	return err
}
