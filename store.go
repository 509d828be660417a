package auth

import (
	"context"
	"time"
)

// IdentityLookup answers the uniqueness questions asked by the
// validation chain. excludeID skips the record being updated so a user's
// own unchanged value never counts as a conflict; pass 0 for inserts.
type IdentityLookup interface {
	CountByName(ctx context.Context, name string, excludeID int64) (int, error)
	CountByEmail(ctx context.Context, email string, excludeID int64) (int, error)
}

// RecoveryStore is the storage contract used by the recovery workflow.
//
// Write methods return the number of rows affected. Callers treat anything
// other than one as a failed write.
type RecoveryStore interface {
	// FindByNameOrEmail returns ErrRecordNotFound when no user matches.
	FindByNameOrEmail(ctx context.Context, identifier string) (*User, error)
	// FindPasswordResets returns every DEFAULT provider user matching both
	// name and reset hash.
	FindPasswordResets(ctx context.Context, name, hash string) ([]PasswordResetRecord, error)
	SavePasswordResetToken(ctx context.Context, userID int64, hash string, expiresAt time.Time) (int64, error)
	// ResetPasswordWithToken sets the password hash and clears the reset
	// hash and expiry, filtered by name, current reset hash and an expiry
	// later than now.
	ResetPasswordWithToken(ctx context.Context, name, hash, passwordHash string, now time.Time) (int64, error)
}

// InvitationStore is the storage contract used by the invitation workflow.
type InvitationStore interface {
	IdentityLookup
	InsertInvitedUser(ctx context.Context, user NewInvitedUser) error
	// FindIDByName returns ErrRecordNotFound when no user matches.
	FindIDByName(ctx context.Context, name string) (int64, error)
	CountByIDAndActivationHash(ctx context.Context, id int64, hash string) (int, error)
	// ActivateInvitedUser applies the activation filtered by id and current
	// activation hash, clearing the hash in the same statement.
	ActivateInvitedUser(ctx context.Context, activation InvitationActivation) (int64, error)
}

// RememberMeStore is the storage contract used by cookie re-authentication.
type RememberMeStore interface {
	SaveRememberMeToken(ctx context.Context, userID int64, token string) (int64, error)
	FindByIDAndRememberMeToken(ctx context.Context, userID int64, token string) ([]*User, error)
	Settings(ctx context.Context, userID int64) (map[string]string, error)
}
