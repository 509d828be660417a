package auth

import (
	"time"

	"github.com/uptrace/bun"
)

// Provider identifies where an account's credentials live.
type Provider = string

const (
	// ProviderDefault marks password based accounts. Recovery only applies
	// to these.
	ProviderDefault Provider = "DEFAULT"
	// ProviderExternal marks accounts backed by an external identity provider.
	ProviderExternal Provider = "EXTERNAL"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleMember is a regular account
	RoleMember UserRole = "member"
	// RoleAdmin can invite and manage users
	RoleAdmin UserRole = "admin"
)

// User is the user model
type User struct {
	bun.BaseModel          `bun:"table:users,alias:usr"`
	ID                     int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Name                   string     `bun:"user_name,notnull,unique" json:"user_name,omitempty"`
	Email                  string     `bun:"user_email,notnull,unique" json:"user_email,omitempty"`
	Role                   UserRole   `bun:"user_role,notnull,default:'member'" json:"user_role,omitempty"`
	Provider               Provider   `bun:"provider,notnull,default:'DEFAULT'" json:"provider,omitempty"`
	PasswordHash           *string    `bun:"password_hash" json:"-"`
	ActivationHash         *string    `bun:"activation_hash" json:"-"`
	PasswordResetHash      *string    `bun:"password_reset_hash" json:"-"`
	PasswordResetExpiresAt *time.Time `bun:"password_reset_expires_at" json:"-"`
	RememberMeToken        *string    `bun:"remember_me_token" json:"-"`
	DataDirectory          *string    `bun:"data_directory" json:"data_directory,omitempty"`
	Activated              bool       `bun:"activated,notnull,default:false" json:"activated"`
	CreatedAt              time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserSetting is a per user key/value preference loaded into the session
// after login.
type UserSetting struct {
	bun.BaseModel `bun:"table:user_settings,alias:ust"`
	UserID        int64  `bun:"user_id,pk" json:"user_id"`
	Key           string `bun:"setting_key,pk" json:"key"`
	Value         string `bun:"setting_value" json:"value"`
}

// PasswordResetRecord is the projection read when verifying a reset link.
type PasswordResetRecord struct {
	UserID    int64
	Hash      string
	ExpiresAt time.Time
}

// Expired reports whether the reset token is no longer usable at now. A
// token is valid strictly before its expiry.
func (r PasswordResetRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// NewInvitedUser is the row written when an admin invites someone.
type NewInvitedUser struct {
	Name           string
	Email          string
	ActivationHash string
}

// InvitationActivation carries the values applied when an invited user
// completes registration.
type InvitationActivation struct {
	UserID         int64
	ActivationHash string
	Name           string
	PasswordHash   string
	DataDirectory  string
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
