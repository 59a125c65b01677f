package domain

import "time"

// User represents a registered account in the system
type User struct {
	ID                uint
	Email             string
	Username          string
	PasswordHash      string
	EmailConfirmed    bool
	FailedAccessCount int
	LockoutUntil      *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsLockedOut reports whether the account is inside a lockout window at t.
func (u *User) IsLockedOut(t time.Time) bool {
	return u.LockoutUntil != nil && u.LockoutUntil.After(t)
}

// SoftDeletable is implemented by entities that are flagged instead of
// hard-deleted. The auth core never deletes users, so User does not
// implement it.
type SoftDeletable interface {
	MarkDeleted()
	IsDeleted() bool
}

// Product is the demo CRUD resource served to the admin UI
type Product struct {
	ID          uint
	Name        string
	Description string
	Price       float64
	Deleted     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MarkDeleted implements SoftDeletable
func (p *Product) MarkDeleted() { p.Deleted = true }

// IsDeleted implements SoftDeletable
func (p *Product) IsDeleted() bool { return p.Deleted }

// PasswordCredentials carries a password sign-in attempt
type PasswordCredentials struct {
	Email    string
	Password string
}

// RegistrationCredentials carries a sign-up request. Username and Password
// are optional: a missing username is derived from the email local-part,
// and OAuth auto-registration creates accounts without a password.
type RegistrationCredentials struct {
	Email    string
	Username string
	Password string
}

// AuthenticationResult is produced fresh per authentication attempt
type AuthenticationResult struct {
	User             *User
	Succeeded        bool
	IsLockedOut      bool
	IsEmailConfirmed bool
}

// Denial classifies a failed result: ErrLockedOut inside a lockout window,
// ErrUnauthorized for every other rejection. A succeeded result has none.
func (r *AuthenticationResult) Denial() error {
	switch {
	case r.Succeeded:
		return nil
	case r.IsLockedOut:
		return ErrLockedOut
	default:
		return ErrUnauthorized
	}
}

// RegistrationResult is produced once per registration call
type RegistrationResult struct {
	User                 *User
	Succeeded            bool
	RequiresVerification bool
	ConfirmationToken    string
	Message              string
}

// OtpEntry is the transient state of one email confirmation flow, keyed in
// the OTP cache by an opaque confirmation token.
type OtpEntry struct {
	Code           string    `json:"code"`
	UserID         uint      `json:"user_id"`
	FailedAttempts int       `json:"failed_attempts"`
	CreatedAt      time.Time `json:"created_at"`
}

// TokenClaims represents the validated claims of a session token
type TokenClaims struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// ExternalIdentity is an externally verified identity reported by an OAuth
// provider after code exchange.
type ExternalIdentity struct {
	Succeeded bool
	Email     string
	Name      string
}

// Message is the payload handed to the notification sender
type Message struct {
	Subject    string
	Body       string
	IsHTMLBody bool
}
