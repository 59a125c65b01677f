package domain

import "context"

// UserRepository is the credential store: user records, password hashes,
// the email-confirmation flag and lockout accounting.
type UserRepository interface {
	// Create persists a new user. A duplicate email is reported as a
	// validation error, not as infrastructure failure.
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
	// ConfirmEmail marks the user's email address as verified.
	ConfirmEmail(ctx context.Context, userID uint) error
	// ResetAccessFailedCount zeroes the failed-attempt counter.
	ResetAccessFailedCount(ctx context.Context, userID uint) error
	// AccessFailed atomically records one failed attempt. Crossing the
	// configured threshold starts a lockout window; the return value
	// reports whether the account is now locked out.
	AccessFailed(ctx context.Context, userID uint) (bool, error)
	// GeneratePasswordResetToken creates a new single-use reset token,
	// invalidating any previously issued one.
	GeneratePasswordResetToken(ctx context.Context, userID uint) (string, error)
	// ResetPassword consumes the token and installs the new password hash.
	// A wrong or expired token yields (false, nil).
	ResetPassword(ctx context.Context, userID uint, token, newPasswordHash string) (bool, error)
}

// ProductRepository defines data access for the demo Product resource
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id uint) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uint) error
}

// OtpCache is the shared keyed store holding pending OTP entries. Backing
// implementations must keep IncrementAttempts atomic per key.
type OtpCache interface {
	Save(ctx context.Context, token string, entry *OtpEntry) error
	// Get returns ErrOTPNotFound for an absent or expired token.
	Get(ctx context.Context, token string) (*OtpEntry, error)
	IncrementAttempts(ctx context.Context, token string) (int, error)
	Delete(ctx context.Context, token string) error
}

// StateStore holds one-time OAuth state keys for CSRF protection
type StateStore interface {
	Store(ctx context.Context, state string) error
	// Consume removes the state; ErrInvalidState if absent or already used.
	Consume(ctx context.Context, state string) error
}

// PasswordService defines password hashing operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService mints and validates signed session tokens
type TokenService interface {
	Generate(user *User) (string, error)
	Validate(token string) (*TokenClaims, error)
}

// NotificationService dispatches messages to a recipient email address.
// Delivery is fire-and-forget from the caller's perspective.
type NotificationService interface {
	Send(ctx context.Context, recipient string, msg Message) error
}

// PasswordAuthService orchestrates password sign-in, registration and
// password recovery.
type PasswordAuthService interface {
	Authenticate(ctx context.Context, credentials PasswordCredentials) (*AuthenticationResult, error)
	Register(ctx context.Context, credentials RegistrationCredentials, requiresVerification bool) (*RegistrationResult, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, encodedToken, newPassword string) (bool, error)
}

// OtpAuthService issues, verifies and reissues email confirmation codes
type OtpAuthService interface {
	SendOtp(ctx context.Context, user *User) (string, error)
	Verify(ctx context.Context, token, code string) (*AuthenticationResult, error)
	Resend(ctx context.Context, oldToken string) (string, error)
}

// OAuthService maps an externally verified identity onto a local account
type OAuthService interface {
	AuthenticateOrRegister(ctx context.Context, identity ExternalIdentity) (*AuthenticationResult, error)
}

// OAuthProvider abstracts the provider half of the OAuth flow: building the
// authorization URL and turning a callback code into a verified identity.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Authenticate(ctx context.Context, code string) (ExternalIdentity, error)
}
