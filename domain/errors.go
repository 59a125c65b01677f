package domain

import "errors"

// Authentication errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrResourceNotFound  = errors.New("resource not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrLockedOut         = errors.New("account is locked out")
	ErrUnauthorized      = errors.New("unauthorized")
)

// OTP errors
var (
	ErrOTPNotFound    = errors.New("otp not found or expired")
	ErrOTPMaxAttempts = errors.New("maximum otp attempts exceeded")
)

// Token errors
var (
	ErrTokenInvalid      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token has expired")
	ErrTokenMalformed    = errors.New("malformed token")
	ErrInvalidResetToken = errors.New("invalid reset token")
	ErrInvalidState      = errors.New("invalid or expired oauth state")
)

// ResultKind normalizes the error taxonomy into a single enumeration the
// HTTP boundary can branch on without knowing individual sentinels.
type ResultKind int

const (
	KindOk ResultKind = iota
	KindNotFound
	KindUnauthorized
	KindLockedOut
	KindValidation
	KindInvalidToken
	KindInternal
)

// KindOf classifies err. Unknown errors are infrastructure failures.
func KindOf(err error) ResultKind {
	switch {
	case err == nil:
		return KindOk
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrResourceNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrLockedOut):
		return KindLockedOut
	case errors.Is(err, ErrUserAlreadyExists):
		return KindValidation
	case errors.Is(err, ErrOTPNotFound),
		errors.Is(err, ErrOTPMaxAttempts),
		errors.Is(err, ErrTokenInvalid),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrTokenMalformed),
		errors.Is(err, ErrInvalidResetToken),
		errors.Is(err, ErrInvalidState):
		return KindInvalidToken
	default:
		return KindInternal
	}
}
