package repositories

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/you/authwebsvc/domain"
)

// LockoutPolicy configures the failed-attempt accounting applied by the
// user repository.
type LockoutPolicy struct {
	MaxFailedAttempts int
	Window            time.Duration
	ResetTokenTTL     time.Duration
}

// UserRepositoryImpl implements domain.UserRepository using GORM
type UserRepositoryImpl struct {
	db     *gorm.DB
	policy LockoutPolicy
}

// DBUser represents the database model for User (with GORM tags)
type DBUser struct {
	ID                  uint       `gorm:"primaryKey"`
	Email               string     `gorm:"uniqueIndex;size:255"`
	Username            string     `gorm:"size:255"`
	PasswordHash        string     `gorm:"column:password"`
	EmailConfirmed      bool       `gorm:"index"`
	FailedAccessCount   int        `gorm:"default:0"`
	LockoutUntil        *time.Time `gorm:"index"`
	ResetTokenHash      string     `gorm:"size:64"`
	ResetTokenExpiresAt *time.Time
	CreatedAt           time.Time `gorm:"index"`
	UpdatedAt           time.Time
}

// TableName returns the table name for GORM
func (DBUser) TableName() string {
	return "users"
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB, policy LockoutPolicy) domain.UserRepository {
	return &UserRepositoryImpl{db: db, policy: policy}
}

// Create implements domain.UserRepository
func (r *UserRepositoryImpl) Create(ctx context.Context, user *domain.User) error {
	dbUser := r.domainToDB(user)
	if err := r.db.WithContext(ctx).Create(dbUser).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrUserAlreadyExists
		}
		return err
	}
	user.ID = dbUser.ID
	user.CreatedAt = dbUser.CreatedAt
	return nil
}

// FindByEmail implements domain.UserRepository
func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var dbUser DBUser
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&dbUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbUser), nil
}

// FindByID implements domain.UserRepository
func (r *UserRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var dbUser DBUser
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dbUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbUser), nil
}

// ConfirmEmail implements domain.UserRepository
func (r *UserRepositoryImpl) ConfirmEmail(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Model(&DBUser{}).
		Where("id = ?", userID).
		Update("email_confirmed", true).Error
}

// ResetAccessFailedCount implements domain.UserRepository
func (r *UserRepositoryImpl) ResetAccessFailedCount(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Model(&DBUser{}).
		Where("id = ?", userID).
		Update("failed_access_count", 0).Error
}

// AccessFailed implements domain.UserRepository. The increment runs as a
// single UPDATE expression so concurrent failed attempts against the same
// user are never lost; crossing the threshold is guarded by a conditional
// UPDATE on the counter value.
func (r *UserRepositoryImpl) AccessFailed(ctx context.Context, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&DBUser{}).
		Where("id = ?", userID).
		Update("failed_access_count", gorm.Expr("failed_access_count + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, domain.ErrUserNotFound
	}

	// Exactly one concurrent attempt wins this conditional update and
	// starts the lockout window; the counter resets with it.
	until := time.Now().Add(r.policy.Window)
	res = r.db.WithContext(ctx).Model(&DBUser{}).
		Where("id = ? AND failed_access_count >= ?", userID, r.policy.MaxFailedAttempts).
		Updates(map[string]interface{}{
			"lockout_until":       &until,
			"failed_access_count": 0,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	var dbUser DBUser
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&dbUser).Error; err != nil {
		return false, err
	}
	return dbUser.LockoutUntil != nil && dbUser.LockoutUntil.After(time.Now()), nil
}

// GeneratePasswordResetToken implements domain.UserRepository. Only a hash
// of the token is persisted; issuing a new token supersedes the old one.
func (r *UserRepositoryImpl) GeneratePasswordResetToken(ctx context.Context, userID uint) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	token := hex.EncodeToString(raw)

	expiresAt := time.Now().Add(r.policy.ResetTokenTTL)
	err := r.db.WithContext(ctx).Model(&DBUser{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"reset_token_hash":       hashToken(token),
			"reset_token_expires_at": &expiresAt,
		}).Error
	if err != nil {
		return "", err
	}
	return token, nil
}

// ResetPassword implements domain.UserRepository
func (r *UserRepositoryImpl) ResetPassword(ctx context.Context, userID uint, token, newPasswordHash string) (bool, error) {
	var dbUser DBUser
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&dbUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, domain.ErrUserNotFound
		}
		return false, err
	}

	if dbUser.ResetTokenHash == "" || dbUser.ResetTokenExpiresAt == nil {
		log.Println("Reset password error: no reset token issued")
		return false, nil
	}
	if time.Now().After(*dbUser.ResetTokenExpiresAt) {
		log.Println("Reset password error: reset token has expired")
		return false, nil
	}
	if subtle.ConstantTimeCompare([]byte(dbUser.ResetTokenHash), []byte(hashToken(token))) != 1 {
		log.Println("Reset password error: reset token mismatch")
		return false, nil
	}

	// Clearing the token columns makes the token single-use.
	err = r.db.WithContext(ctx).Model(&DBUser{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"password":               newPasswordHash,
			"reset_token_hash":       "",
			"reset_token_expires_at": nil,
			"failed_access_count":    0,
		}).Error
	if err != nil {
		return false, err
	}
	return true, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// domainToDB converts domain user to database user
func (r *UserRepositoryImpl) domainToDB(user *domain.User) *DBUser {
	return &DBUser{
		ID:                user.ID,
		Email:             user.Email,
		Username:          user.Username,
		PasswordHash:      user.PasswordHash,
		EmailConfirmed:    user.EmailConfirmed,
		FailedAccessCount: user.FailedAccessCount,
		LockoutUntil:      user.LockoutUntil,
	}
}

// dbToDomain converts database user to domain user
func (r *UserRepositoryImpl) dbToDomain(dbUser *DBUser) *domain.User {
	return &domain.User{
		ID:                dbUser.ID,
		Email:             dbUser.Email,
		Username:          dbUser.Username,
		PasswordHash:      dbUser.PasswordHash,
		EmailConfirmed:    dbUser.EmailConfirmed,
		FailedAccessCount: dbUser.FailedAccessCount,
		LockoutUntil:      dbUser.LockoutUntil,
		CreatedAt:         dbUser.CreatedAt,
		UpdatedAt:         dbUser.UpdatedAt,
	}
}
