package app

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/you/authwebsvc/domain"
	"github.com/you/authwebsvc/internal/config"
	"github.com/you/authwebsvc/internal/infrastructure/auth"
	"github.com/you/authwebsvc/internal/infrastructure/cache"
	"github.com/you/authwebsvc/internal/infrastructure/database"
	"github.com/you/authwebsvc/internal/infrastructure/notifications"
	"github.com/you/authwebsvc/internal/infrastructure/repositories"
	"github.com/you/authwebsvc/internal/services"
)

// Container holds all dependencies
type Container struct {
	// Config
	Config *config.Config

	// Infrastructure
	DB          *gorm.DB
	RedisClient *redis.Client

	// Repositories and stores
	UserRepo    domain.UserRepository
	ProductRepo domain.ProductRepository
	OtpCache    domain.OtpCache
	StateStore  domain.StateStore

	// Services
	PasswordSvc     domain.PasswordService
	TokenSvc        domain.TokenService
	NotificationSvc domain.NotificationService
	OAuthProvider   domain.OAuthProvider
	PasswordAuth    domain.PasswordAuthService
	OtpAuth         domain.OtpAuthService
	OAuthSvc        domain.OAuthService
}

// NewContainer creates and initializes all dependencies
func NewContainer(cfg *config.Config) (*Container, error) {
	container := &Container{Config: cfg}

	if err := container.initDatabase(); err != nil {
		return nil, err
	}
	container.initRedis()
	container.initRepositories()
	container.initServices()

	return container, nil
}

func (c *Container) initDatabase() error {
	db, err := database.Open(c.Config.DSN)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	c.DB = db
	return nil
}

func (c *Container) initRedis() {
	c.RedisClient = database.NewRedis(c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB)
}

func (c *Container) initRepositories() {
	c.UserRepo = repositories.NewUserRepository(c.DB, repositories.LockoutPolicy{
		MaxFailedAttempts: c.Config.LockoutMaxFailedAttempts,
		Window:            c.Config.LockoutWindow,
		ResetTokenTTL:     c.Config.ResetTokenTTL,
	})
	c.ProductRepo = repositories.NewProductRepository(c.DB)
	c.OtpCache = cache.NewRedisOtpCache(c.RedisClient, c.Config.OTPTTL)
	c.StateStore = cache.NewRedisStateStore(c.RedisClient, c.Config.OAuthStateTTL)
}

func (c *Container) initServices() {
	c.PasswordSvc = auth.NewPasswordService(c.Config.BcryptCost)
	c.TokenSvc = auth.NewJWTService(
		c.Config.JWTSecret,
		c.Config.JWTIssuer,
		c.Config.JWTAudience,
		c.Config.JWTTTL,
	)
	c.NotificationSvc = notifications.NewEmailService(
		c.Config.EmailServerToken,
		c.Config.EmailAccountToken,
		c.Config.EmailFrom,
	)
	c.OAuthProvider = auth.NewGoogleOAuthProvider(
		c.Config.GoogleClientID,
		c.Config.GoogleClientSecret,
		c.Config.GoogleRedirectURL,
	)

	c.PasswordAuth = services.NewPasswordAuth(c.UserRepo, c.PasswordSvc, c.NotificationSvc, c.Config.BaseURL)
	c.OtpAuth = services.NewOtpAuth(c.OtpCache, c.UserRepo, c.NotificationSvc, services.OtpConfig{
		Length:      c.Config.OTPLength,
		TTL:         c.Config.OTPTTL,
		MaxAttempts: c.Config.OTPMaxAttempts,
	})
	c.OAuthSvc = services.NewOAuthAuth(c.UserRepo, c.PasswordAuth)
}
