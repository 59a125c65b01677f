package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port    int    `yaml:"port"`
	BaseURL string `yaml:"base_url"`
	GinMode string `yaml:"gin_mode"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret   string `yaml:"secret"`
	Issuer   string `yaml:"issuer"`
	Audience string `yaml:"audience"`
	TTL      string `yaml:"ttl"`
}

type LockoutConfig struct {
	MaxFailedAttempts int    `yaml:"max_failed_attempts"`
	Window            string `yaml:"window"`
}

type OTPConfig struct {
	Length      int    `yaml:"length"`
	TTL         string `yaml:"ttl"`
	MaxAttempts int    `yaml:"max_attempts"`
}

type PasswordResetConfig struct {
	TokenTTL string `yaml:"token_ttl"`
}

type PasswordHashConfig struct {
	BcryptCost int `yaml:"bcrypt_cost"`
}

type EmailConfig struct {
	From         string `yaml:"from"`
	ServerToken  string `yaml:"server_token"`
	AccountToken string `yaml:"account_token"`
}

type GoogleOAuthConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
	StateTTL     string `yaml:"state_ttl"`
}

type ConfigFile struct {
	App           AppConfig           `yaml:"app"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	JWT           JWTConfig           `yaml:"jwt"`
	Lockout       LockoutConfig       `yaml:"lockout"`
	OTP           OTPConfig           `yaml:"otp"`
	PasswordReset PasswordResetConfig `yaml:"password_reset"`
	PasswordHash  PasswordHashConfig  `yaml:"password_hash"`
	Email         EmailConfig         `yaml:"email"`
	GoogleOAuth   GoogleOAuthConfig   `yaml:"google_oauth"`
}

type Config struct {
	Port    string
	BaseURL string
	GinMode string

	DSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	JWTTTL      time.Duration

	LockoutMaxFailedAttempts int
	LockoutWindow            time.Duration

	OTPLength      int
	OTPTTL         time.Duration
	OTPMaxAttempts int

	ResetTokenTTL time.Duration

	BcryptCost int

	EmailFrom         string
	EmailServerToken  string
	EmailAccountToken string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	OAuthStateTTL      time.Duration
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads config/config.yml and applies environment overrides for the
// secrets that must never live in the file.
func Load() (*Config, error) {
	return LoadFrom("config/config.yml")
}

func LoadFrom(path string) (*Config, error) {
	configFile, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	jwtTTL, err := time.ParseDuration(configFile.JWT.TTL)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT TTL: %w", err)
	}

	lockoutWindow, err := time.ParseDuration(configFile.Lockout.Window)
	if err != nil {
		return nil, fmt.Errorf("invalid lockout window: %w", err)
	}

	otpTTL, err := time.ParseDuration(configFile.OTP.TTL)
	if err != nil {
		return nil, fmt.Errorf("invalid OTP TTL: %w", err)
	}

	resetTTL, err := time.ParseDuration(configFile.PasswordReset.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid password reset token TTL: %w", err)
	}

	stateTTL, err := time.ParseDuration(configFile.GoogleOAuth.StateTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid OAuth state TTL: %w", err)
	}

	return &Config{
		Port:    fmt.Sprintf("%d", configFile.App.Port),
		BaseURL: configFile.App.BaseURL,
		GinMode: configFile.App.GinMode,

		DSN: env("DATABASE_DSN", configFile.Database.DSN),

		RedisAddr:     configFile.Redis.Addr,
		RedisPassword: env("REDIS_PASSWORD", configFile.Redis.Password),
		RedisDB:       configFile.Redis.DB,

		JWTSecret:   env("JWT_SECRET_KEY", configFile.JWT.Secret),
		JWTIssuer:   configFile.JWT.Issuer,
		JWTAudience: configFile.JWT.Audience,
		JWTTTL:      jwtTTL,

		LockoutMaxFailedAttempts: configFile.Lockout.MaxFailedAttempts,
		LockoutWindow:            lockoutWindow,

		OTPLength:      configFile.OTP.Length,
		OTPTTL:         otpTTL,
		OTPMaxAttempts: configFile.OTP.MaxAttempts,

		ResetTokenTTL: resetTTL,

		BcryptCost: configFile.PasswordHash.BcryptCost,

		EmailFrom:         configFile.Email.From,
		EmailServerToken:  env("POSTMARK_SERVER_TOKEN", configFile.Email.ServerToken),
		EmailAccountToken: env("POSTMARK_ACCOUNT_TOKEN", configFile.Email.AccountToken),

		GoogleClientID:     env("GOOGLE_CLIENT_ID", configFile.GoogleOAuth.ClientID),
		GoogleClientSecret: env("GOOGLE_CLIENT_SECRET", configFile.GoogleOAuth.ClientSecret),
		GoogleRedirectURL:  configFile.GoogleOAuth.RedirectURL,
		OAuthStateTTL:      stateTTL,
	}, nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}
