package database

import "github.com/redis/go-redis/v9"

// NewRedis creates a Redis client for the OTP cache and OAuth state store
func NewRedis(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}
