package utils

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	redisClient *redis.Client
	redisCtx    = context.Background()
)

// InitRedis connects the shared redis client used for OTP codes and
// password-reset tokens
func InitRedis() error {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))

	redisClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	})

	if err := redisClient.Ping(redisCtx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	return nil
}

// SetToken stores a value with TTL (reset tokens, OTP codes)
func SetToken(key, value string, ttl time.Duration) error {
	return redisClient.Set(redisCtx, key, value, ttl).Err()
}

// GetToken fetches a previously stored value; returns an error when the key
// is missing or expired
func GetToken(key string) (string, error) {
	return redisClient.Get(redisCtx, key).Result()
}

// DeleteToken removes a key (cleanup after use)
func DeleteToken(key string) error {
	return redisClient.Del(redisCtx, key).Err()
}

// SetOTP stores a one-time code for a phone number
func SetOTP(phone, code string, ttl time.Duration) error {
	return SetToken(fmt.Sprintf("otp:%s", phone), code, ttl)
}

// GetOTP fetches the pending code for a phone number
func GetOTP(phone string) (string, error) {
	return GetToken(fmt.Sprintf("otp:%s", phone))
}

// DeleteOTP clears a consumed code
func DeleteOTP(phone string) error {
	return DeleteToken(fmt.Sprintf("otp:%s", phone))
}
