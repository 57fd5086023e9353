package config

import (
	"os"
	"path/filepath"
	"time"
)

type TokenBackend string

const (
	TokenBackendMemory TokenBackend = "memory"
	TokenBackendFile   TokenBackend = "file"
	TokenBackendRedis  TokenBackend = "redis"
)

type TokenStoreConfig interface {
	GetTokenBackend() TokenBackend
	GetTokenFile() string
	GetTokenPollInterval() time.Duration
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisPrefix() string
}

type TokenStore struct{}

var _ TokenStoreConfig = TokenStore{}

func (TokenStore) GetTokenBackend() TokenBackend {
	return TokenBackend(GetEnv("TOKEN_BACKEND", string(TokenBackendFile)))
}

// GetTokenFile defaults to <user config dir>/notate/authToken
func (TokenStore) GetTokenFile() string {
	if f := os.Getenv("TOKEN_FILE"); f != "" {
		return f
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "notate", "authToken")
}

func (TokenStore) GetTokenPollInterval() time.Duration {
	return GetEnvDuration("TOKEN_POLL_INTERVAL", 500*time.Millisecond)
}

func (TokenStore) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (TokenStore) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (TokenStore) GetRedisDB() int {
	return GetEnvInt("REDIS_DB", 0)
}

func (TokenStore) GetRedisPrefix() string {
	return GetEnv("REDIS_PREFIX", "notate:")
}
