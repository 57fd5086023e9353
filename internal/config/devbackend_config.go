package config

import "time"

type DevBackendConfig interface {
	GetDevBackendPort() string
	GetDevJWTSecret() string
	GetDevTokenExpiry() time.Duration
}

type DevBackend struct{}

var _ DevBackendConfig = DevBackend{}

func (DevBackend) GetDevBackendPort() string {
	return ":" + GetEnv("DEV_BACKEND_PORT", "4000")
}

func (DevBackend) GetDevJWTSecret() string {
	return GetEnv("DEV_JWT_SECRET", "notate-dev-secret")
}

func (DevBackend) GetDevTokenExpiry() time.Duration {
	return GetEnvDuration("DEV_TOKEN_EXPIRY", 8*time.Hour)
}
