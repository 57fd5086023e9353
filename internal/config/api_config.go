package config

import "time"

type APIConfig interface {
	GetAPIURL() string
	GetRequestTimeout() time.Duration
	GetCacheTTL() time.Duration
}

type API struct{}

var _ APIConfig = API{}

// GetAPIURL is the base URL of the Notate REST backend
func (API) GetAPIURL() string {
	return GetEnv("API_URL", "http://localhost:4000")
}

func (API) GetRequestTimeout() time.Duration {
	return GetEnvDuration("API_TIMEOUT", 10*time.Second)
}

func (API) GetCacheTTL() time.Duration {
	return GetEnvDuration("CACHE_TTL", 30*time.Second)
}
