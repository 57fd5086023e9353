package token

import (
	"github.com/jrsteele09/notate-dashboard/internal/config"
	apperrors "github.com/jrsteele09/notate-dashboard/internal/errors"
	"github.com/redis/go-redis/v9"
)

// NewStoreFromConfig builds the backend selected by TOKEN_BACKEND. The returned
// close func releases watchers and connections the store owns.
func NewStoreFromConfig(c config.TokenStoreConfig) (Store, func() error, error) {
	switch c.GetTokenBackend() {
	case config.TokenBackendMemory:
		return NewMemoryStore(), func() error { return nil }, nil
	case config.TokenBackendFile:
		fs := NewFileStore(c.GetTokenFile(), c.GetTokenPollInterval())
		return fs, fs.Close, nil
	case config.TokenBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     c.GetRedisAddr(),
			Password: c.GetRedisPassword(),
			DB:       c.GetRedisDB(),
		})
		rs := NewRedisStore(client, c.GetRedisPrefix())
		return rs, func() error {
			return apperrors.Join(rs.Close(), client.Close())
		}, nil
	default:
		return nil, nil, apperrors.Wrapf(apperrors.ErrUnknownBackend, "%q", c.GetTokenBackend())
	}
}
