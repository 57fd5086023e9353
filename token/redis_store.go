package token

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/notate-dashboard/internal/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisStore keeps the token under <prefix>authToken and announces writes on
// the <prefix>authToken:changed channel. The message payload is the writer's
// instance id so a store ignores its own announcements.
type RedisStore struct {
	client     redis.UniversalClient
	key        string
	channel    string
	instanceID string

	subs   subscribers
	mu     sync.Mutex
	pubsub *redis.PubSub
	done   chan struct{}
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	key := prefix + SlotName
	return &RedisStore{
		client:     client,
		key:        key,
		channel:    key + ":changed",
		instanceID: uuid.New().String(),
	}
}

func (r *RedisStore) Get(ctx context.Context) (string, bool, error) {
	tok, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperrors.Wrapf(apperrors.Join(apperrors.ErrStoreUnavailable, err), "redis get %s", r.key)
	}
	return tok, true, nil
}

func (r *RedisStore) Set(ctx context.Context, token string) error {
	if err := r.client.Set(ctx, r.key, token, 0).Err(); err != nil {
		return apperrors.Wrapf(apperrors.Join(apperrors.ErrStoreUnavailable, err), "redis set %s", r.key)
	}
	return r.announce(ctx)
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return apperrors.Wrapf(apperrors.Join(apperrors.ErrStoreUnavailable, err), "redis del %s", r.key)
	}
	return r.announce(ctx)
}

func (r *RedisStore) announce(ctx context.Context) error {
	if err := r.client.Publish(ctx, r.channel, r.instanceID).Err(); err != nil {
		return apperrors.Wrapf(err, "redis publish %s", r.channel)
	}
	return nil
}

// Subscribe opens the pub/sub connection with the first subscriber and closes
// it with the last. If the subscription cannot be established the failure is
// logged and fn will simply never fire.
func (r *RedisStore) Subscribe(fn func()) func() {
	remove, first := r.subs.add(fn)
	if first {
		if err := r.listen(context.Background()); err != nil {
			log.Error().Err(err).Str("channel", r.channel).Msg("token change subscription failed")
		}
	}
	return func() {
		if remove() {
			r.Close()
		}
	}
}

func (r *RedisStore) listen(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pubsub != nil {
		return nil
	}

	ps := r.client.Subscribe(ctx, r.channel)
	// wait for the subscription confirmation so writes made after Subscribe
	// returns are never missed
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return err
	}

	r.pubsub = ps
	r.done = make(chan struct{})
	go r.loop(ps.Channel(), r.done)
	return nil
}

func (r *RedisStore) loop(msgs <-chan *redis.Message, done chan<- struct{}) {
	defer close(done)
	for msg := range msgs {
		if msg.Payload == r.instanceID {
			continue
		}
		r.subs.notify()
	}
}

// Close ends the pub/sub connection. The redis client is owned by the caller.
func (r *RedisStore) Close() error {
	r.mu.Lock()
	ps, done := r.pubsub, r.done
	r.pubsub, r.done = nil, nil
	r.mu.Unlock()

	if ps == nil {
		return nil
	}
	err := ps.Close()
	<-done
	return err
}
