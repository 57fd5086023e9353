package session

import (
	"context"
	"sync"

	apperrors "github.com/jrsteele09/notate-dashboard/internal/errors"
	"github.com/jrsteele09/notate-dashboard/routes"
	"github.com/jrsteele09/notate-dashboard/token"
	"github.com/jrsteele09/notate-dashboard/users"
	"github.com/rs/zerolog/log"
)

// Decoder turns a raw token into an identity
type Decoder interface {
	Decode(raw string) (users.Identity, error)
}

// CacheClearer is implemented by data-fetching infrastructure holding server
// responses that must not outlive the session that fetched them.
type CacheClearer interface {
	Clear()
}

// Navigator performs a forced navigation
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

type Option func(*Service)

// WithCacheClearer registers caches cleared on logout
func WithCacheClearer(c ...CacheClearer) Option {
	return func(s *Service) {
		s.caches = append(s.caches, c...)
	}
}

// WithNavigator sets the navigator used by logout
func WithNavigator(n Navigator) Option {
	return func(s *Service) {
		s.navigator = n
	}
}

// Service is the single source of truth for who is logged in. Construct one
// per process and pass it to every consumer.
type Service struct {
	store     token.Store
	decoder   Decoder
	caches    []CacheClearer
	navigator Navigator

	mu          sync.Mutex
	state       State
	version     uint64 // bumped on every transition
	unsubscribe func()
	cancel      context.CancelFunc

	// watchers only see a version newer than the last one delivered
	notifyMu  sync.Mutex
	delivered uint64
	watchers  map[int]func(State)
	nextID    int
}

func New(store token.Store, decoder Decoder, opts ...Option) *Service {
	s := &Service{
		store:    store,
		decoder:  decoder,
		state:    State{IsLoading: true},
		watchers: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start subscribes to the store's change signal and runs the first Refresh.
// Further calls only refresh. The subscription lives until Close.
func (s *Service) Start(ctx context.Context) State {
	s.mu.Lock()
	if s.unsubscribe == nil {
		base, cancel := context.WithCancel(context.WithoutCancel(ctx))
		s.cancel = cancel
		s.unsubscribe = s.store.Subscribe(func() {
			if base.Err() != nil {
				return
			}
			log.Debug().Msg("token changed in another context")
			s.Refresh(base)
		})
	}
	s.mu.Unlock()

	return s.Refresh(ctx)
}

// Close drops the change subscription. Late notifications are ignored.
func (s *Service) Close() {
	s.mu.Lock()
	unsubscribe, cancel := s.unsubscribe, s.cancel
	s.unsubscribe, s.cancel = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if unsubscribe != nil {
		unsubscribe()
	}
}

// Snapshot returns a copy of the current state
func (s *Service) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Watch registers fn to be called after state changes, in the order they were
// applied. A transition superseded before delivery is skipped. fn may call
// Snapshot but must not call Refresh, SetToken or Logout synchronously.
func (s *Service) Watch(fn func(State)) (unwatch func()) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	id := s.nextID
	s.nextID++
	s.watchers[id] = fn
	return func() {
		s.notifyMu.Lock()
		defer s.notifyMu.Unlock()
		delete(s.watchers, id)
	}
}

// Refresh re-derives the state from the token store. A missing token is the
// logged out state; an undecodable one goes through logout so it cannot come
// back. Nothing is returned to the caller as an error.
func (s *Service) Refresh(ctx context.Context) State {
	s.mu.Lock()

	raw, ok, err := s.store.Get(ctx)
	if err != nil {
		log.Error().Err(err).Msg("read session token")
		if s.state.User != nil {
			s.clearCaches()
		}
		return s.apply(State{})
	}
	if !ok {
		if s.state.User != nil {
			s.clearCaches()
		}
		return s.apply(State{})
	}

	identity, err := s.decoder.Decode(raw)
	if err != nil {
		log.Warn().Err(err).Msg("discarding undecodable session token")
		if err := s.logoutLocked(ctx); err != nil {
			log.Error().Err(err).Msg("logout after decode failure")
		}
		return State{}
	}

	if s.state.User != nil && (s.state.User.ID != identity.ID || s.state.User.Role != identity.Role) {
		log.Info().Str("from", s.state.User.ID).Str("to", identity.ID).Msg("session user switched")
		s.clearCaches()
	}
	log.Debug().Str("user", identity.ID).Str("role", identity.Role.String()).Msg("session refreshed")
	return s.apply(State{User: &identity})
}

// SetToken stores a token obtained from the login collaborator and refreshes.
// The writer is not notified by the store, so the refresh happens here.
func (s *Service) SetToken(ctx context.Context, raw string) (State, error) {
	if err := s.store.Set(ctx, raw); err != nil {
		return s.Snapshot(), apperrors.Wrapf(err, "store session token")
	}
	return s.Refresh(ctx), nil
}

// Logout clears the token, resets the state, clears every registered cache and
// navigates to the login page once. A token store failure does not stop the
// remaining steps; it is returned afterwards.
func (s *Service) Logout(ctx context.Context) error {
	s.mu.Lock()
	return s.logoutLocked(ctx)
}

// logoutLocked must be called with mu held and releases it
func (s *Service) logoutLocked(ctx context.Context) error {
	clearErr := s.store.Clear(ctx)
	if clearErr != nil {
		log.Error().Err(clearErr).Msg("clear session token")
	}

	changed := s.set(State{})
	s.clearCaches()
	s.publish(changed)

	if s.navigator != nil {
		s.navigator.Navigate(routes.Login)
	}
	log.Info().Msg("logged out")
	return apperrors.Wrapf(clearErr, "logout")
}

// apply must be called with mu held and releases it
func (s *Service) apply(next State) State {
	changed := s.set(next)
	return s.publish(changed)
}

// set must be called with mu held
func (s *Service) set(next State) (changed bool) {
	changed = !s.state.equal(next)
	s.state = next
	if changed {
		s.version++
	}
	return changed
}

// clearCaches must be called with mu held
func (s *Service) clearCaches() {
	for _, c := range s.caches {
		c.Clear()
	}
}

// publish releases mu and, when the state changed, notifies the watchers.
// notifyMu is only taken after mu is released so a watcher may read the state.
func (s *Service) publish(changed bool) State {
	out := s.state.clone()
	version := s.version
	s.mu.Unlock()

	if !changed {
		return out
	}

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if version <= s.delivered {
		return out
	}
	s.delivered = version
	for _, fn := range s.watchers {
		fn(out.clone())
	}
	return out
}
