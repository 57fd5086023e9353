// Package token holds the session token slot shared by every dashboard
// context (server, CLI, other processes) and the change signal used to
// tell those contexts to re-read it.
package token

import (
	"context"
	"sync"
)

// SlotName is the fixed key of the token slot in every backend
const SlotName = "authToken"

// Store is the only read/write gateway to the session token.
//
// Set and Clear made through one Store are observed by every other Store on
// the same slot through Subscribe callbacks. The writer itself is not
// notified. Callbacks carry no payload: they mean "re-check the token".
type Store interface {
	Get(ctx context.Context) (token string, ok bool, err error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
	Subscribe(fn func()) (unsubscribe func())
}

// subscribers is the callback registry shared by the backends
type subscribers struct {
	mu   sync.Mutex
	next int
	fns  map[int]func()
}

// add registers fn and returns an idempotent remove func. The returned bool is
// true when fn is the first subscriber.
func (s *subscribers) add(fn func()) (remove func() (last bool), first bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fns == nil {
		s.fns = make(map[int]func())
	}
	id := s.next
	s.next++
	first = len(s.fns) == 0
	s.fns[id] = fn

	var once sync.Once
	remove = func() (last bool) {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := s.fns[id]; !ok {
				return
			}
			delete(s.fns, id)
			last = len(s.fns) == 0
		})
		return last
	}
	return remove, first
}

// notify runs every callback on its own goroutine; the change signal is
// asynchronous just like a browser storage event.
func (s *subscribers) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		go fn()
	}
}

func (s *subscribers) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fns)
}
