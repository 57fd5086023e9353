package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/notate-dashboard/session"
	"github.com/rs/zerolog/log"
)

const (
	EventSession  = "session"
	EventNavigate = "navigate"

	clientBuffer      = 16
	keepAliveInterval = 25 * time.Second
)

// Event is one server-sent event
type Event struct {
	Name string
	Data string
}

// EventHub fans session changes and forced navigations out to every open
// dashboard tab. It implements session.Navigator.
type EventHub struct {
	mu      sync.Mutex
	clients map[string]chan Event
	last    *Event // latest session event, replayed to new clients
	closed  bool
}

func NewEventHub() *EventHub {
	return &EventHub{clients: make(map[string]chan Event)}
}

// Navigate implements session.Navigator
func (h *EventHub) Navigate(path string) {
	data, _ := json.Marshal(path)
	h.broadcast(Event{Name: EventNavigate, Data: string(data)}, false)
}

// PublishSession is registered with session.Service.Watch
func (h *EventHub) PublishSession(st session.State) {
	data, err := json.Marshal(newSessionView(st))
	if err != nil {
		log.Err(err).Msg("encode session event")
		return
	}
	h.broadcast(Event{Name: EventSession, Data: string(data)}, true)
}

// Subscribe registers a client. The returned channel is closed by cancel or
// by Close.
func (h *EventHub) Subscribe() (id string, events <-chan Event, cancel func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id = uuid.NewString()
	ch := make(chan Event, clientBuffer)
	if h.closed {
		close(ch)
		return id, ch, func() {}
	}
	if h.last != nil {
		ch <- *h.last
	}
	h.clients[id] = ch

	return id, ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.clients[id]; ok {
			delete(h.clients, id)
			close(c)
		}
	}
}

// Clients returns the number of connected clients
func (h *EventHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client
func (h *EventHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, ch := range h.clients {
		delete(h.clients, id)
		close(ch)
	}
}

func (h *EventHub) broadcast(ev Event, remember bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if remember {
		h.last = &ev
	}
	for id, ch := range h.clients {
		select {
		case ch <- ev:
		default:
			// a stalled tab gets dropped; it reconnects and is replayed the
			// latest session event
			log.Warn().Str("client", id).Str("event", ev.Name).Msg("event client too slow, disconnecting")
			delete(h.clients, id)
			close(ch)
		}
	}
}

// EventsHandler streams hub events to a browser tab
func (s *Server) EventsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc := http.NewResponseController(w)

		id, events, cancel := s.events.Subscribe()
		defer cancel()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		if err := rc.Flush(); err != nil {
			log.Err(err).Msg("event stream not supported by writer")
			return
		}
		log.Debug().Str("client", id).Msg("event client connected")

		keepAlive := time.NewTicker(keepAliveInterval)
		defer keepAlive.Stop()

		for {
			select {
			case <-r.Context().Done():
				log.Debug().Str("client", id).Msg("event client disconnected")
				return
			case <-keepAlive.C:
				if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
					return
				}
			case ev, ok := <-events:
				if !ok {
					return
				}
				if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, ev.Data); err != nil {
					return
				}
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
