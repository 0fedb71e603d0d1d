// Package realtime fans hydrated feed messages out to the live subscribers
// of each project.
package realtime

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/obralink/marketplace/internal/api/metrics"
	"github.com/obralink/marketplace/internal/core/domain"
)

const (
	subscriberBuffer = 32
	// deliveredWindow bounds how many message ids a subscriber remembers.
	deliveredWindow = 512
)

type subscriber struct {
	ch        chan *domain.Message
	delivered map[string]struct{}
	order     []string
}

func (s *subscriber) seen(id string) bool {
	_, ok := s.delivered[id]
	return ok
}

func (s *subscriber) remember(id string) {
	if len(s.order) >= deliveredWindow {
		delete(s.delivered, s.order[0])
		s.order = s.order[1:]
	}
	s.delivered[id] = struct{}{}
	s.order = append(s.order, id)
}

// Hub keeps the subscribers of every project. A subscriber never receives
// the same message twice; messages are sent in arrival order and clients
// sort by (created_at, id).
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[*subscriber]struct{}
	closed bool
	log    zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{}), log: log}
}

// Subscribe registers a subscriber for projectID. After Close the returned
// channel is already closed.
func (h *Hub) Subscribe(projectID string) (<-chan *domain.Message, func()) {
	s := &subscriber{
		ch:        make(chan *domain.Message, subscriberBuffer),
		delivered: make(map[string]struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(s.ch)
		return s.ch, func() {}
	}
	set, ok := h.subs[projectID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[projectID] = set
	}
	set[s] = struct{}{}
	h.mu.Unlock()
	metrics.FeedSubscribers.Inc()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.remove(projectID, s)
	}
	return s.ch, cancel
}

// remove drops s and closes its channel. It is a no-op when s is already
// gone, so cancel and Close may race. Callers hold h.mu.
func (h *Hub) remove(projectID string, s *subscriber) {
	set := h.subs[projectID]
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.subs, projectID)
	}
	close(s.ch)
	metrics.FeedSubscribers.Dec()
}

// Close ends every live subscription. Streams see their channel closed and
// return, which lets HTTP shutdown complete.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for projectID, set := range h.subs {
		for s := range set {
			h.remove(projectID, s)
		}
	}
}

// Broadcast delivers msg to every subscriber of projectID. Subscribers whose
// buffer is full miss the message; they pick it up on their next Load.
func (h *Hub) Broadcast(projectID string, msg *domain.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for s := range h.subs[projectID] {
		if s.seen(msg.ID) {
			continue
		}
		select {
		case s.ch <- msg:
			s.remember(msg.ID)
		default:
			h.log.Warn().Str("project_id", projectID).Str("message_id", msg.ID).Msg("subscriber buffer full, message skipped")
		}
	}
}

// Subscribers returns the number of live subscribers of projectID.
func (h *Hub) Subscribers(projectID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[projectID])
}
