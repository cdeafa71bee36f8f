package hub

import (
	"log/slog"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"

	"github.com/kevinxiao27/vlist/internal/wire"
)

const DefaultBuffer = 64

// Subscriber receives the changes committed to one list, in version order.
// C is closed when the subscriber is unsubscribed or falls too far behind;
// in the latter case it must resync from a snapshot.
type Subscriber struct {
	ID     string
	ListID string
	C      <-chan wire.Change

	send chan wire.Change
}

// Hub fans committed changes out to the subscribers of each list. Publish
// never blocks: a subscriber whose buffer is full is dropped.
type Hub struct {
	mu     sync.Mutex // protects lists
	lists  map[string]mapset.Set[*Subscriber]
	buffer int
	logger *slog.Logger
	onDrop func(listID string)
}

type Option func(*Hub)

func WithBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) { h.logger = logger }
}

// WithDropHook calls fn whenever a slow subscriber is dropped.
func WithDropHook(fn func(listID string)) Option {
	return func(h *Hub) { h.onDrop = fn }
}

func New(opts ...Option) *Hub {
	h := &Hub{
		lists:  make(map[string]mapset.Set[*Subscriber]),
		buffer: DefaultBuffer,
		logger: slog.Default(),
		onDrop: func(string) {},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Hub) Subscribe(listID string) *Subscriber {
	send := make(chan wire.Change, h.buffer)
	s := &Subscriber{ID: uuid.NewString(), ListID: listID, C: send, send: send}

	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.lists[listID]
	if !ok {
		subs = mapset.NewThreadUnsafeSet[*Subscriber]()
		h.lists[listID] = subs
	}
	subs.Add(s)
	h.logger.Debug("subscribed", "list", listID, "subscriber", s.ID, "total", subs.Cardinality())
	return s
}

// Unsubscribe is idempotent.
func (h *Hub) Unsubscribe(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.remove(s) {
		h.logger.Debug("unsubscribed", "list", s.ListID, "subscriber", s.ID)
	}
}

func (h *Hub) remove(s *Subscriber) bool {
	subs, ok := h.lists[s.ListID]
	if !ok || !subs.Contains(s) {
		return false
	}
	subs.Remove(s)
	if subs.Cardinality() == 0 {
		delete(h.lists, s.ListID)
	}
	close(s.send)
	return true
}

// Publish delivers c to every subscriber of c.ListID and returns how many
// received it.
func (h *Hub) Publish(c wire.Change) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.lists[c.ListID]
	if !ok {
		return 0
	}

	delivered := 0
	for _, s := range subs.ToSlice() {
		select {
		case s.send <- c:
			delivered++
		default:
			h.remove(s)
			h.onDrop(c.ListID)
			h.logger.Warn("dropped slow subscriber", "list", c.ListID, "subscriber", s.ID, "version", c.Version)
		}
	}
	return delivered
}

func (h *Hub) Count(listID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.lists[listID]; ok {
		return subs.Cardinality()
	}
	return 0
}
