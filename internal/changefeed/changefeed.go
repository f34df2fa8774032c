// Package changefeed is the in process row change log. Storage publishes a Change for
// every insert, update and delete, and notification streams subscribe to the kinds they
// care about.
package changefeed

import (
	"fmt"
	"sync"
	"time"
)

// Op is the row operation that produced a change.
type Op string

const (
	OpInsert Op = "new"
	OpUpdate Op = "updated"
	OpDelete Op = "deleted"
)

// Tables that publish changes.
const (
	TableOperator         = "operator"
	TableOperation        = "operation"
	TablePayloadType      = "payloadtype"
	TableCommand          = "command"
	TableCommandParameter = "commandparameters"
	TableCommandTransform = "commandtransform"
	TableTransform        = "transform"
	TableC2Profile        = "c2profile"
	// TablePayloadTypeC2Profile links payload types with the c2 profiles they speak.
	TablePayloadTypeC2Profile = "payloadtypec2profile"
	TablePayload              = "payload"
	TableCallback             = "callback"
	TableLoadedCommand        = "loadedcommands"
	TableTask                 = "task"
	TableResponse             = "response"
	TableFileMeta             = "filemeta"
	TableAttackTask           = "attacktask"
	TableTaskArtifact         = "taskartifact"
	TableCredential           = "credential"
)

// Kind addresses a change by operation and table.
type Kind struct {
	Op    Op
	Table string
}

// String returns the channel name of the kind, e.g. "newtask".
func (k Kind) String() string { return string(k.Op) + k.Table }

// Change is a single row change.
type Change struct {
	Seq       uint64
	Kind      Kind
	ID        int64
	Timestamp time.Time
	// Old is the row as it was before deletion, only set on deletes.
	Old any
}

func (c Change) String() string { return fmt.Sprintf("%s:%d", c.Kind, c.ID) }

// Publisher publishes row changes.
type Publisher interface {
	Publish(kind Kind, id int64, old any)
}

// NoopPublisher drops every change.
const NoopPublisher = noopPublisher(0)

type noopPublisher int

func (noopPublisher) Publish(Kind, int64, any) {}

// Hub fans changes out to subscriptions. Every subscription has its own unbounded
// queue so a slow reader never blocks writers nor loses changes.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
	seq    uint64
}

// NewHub returns a new empty hub.
func NewHub() *Hub {
	return &Hub{subs: map[uint64]*Subscription{}}
}

// Publish appends the change to every subscription interested in the kind.
func (h *Hub) Publish(kind Kind, id int64, old any) {
	h.mu.Lock()
	h.seq++
	c := Change{
		Seq:       h.seq,
		Kind:      kind,
		ID:        id,
		Timestamp: time.Now().UTC(),
		Old:       old,
	}
	subs := make([]*Subscription, 0, len(h.subs))
	for _, s := range h.subs {
		if s.kinds[kind] {
			subs = append(subs, s)
		}
	}
	h.mu.Unlock()

	for _, s := range subs {
		s.push(c)
	}
}

// Subscribe returns a subscription receiving changes of the given kinds from now on.
func (h *Hub) Subscribe(kinds ...Kind) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	s := &Subscription{
		id:    h.nextID,
		hub:   h,
		kinds: map[Kind]bool{},
		ready: make(chan struct{}, 1),
	}
	for _, k := range kinds {
		s.kinds[k] = true
	}
	h.subs[s.id] = s

	return s
}

// Subscriptions returns the number of open subscriptions.
func (h *Hub) Subscriptions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

// Subscription is a queue of changes for one reader.
type Subscription struct {
	id    uint64
	hub   *Hub
	kinds map[Kind]bool

	mu     sync.Mutex
	queue  []Change
	closed bool
	ready  chan struct{}
}

func (s *Subscription) push(c Change) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, c)
	s.mu.Unlock()

	select {
	case s.ready <- struct{}{}:
	default:
	}
}

// TryNext dequeues the oldest pending change without blocking.
func (s *Subscription) TryNext() (Change, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return Change{}, false
	}
	c := s.queue[0]
	s.queue[0] = Change{}
	s.queue = s.queue[1:]

	return c, true
}

// Ready is signaled when changes may be pending. Use TryNext to drain them.
func (s *Subscription) Ready() <-chan struct{} { return s.ready }

// Pending returns the number of queued changes.
func (s *Subscription) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Close stops the subscription and drops pending changes. Safe to call more than once.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.queue = nil
	s.mu.Unlock()

	s.hub.unsubscribe(s.id)
}
