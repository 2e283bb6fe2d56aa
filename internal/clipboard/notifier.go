package clipboard

import (
	"sync"

	"go.uber.org/zap"
)

// Subscriber is told that the history changed. It carries no payload;
// subscribers re-read the history themselves.
type Subscriber interface {
	OnUpdated()
}

// SubscriberFunc adapts a plain function to Subscriber.
type SubscriberFunc func()

func (f SubscriberFunc) OnUpdated() { f() }

// Notifier fans history updates out to subscribers. Publish runs every
// subscriber synchronously on the caller's goroutine.
type Notifier struct {
	mu     sync.RWMutex
	subs   map[uint64]Subscriber
	nextID uint64
	logger *zap.Logger
}

func NewNotifier(logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{
		subs:   make(map[uint64]Subscriber),
		logger: logger,
	}
}

// Subscribe registers s and returns a function that removes it again. The
// returned function may be called more than once.
func (n *Notifier) Subscribe(s Subscriber) (unsubscribe func()) {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subs[id] = s
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, id)
			n.mu.Unlock()
		})
	}
}

// Publish notifies every subscriber. A panicking subscriber is logged and
// does not prevent the others from running.
func (n *Notifier) Publish() {
	n.mu.RLock()
	subs := make([]Subscriber, 0, len(n.subs))
	for _, s := range n.subs {
		subs = append(subs, s)
	}
	n.mu.RUnlock()

	for _, s := range subs {
		n.deliver(s)
	}
}

func (n *Notifier) deliver(s Subscriber) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("Update subscriber panicked", zap.Any("panic", r))
		}
	}()
	s.OnUpdated()
}

// Len returns the number of registered subscribers.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}
