package bus

import "time"

// Listener receives values published by a Service. Only ProcessAdd carries
// traffic in this pipeline; remove and update exist for contract completeness.
type Listener[V any] interface {
	ProcessAdd(v V)
	ProcessRemove(v V)
	ProcessUpdate(v V)
}

// Service is a keyed latest-value store that notifies its listeners.
type Service[K comparable, V any] interface {
	// Get returns the current value for key; ok is false when absent.
	Get(key K) (V, bool)
	// OnMessage ingests a new or updated value.
	OnMessage(v V)
	AddListener(l Listener[V])
	Listeners() []Listener[V]
}

// AddFunc adapts a function into a Listener that only handles adds.
type AddFunc[V any] func(v V)

func (f AddFunc[V]) ProcessAdd(v V) { f(v) }
func (AddFunc[V]) ProcessRemove(V)  {}
func (AddFunc[V]) ProcessUpdate(V)  {}

// Observer is notified after every fan-out.
type Observer interface {
	ObservePublish(stage string, listeners int, d time.Duration)
}

// Option configures a Store.
type Option func(*options)

type options struct {
	observer Observer
}

// WithObserver attaches a fan-out observer.
func WithObserver(o Observer) Option {
	return func(opt *options) {
		opt.observer = o
	}
}

// Store is the concrete Service: one value per key plus an ordered listener
// list. It is single-writer; concurrent callers must serialize externally.
type Store[K comparable, V any] struct {
	name      string
	keyOf     func(V) K
	values    map[K]V
	listeners []Listener[V]
	observer  Observer
}

var _ Service[string, int] = (*Store[string, int])(nil)

// NewStore creates a store that derives each value's key with keyOf.
func NewStore[K comparable, V any](name string, keyOf func(V) K, opts ...Option) *Store[K, V] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[K, V]{
		name:     name,
		keyOf:    keyOf,
		values:   make(map[K]V),
		observer: o.observer,
	}
}

// Name returns the stage name used for metrics and logs.
func (s *Store[K, V]) Name() string {
	return s.name
}

// Get returns the current value for key.
func (s *Store[K, V]) Get(key K) (V, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Put replaces the value at its derived key without notifying listeners.
func (s *Store[K, V]) Put(v V) K {
	key := s.keyOf(v)
	s.values[key] = v
	return key
}

// Publish calls ProcessAdd on every listener in registration order.
func (s *Store[K, V]) Publish(v V) {
	var start time.Time
	if s.observer != nil {
		start = time.Now()
	}
	for _, l := range s.listeners {
		l.ProcessAdd(v)
	}
	if s.observer != nil {
		s.observer.ObservePublish(s.name, len(s.listeners), time.Since(start))
	}
}

// OnMessage stores v and then publishes it.
func (s *Store[K, V]) OnMessage(v V) {
	s.Put(v)
	s.Publish(v)
}

// AddListener appends a listener; listeners are notified in this order.
func (s *Store[K, V]) AddListener(l Listener[V]) {
	if l == nil {
		return
	}
	s.listeners = append(s.listeners, l)
}

// Listeners returns a copy of the registered listeners.
func (s *Store[K, V]) Listeners() []Listener[V] {
	out := make([]Listener[V], len(s.listeners))
	copy(out, s.listeners)
	return out
}

// Len returns the number of stored keys.
func (s *Store[K, V]) Len() int {
	return len(s.values)
}

// Range calls fn for every stored value until fn returns false. Order is unspecified.
func (s *Store[K, V]) Range(fn func(K, V) bool) {
	for k, v := range s.values {
		if !fn(k, v) {
			return
		}
	}
}
