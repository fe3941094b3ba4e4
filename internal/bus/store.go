// Package bus holds the keyed entity stores every stage is built on and the
// listener and connector contracts that link them into a graph.
//
// Notifications are synchronous: Ingest returns only after every listener,
// and everything downstream of it, has run.
package bus

import (
	"github.com/yanun0323/errors"
)

// Metrics counts store activity. Implementations must accept calls on a nil
// receiver.
type Metrics interface {
	StoreIngested(store string)
	StoreNotified(store string)
}

type Option func(*options)

type options struct {
	guard   *Guard
	metrics Metrics
}

// WithGuard shares g between stores so nested notifications are bounded.
func WithGuard(g *Guard) Option {
	return func(o *options) { o.guard = g }
}

func WithMetrics(m Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// Store keeps the latest entity per key and fans out changes to listeners in
// registration order. It is not safe for concurrent use.
type Store[K comparable, V any] struct {
	name      string
	key       func(V) K
	data      map[K]V
	order     []K
	listeners []Listener[V]
	opt       options
}

func NewStore[K comparable, V any](name string, key func(V) K, opts ...Option) *Store[K, V] {
	s := &Store[K, V]{
		name: name,
		key:  key,
		data: make(map[K]V),
	}
	for _, fn := range opts {
		fn(&s.opt)
	}
	return s
}

func (s *Store[K, V]) Name() string {
	return s.name
}

// Ingest replaces the entity under its key and notifies every listener. The
// first listener error stops the fan-out. Nothing is stored when the guard
// refuses the call.
func (s *Store[K, V]) Ingest(v V) error {
	return s.Apply(v, nil)
}

// Apply stores v, runs fn on it and then notifies the listeners, all within
// one guarded call. An fn error stops before the listeners run.
func (s *Store[K, V]) Apply(v V, fn func(V) error) error {
	if err := s.opt.guard.enter(s.name); err != nil {
		return err
	}
	defer s.opt.guard.leave()

	s.Put(v)
	if s.opt.metrics != nil {
		s.opt.metrics.StoreIngested(s.name)
	}
	if fn != nil {
		if err := fn(v); err != nil {
			return err
		}
	}
	return s.fanOut(v)
}

// Put replaces the entity under its key without notifying.
func (s *Store[K, V]) Put(v V) {
	k := s.key(v)
	if _, ok := s.data[k]; !ok {
		s.order = append(s.order, k)
	}
	s.data[k] = v
}

// Notify fans v out to the listeners without storing it.
func (s *Store[K, V]) Notify(v V) error {
	if err := s.opt.guard.enter(s.name); err != nil {
		return err
	}
	defer s.opt.guard.leave()

	return s.fanOut(v)
}

func (s *Store[K, V]) fanOut(v V) error {
	if s.opt.metrics != nil {
		s.opt.metrics.StoreNotified(s.name)
	}

	for _, l := range s.listeners {
		if err := l.ProcessAdd(v); err != nil {
			return errors.Wrapf(err, "notify %s", s.name)
		}
	}
	return nil
}

// Get returns the entity under k or the zero value.
func (s *Store[K, V]) Get(k K) V {
	return s.data[k]
}

func (s *Store[K, V]) Lookup(k K) (V, bool) {
	v, ok := s.data[k]
	return v, ok
}

// Keys returns the keys in first-insertion order.
func (s *Store[K, V]) Keys() []K {
	keys := make([]K, len(s.order))
	copy(keys, s.order)
	return keys
}

func (s *Store[K, V]) Len() int {
	return len(s.data)
}

// AddListener appends l. The same listener may be added more than once.
func (s *Store[K, V]) AddListener(l Listener[V]) {
	s.listeners = append(s.listeners, l)
}

func (s *Store[K, V]) Listeners() []Listener[V] {
	return s.listeners
}
