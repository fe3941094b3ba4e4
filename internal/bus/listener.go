package bus

import (
	"context"
	"io"
)

// Listener receives the changes of a store.
type Listener[V any] interface {
	ProcessAdd(V) error
	ProcessRemove(V) error
	ProcessUpdate(V) error
}

// OnAdd adapts fn into a Listener that only reacts to additions.
func OnAdd[V any](fn func(V) error) Listener[V] {
	return addListener[V](fn)
}

type addListener[V any] func(V) error

func (fn addListener[V]) ProcessAdd(v V) error   { return fn(v) }
func (fn addListener[V]) ProcessRemove(V) error { return nil }
func (fn addListener[V]) ProcessUpdate(V) error { return nil }

// Connector moves entities between a stage and the outside world. Publish
// sends outbound, Subscribe reads inbound records until the reader is
// drained or ctx is done.
type Connector[V any] interface {
	Publish(V) error
	Subscribe(ctx context.Context, r io.Reader) error
}

// PublishOnly is embedded by connectors that never read input.
type PublishOnly struct{}

func (PublishOnly) Subscribe(context.Context, io.Reader) error { return nil }

// SubscribeOnly is embedded by connectors that never send output.
type SubscribeOnly[V any] struct{}

func (SubscribeOnly[V]) Publish(V) error { return nil }
