// Package historical persists the latest state of an entity stream as
// append-only, timestamped lines.
package historical

import (
	"time"

	"bondflow/internal/bus"
	"bondflow/internal/model"
	"bondflow/pkg/exception"

	"github.com/yanun0323/logs"
)

// Clock returns the current time. Tests inject a fixed one.
type Clock func() time.Time

// Metrics counts sink activity. Implementations must accept calls on a nil
// receiver.
type Metrics interface {
	SinkWritten(sink string)
	SinkFailed(sink string)
}

// Service keeps the last persisted entity per key and writes one line per
// update.
type Service[K comparable, V model.Record] struct {
	*bus.Store[K, V]
	conn *Connector[V]
}

func NewService[K comparable, V model.Record](name string, key func(V) K, w RecordWriter, clock Clock, m Metrics, opts ...bus.Option) *Service[K, V] {
	if clock == nil {
		clock = time.Now
	}
	return &Service[K, V]{
		Store: bus.NewStore[K, V](name, key, opts...),
		conn:  &Connector[V]{name: name, w: w, clock: clock, metrics: m},
	}
}

// Listener subscribes the service to an upstream store.
func (s *Service[K, V]) Listener() bus.Listener[V] {
	return bus.OnAdd(s.PersistData)
}

// PersistData stores v and writes it through the connector.
func (s *Service[K, V]) PersistData(v V) error {
	s.Put(v)
	return s.conn.Publish(v)
}

func (s *Service[K, V]) Connector() *Connector[V] {
	return s.conn
}

// Close releases the underlying writer.
func (s *Service[K, V]) Close() error {
	return s.conn.w.Close()
}

// Connector turns entities into timestamped records. Write failures are
// counted and dropped, never returned.
type Connector[V model.Record] struct {
	bus.PublishOnly
	name    string
	w       RecordWriter
	clock   Clock
	metrics Metrics
}

func (c *Connector[V]) Publish(v V) error {
	rec := Record{Stream: c.name, At: c.clock(), Fields: v.Fields()}
	if err := c.w.Write(rec); err != nil {
		if c.metrics != nil {
			c.metrics.SinkFailed(c.name)
		}
		if !exception.Is(err, exception.ErrSinkUnavailable) {
			logs.Errorf("%s: drop record, err: %+v", c.name, err)
		}
		return nil
	}
	if c.metrics != nil {
		c.metrics.SinkWritten(c.name)
	}
	return nil
}
