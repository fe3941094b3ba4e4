// Package gui writes a throttled feed of quotes for a UI.
package gui

import (
	"time"

	"bondflow/internal/bus"
	"bondflow/internal/historical"
	"bondflow/internal/model"
	"bondflow/pkg/exception"

	"github.com/yanun0323/logs"
)

// DefaultThrottle is the minimum gap between two written quotes.
const DefaultThrottle = 300 * time.Millisecond

// Metrics counts throttled quotes. Implementations must accept calls on a
// nil receiver.
type Metrics interface {
	historical.Metrics
	GUIThrottled()
}

// Service keeps the latest quote per product and forwards quotes to the UI
// file no more often than the throttle allows.
type Service struct {
	*bus.Store[string, model.Quote]
	conn *Connector
}

func NewService(throttle time.Duration, w historical.RecordWriter, clock historical.Clock, m Metrics, opts ...bus.Option) *Service {
	if throttle <= 0 {
		throttle = DefaultThrottle
	}
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		Store: bus.NewStore[string, model.Quote]("gui", func(q model.Quote) string { return q.Product.ID }, opts...),
		conn:  &Connector{throttle: throttle, w: w, clock: clock, metrics: m},
	}
}

// Listener subscribes the service to quotes.
func (s *Service) Listener() bus.Listener[model.Quote] {
	return bus.OnAdd(s.OnMessage)
}

// OnMessage stores q and hands it to the throttled connector.
func (s *Service) OnMessage(q model.Quote) error {
	s.Put(q)
	return s.conn.Publish(q)
}

func (s *Service) Connector() *Connector {
	return s.conn
}

func (s *Service) Close() error {
	return s.conn.w.Close()
}

// Connector writes a quote only when at least the throttle has passed since
// the last written one.
type Connector struct {
	bus.PublishOnly
	throttle time.Duration
	last     time.Time
	written  bool
	w        historical.RecordWriter
	clock    historical.Clock
	metrics  Metrics
}

func (c *Connector) Publish(q model.Quote) error {
	now := c.clock()
	if c.written && now.Sub(c.last) < c.throttle {
		if c.metrics != nil {
			c.metrics.GUIThrottled()
		}
		return nil
	}

	c.last = now
	c.written = true
	if err := c.w.Write(historical.Record{Stream: "gui", At: now, Fields: q.Fields()}); err != nil {
		if c.metrics != nil {
			c.metrics.SinkFailed("gui")
		}
		if !exception.Is(err, exception.ErrSinkUnavailable) {
			logs.Errorf("gui: drop record, err: %+v", err)
		}
		return nil
	}
	if c.metrics != nil {
		c.metrics.SinkWritten("gui")
	}
	return nil
}
