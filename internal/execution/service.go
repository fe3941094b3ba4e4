package execution

import (
	"bondflow/internal/bus"
	"bondflow/internal/model"
	"bondflow/internal/model/enum"

	"github.com/yanun0323/logs"
)

// Service keeps the latest executed order per product. Every order is routed
// to a market before the listeners see it.
type Service struct {
	*bus.Store[string, model.ExecutionOrder]
	conn *Connector
}

func NewService(m Metrics, opts ...bus.Option) *Service {
	s := &Service{
		Store: bus.NewStore[string, model.ExecutionOrder]("execution", productKey, opts...),
	}
	s.conn = &Connector{markets: enum.Markets(), metrics: m, routed: make(map[enum.Market]int)}
	return s
}

// Listener subscribes the service to algo decisions.
func (s *Service) Listener() bus.Listener[model.ExecutionOrder] {
	return bus.OnAdd(s.ExecuteOrder)
}

// ExecuteOrder stores order, routes it and notifies the listeners.
func (s *Service) ExecuteOrder(order model.ExecutionOrder) error {
	return s.Apply(order, s.conn.Publish)
}

func (s *Service) Connector() *Connector {
	return s.conn
}

// Connector routes orders to markets in turn. Nothing leaves the process.
type Connector struct {
	bus.PublishOnly
	markets []enum.Market
	next    int
	routed  map[enum.Market]int
	metrics Metrics
}

func (c *Connector) Publish(order model.ExecutionOrder) error {
	market := c.markets[c.next%len(c.markets)]
	c.next++
	c.routed[market]++
	if c.metrics != nil {
		c.metrics.OrderRouted(market.String())
	}
	logs.Infof("route order %s %s %s qty %d to %s", order.OrderID, order.Product.ID, order.Side, order.Quantity(), market)
	return nil
}

// Routed returns how many orders went to market.
func (c *Connector) Routed(market enum.Market) int {
	return c.routed[market]
}

// SetCount seeds the routing counter; the next order goes to market n mod
// the number of markets.
func (c *Connector) SetCount(n int) {
	c.next = n
}

// Reset restarts routing at the first market and clears the per-market
// tallies.
func (c *Connector) Reset() {
	c.next = 0
	clear(c.routed)
}
