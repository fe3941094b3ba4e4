// Package position nets booked trades into per-book positions.
package position

import (
	"bondflow/internal/bus"
	"bondflow/internal/model"
)

// Service keeps the net position per product.
type Service struct {
	*bus.Store[string, model.Position]
}

func NewService(opts ...bus.Option) *Service {
	return &Service{
		Store: bus.NewStore[string, model.Position]("position", func(p model.Position) string { return p.Product.ID }, opts...),
	}
}

// Listener subscribes the service to booked trades.
func (s *Service) Listener() bus.Listener[model.Trade] {
	return bus.OnAdd(s.AddTrade)
}

// AddTrade applies the signed quantity of trade to its book, merges it with
// the stored position and notifies the listeners. A product never traded
// before starts flat.
func (s *Service) AddTrade(trade model.Trade) error {
	delta := model.NewPosition(trade.Product).With(trade.Book, trade.Side.Sign()*trade.Quantity)
	return s.Ingest(delta.Merge(s.Get(trade.Product.ID)))
}

// Aggregate returns the net quantity over every book of a product.
func (s *Service) Aggregate(productID string) int64 {
	return s.Get(productID).Aggregate()
}
