// Package pricing keeps the latest mid/spread per product, read from the
// prices input.
package pricing

import (
	"context"
	"io"

	"bondflow/internal/bus"
	"bondflow/internal/feed"
	"bondflow/internal/model"
	"bondflow/internal/refdata"
	"bondflow/pkg/fractional"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
)

const Source = "prices"

var two = decimal.NewFromInt(2)

// Service stores quotes by product id and fans them out.
type Service struct {
	*bus.Store[string, model.Quote]
	conn *Connector
}

func NewService(reg *refdata.Registry, in feed.Options, opts ...bus.Option) *Service {
	if in.Source == "" {
		in.Source = Source
	}
	s := &Service{
		Store: bus.NewStore[string, model.Quote]("pricing", func(q model.Quote) string { return q.Product.ID }, opts...),
	}
	s.conn = &Connector{service: s, registry: reg, in: in}
	return s
}

// OnMessage stores q and notifies the listeners.
func (s *Service) OnMessage(q model.Quote) error {
	return s.Ingest(q)
}

func (s *Service) Connector() *Connector {
	return s.conn
}

// Connector reads "productId,bid,offer" records.
type Connector struct {
	bus.SubscribeOnly[model.Quote]
	service  *Service
	registry *refdata.Registry
	in       feed.Options
}

func (c *Connector) Subscribe(ctx context.Context, r io.Reader) error {
	return feed.Scan(ctx, r, c.in, func(_ int, fields [][]byte) error {
		q, err := c.parse(fields)
		if err != nil {
			return err
		}
		return c.service.OnMessage(q)
	})
}

func (c *Connector) parse(fields [][]byte) (model.Quote, error) {
	if err := feed.Expect(fields, 3); err != nil {
		return model.Quote{}, err
	}
	product, err := c.registry.Resolve(string(fields[0]))
	if err != nil {
		return model.Quote{}, err
	}
	bid, err := fractional.Decode(string(fields[1]))
	if err != nil {
		return model.Quote{}, errors.Wrap(err, "bid")
	}
	offer, err := fractional.Decode(string(fields[2]))
	if err != nil {
		return model.Quote{}, errors.Wrap(err, "offer")
	}
	return NewQuote(product, bid, offer), nil
}

// NewQuote derives mid and spread from a bid and an offer.
func NewQuote(product model.Product, bid, offer decimal.Decimal) model.Quote {
	return model.Quote{
		Product: product,
		Mid:     bid.Add(offer).Div(two),
		Spread:  offer.Sub(bid),
	}
}
