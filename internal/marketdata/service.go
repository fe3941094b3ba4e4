// Package marketdata assembles order book snapshots from the market data
// input and answers top-of-book and depth queries on them.
package marketdata

import (
	"context"
	"io"

	"bondflow/internal/bus"
	"bondflow/internal/feed"
	"bondflow/internal/model"
	"bondflow/internal/model/enum"
	"bondflow/internal/refdata"
	"bondflow/pkg/exception"
	"bondflow/pkg/fractional"

	"github.com/tidwall/btree"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

const Source = "marketdata"

// Service stores the latest order book per product.
type Service struct {
	*bus.Store[string, model.OrderBook]
	cfg  Config
	conn *Connector
}

func NewService(cfg Config, reg *refdata.Registry, in feed.Options, opts ...bus.Option) (*Service, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if in.Source == "" {
		in.Source = Source
	}
	s := &Service{
		Store: bus.NewStore[string, model.OrderBook]("marketdata", func(b model.OrderBook) string { return b.Product.ID }, opts...),
		cfg:   cfg,
	}
	s.conn = &Connector{service: s, registry: reg, in: in}
	return s, nil
}

// OnMessage stores book and notifies the listeners.
func (s *Service) OnMessage(book model.OrderBook) error {
	return s.Ingest(book)
}

func (s *Service) BookDepth() int {
	return s.cfg.BookDepth
}

func (s *Service) Connector() *Connector {
	return s.conn
}

// BestBidOffer returns the top of the stored book for id.
func (s *Service) BestBidOffer(id string) (model.BidOffer, error) {
	book, ok := s.Lookup(id)
	if !ok {
		return model.BidOffer{}, errors.Wrapf(exception.ErrEmptyBook, "product id: %s", id)
	}
	bo, ok := book.BestBidOffer()
	if !ok {
		return model.BidOffer{}, errors.Wrapf(exception.ErrEmptyBook, "product id: %s, bids: %d, offers: %d", id, len(book.Bids), len(book.Offers))
	}
	return bo, nil
}

// AggregateDepth collapses the stored book for id into one level per
// distinct price, best level first. The stored book is left untouched.
func (s *Service) AggregateDepth(id string) (model.OrderBook, error) {
	book, ok := s.Lookup(id)
	if !ok || (len(book.Bids) == 0 && len(book.Offers) == 0) {
		return model.OrderBook{}, errors.Wrapf(exception.ErrEmptyBook, "product id: %s", id)
	}

	bids := aggregate(book.Bids)
	out := model.OrderBook{
		Product: book.Product,
		Bids:    levels(bids, enum.PricingSideBid, true),
	}

	switch s.cfg.OfferAggregation {
	case AggregationCorrected:
		out.Offers = levels(aggregate(book.Offers), enum.PricingSideOffer, false)
	default:
		out.Offers = levels(bids, enum.PricingSideOffer, false)
	}
	return out, nil
}

func aggregate(orders []model.Order) *btree.BTreeG[model.Order] {
	m := btree.NewBTreeG(func(a, b model.Order) bool { return a.Price.LessThan(b.Price) })
	for _, o := range orders {
		level, ok := m.Get(model.Order{Price: o.Price})
		if !ok {
			level = model.Order{Price: o.Price}
		}
		level.Quantity += o.Quantity
		m.Set(level)
	}
	return m
}

func levels(m *btree.BTreeG[model.Order], side enum.PricingSide, descending bool) []model.Order {
	out := make([]model.Order, 0, m.Len())
	collect := func(level model.Order) bool {
		level.Side = side
		out = append(out, level)
		return true
	}
	if descending {
		m.Reverse(collect)
	} else {
		m.Scan(collect)
	}
	return out
}

// Connector reads "productId,price,quantity,side" records and emits a book
// every 2 x BookDepth orders.
type Connector struct {
	bus.SubscribeOnly[model.OrderBook]
	service  *Service
	registry *refdata.Registry
	in       feed.Options
}

func (c *Connector) Subscribe(ctx context.Context, r io.Reader) error {
	batch := 2 * c.service.BookDepth()
	var (
		bids, offers []model.Order
		count        int
	)

	err := feed.Scan(ctx, r, c.in, func(_ int, fields [][]byte) error {
		product, order, err := c.parse(fields)
		if err != nil {
			return err
		}

		if order.Side == enum.PricingSideBid {
			bids = append(bids, order)
		} else {
			offers = append(offers, order)
		}
		count++

		if count%batch != 0 {
			return nil
		}

		book := model.OrderBook{Product: product, Bids: bids, Offers: offers}
		bids, offers = nil, nil
		return c.service.OnMessage(book)
	})
	if err != nil {
		return err
	}

	if pending := len(bids) + len(offers); pending != 0 {
		logs.Errorf("%s: drop trailing partial batch, orders: %d, batch: %d", c.in.Source, pending, batch)
	}
	return nil
}

func (c *Connector) parse(fields [][]byte) (model.Product, model.Order, error) {
	if err := feed.Expect(fields, 4); err != nil {
		return model.Product{}, model.Order{}, err
	}
	product, err := c.registry.Resolve(string(fields[0]))
	if err != nil {
		return model.Product{}, model.Order{}, err
	}
	price, err := fractional.Decode(string(fields[1]))
	if err != nil {
		return model.Product{}, model.Order{}, err
	}
	qty, err := feed.Int(fields[2], "quantity")
	if err != nil {
		return model.Product{}, model.Order{}, err
	}
	side, err := enum.ParsePricingSide(string(fields[3]))
	if err != nil {
		return model.Product{}, model.Order{}, err
	}
	return product, model.Order{Price: price, Quantity: qty, Side: side}, nil
}
