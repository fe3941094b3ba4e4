// Package booking books trades read from the trades input and trades derived
// from executed algo orders.
package booking

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

	"github.com/yanun0323/errors"
)

const (
	Source = "trades"

	OriginFeed      = "feed"
	OriginExecution = "execution"
)

// DefaultBooks are the books execution trades rotate through.
func DefaultBooks() []string {
	return []string{"TRSY1", "TRSY2", "TRSY3"}
}

// Metrics counts booked trades. Implementations must accept calls on a nil
// receiver.
type Metrics interface {
	TradeBooked(origin string)
}

// Service stores trades by trade id. Re-booking a trade id overwrites it.
type Service struct {
	*bus.Store[string, model.Trade]
	books   []string
	count   int
	metrics Metrics
	conn    *Connector
}

func NewService(books []string, reg *refdata.Registry, in feed.Options, m Metrics, opts ...bus.Option) (*Service, error) {
	if len(books) == 0 {
		books = DefaultBooks()
	}
	for _, b := range books {
		if b == "" {
			return nil, errors.Wrap(exception.ErrInvalidArgument, "book name is empty")
		}
	}
	if in.Source == "" {
		in.Source = Source
	}

	s := &Service{
		Store:   bus.NewStore[string, model.Trade]("booking", func(t model.Trade) string { return t.TradeID }, opts...),
		books:   append([]string(nil), books...),
		metrics: m,
	}
	s.conn = &Connector{service: s, registry: reg, in: in}
	return s, nil
}

// BookTrade stores trade and notifies the listeners once.
func (s *Service) BookTrade(trade model.Trade) error {
	return s.book(trade, OriginFeed)
}

func (s *Service) book(trade model.Trade, origin string) error {
	if s.metrics != nil {
		s.metrics.TradeBooked(origin)
	}
	return s.Ingest(trade)
}

// Listener subscribes the service to executed orders.
func (s *Service) Listener() bus.Listener[model.ExecutionOrder] {
	return bus.OnAdd(s.OnExecution)
}

// OnExecution books the aggressor side of order. The counter advances before
// the book is picked, so the first execution lands on the second book.
func (s *Service) OnExecution(order model.ExecutionOrder) error {
	s.count++
	return s.book(FromExecution(order, s.books[s.count%len(s.books)]), OriginExecution)
}

// FromExecution maps an executed order to the trade it produces on book.
// Taking the offer is a buy, hitting the bid a sell.
func FromExecution(order model.ExecutionOrder, book string) model.Trade {
	side := enum.SideBuy
	if order.Side == enum.PricingSideBid {
		side = enum.SideSell
	}
	return model.Trade{
		Product:  order.Product,
		TradeID:  order.OrderID,
		Price:    order.Price,
		Book:     book,
		Quantity: order.Quantity(),
		Side:     side,
	}
}

func (s *Service) Books() []string {
	return append([]string(nil), s.books...)
}

func (s *Service) Count() int {
	return s.count
}

func (s *Service) SetCount(n int) {
	s.count = n
}

func (s *Service) Reset() {
	s.count = 0
}

func (s *Service) Connector() *Connector {
	return s.conn
}

// Connector reads "productId,tradeId,price,book,quantity,side" records.
type Connector struct {
	bus.SubscribeOnly[model.Trade]
	service  *Service
	registry *refdata.Registry
	in       feed.Options
}

func (c *Connector) Subscribe(ctx context.Context, r io.Reader) error {
	return feed.Scan(ctx, r, c.in, func(_ int, fields [][]byte) error {
		trade, err := c.parse(fields)
		if err != nil {
			return err
		}
		return c.service.BookTrade(trade)
	})
}

func (c *Connector) parse(fields [][]byte) (model.Trade, error) {
	if err := feed.Expect(fields, 6); err != nil {
		return model.Trade{}, err
	}
	product, err := c.registry.Resolve(string(fields[0]))
	if err != nil {
		return model.Trade{}, err
	}
	if len(fields[1]) == 0 || len(fields[3]) == 0 {
		return model.Trade{}, errors.Wrap(exception.ErrMalformedRecord, "empty trade id or book")
	}
	price, err := fractional.Decode(string(fields[2]))
	if err != nil {
		return model.Trade{}, err
	}
	qty, err := feed.Int(fields[4], "quantity")
	if err != nil {
		return model.Trade{}, err
	}
	side, err := enum.ParseSide(string(fields[5]))
	if err != nil {
		return model.Trade{}, err
	}
	return model.Trade{
		Product:  product,
		TradeID:  string(fields[1]),
		Price:    price,
		Book:     string(fields[3]),
		Quantity: qty,
		Side:     side,
	}, nil
}
