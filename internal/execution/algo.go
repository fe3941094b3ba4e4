// Package execution decides algo orders from order book updates and routes
// them to a market.
package execution

import (
	"strconv"

	"bondflow/internal/bus"
	"bondflow/internal/model"
	"bondflow/internal/model/enum"

	"github.com/shopspring/decimal"
)

const (
	orderIDPrefix = "AlgoExec"
	ParentOrderID = "PARENT_ORDER_ID"
)

// MaxSpread is the widest spread, inclusive, the algo crosses: 1/128.
var MaxSpread = decimal.NewFromInt(1).Div(decimal.NewFromInt(128))

// Metrics counts execution activity. Implementations must accept calls on a
// nil receiver.
type Metrics interface {
	AlgoDecision(side string)
	OrderRouted(market string)
}

// AlgoService turns tight order books into market orders. Sides alternate
// between taking the offer and hitting the bid.
type AlgoService struct {
	*bus.Store[string, model.ExecutionOrder]
	count   int
	metrics Metrics
}

func NewAlgoService(m Metrics, opts ...bus.Option) *AlgoService {
	return &AlgoService{
		Store:   bus.NewStore[string, model.ExecutionOrder]("algoexecution", productKey, opts...),
		metrics: m,
	}
}

func productKey(o model.ExecutionOrder) string {
	return o.Product.ID
}

// Listener subscribes the service to order book updates.
func (s *AlgoService) Listener() bus.Listener[model.OrderBook] {
	return bus.OnAdd(s.OnOrderBook)
}

// OnOrderBook stores and fans out a decision when the spread of book is at
// most MaxSpread. Books with an empty side are ignored.
func (s *AlgoService) OnOrderBook(book model.OrderBook) error {
	bo, ok := book.BestBidOffer()
	if !ok {
		return nil
	}
	if bo.Spread().GreaterThan(MaxSpread) {
		return nil
	}

	order := model.ExecutionOrder{
		Product:       book.Product,
		OrderID:       orderIDPrefix + strconv.Itoa(s.count),
		Type:          enum.OrderTypeMarket,
		ParentOrderID: ParentOrderID,
	}
	if s.count%2 == 0 {
		order.Side = enum.PricingSideOffer
		order.Price = bo.Offer.Price
		order.VisibleQuantity = bo.Offer.Quantity
	} else {
		order.Side = enum.PricingSideBid
		order.Price = bo.Bid.Price
		order.VisibleQuantity = bo.Bid.Quantity
	}
	s.count++

	if s.metrics != nil {
		s.metrics.AlgoDecision(order.Side.String())
	}
	return s.Ingest(order)
}

// Count is the number of decisions taken so far.
func (s *AlgoService) Count() int {
	return s.count
}

// SetCount seeds the decision counter.
func (s *AlgoService) SetCount(n int) {
	s.count = n
}

func (s *AlgoService) Reset() {
	s.count = 0
}
