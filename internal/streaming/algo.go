// Package streaming derives two-way price streams from quotes and publishes
// them.
package streaming

import (
	"bondflow/internal/bus"
	"bondflow/internal/model"
	"bondflow/internal/model/enum"

	"github.com/shopspring/decimal"
)

const (
	smallVisible = 1_000_000
	largeVisible = 2_000_000
	hiddenRatio  = 2
)

var two = decimal.NewFromInt(2)

// AlgoService builds a PriceStream for every quote while enabled. Visible
// size alternates between 1MM and 2MM per published stream.
type AlgoService struct {
	*bus.Store[string, model.PriceStream]
	enabled bool
	count   int
}

func NewAlgoService(enabled bool, opts ...bus.Option) *AlgoService {
	return &AlgoService{
		Store:   bus.NewStore[string, model.PriceStream]("algostreaming", productKey, opts...),
		enabled: enabled,
	}
}

func productKey(s model.PriceStream) string {
	return s.Product.ID
}

// Listener subscribes the service to quotes.
func (s *AlgoService) Listener() bus.Listener[model.Quote] {
	return bus.OnAdd(s.PublishPrice)
}

// PublishPrice derives and fans out the stream for q. It does nothing while
// the service is disabled.
func (s *AlgoService) PublishPrice(q model.Quote) error {
	if !s.enabled {
		return nil
	}

	visible := int64(smallVisible)
	if s.count%2 != 0 {
		visible = largeVisible
	}
	s.count++

	half := q.Spread.Div(two)
	stream := model.PriceStream{
		Product: q.Product,
		Bid: model.PriceStreamOrder{
			Price:           q.Mid.Sub(half),
			VisibleQuantity: visible,
			HiddenQuantity:  hiddenRatio * visible,
			Side:            enum.PricingSideBid,
		},
		Offer: model.PriceStreamOrder{
			Price:           q.Mid.Add(half),
			VisibleQuantity: visible,
			HiddenQuantity:  hiddenRatio * visible,
			Side:            enum.PricingSideOffer,
		},
	}
	return s.Ingest(stream)
}

func (s *AlgoService) Enabled() bool {
	return s.enabled
}

// Count is the number of streams published so far.
func (s *AlgoService) Count() int {
	return s.count
}

// SetCount seeds the stream counter. An odd count starts on the 2MM size.
func (s *AlgoService) SetCount(n int) {
	s.count = n
}

func (s *AlgoService) Reset() {
	s.count = 0
}
