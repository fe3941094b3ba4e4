package enum

import (
	"bondflow/pkg/exception"

	"github.com/yanun0323/errors"
)

// OrderType FOK, IOC, market, limit, stop
type OrderType uint8

const (
	_order_type_beg OrderType = iota
	OrderTypeFOK
	OrderTypeIOC
	OrderTypeMarket
	OrderTypeLimit
	OrderTypeStop
	_order_type_end
)

func (t OrderType) IsAvailable() bool {
	return t > _order_type_beg && t < _order_type_end
}

func (t OrderType) String() string {
	switch t {
	case OrderTypeFOK:
		return "FOK"
	case OrderTypeIOC:
		return "IOC"
	case OrderTypeMarket:
		return "MARKET"
	case OrderTypeLimit:
		return "LIMIT"
	case OrderTypeStop:
		return "STOP"
	default:
		return "UNKNOWN"
	}
}

func ParseOrderType(s string) (OrderType, error) {
	for t := _order_type_beg + 1; t < _order_type_end; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, errors.Wrapf(exception.ErrMalformedRecord, "unknown order type %q", s)
}

// Market is the venue an execution order is routed to.
type Market uint8

const (
	_market_beg Market = iota
	MarketBrokerTec
	MarketESpeed
	MarketCME
	_market_end
)

func (m Market) IsAvailable() bool {
	return m > _market_beg && m < _market_end
}

func (m Market) String() string {
	switch m {
	case MarketBrokerTec:
		return "BROKERTEC"
	case MarketESpeed:
		return "ESPEED"
	case MarketCME:
		return "CME"
	default:
		return "UNKNOWN"
	}
}

// Markets lists the routable venues in routing order.
func Markets() []Market {
	return []Market{MarketBrokerTec, MarketESpeed, MarketCME}
}
