package enum

import (
	"bondflow/pkg/exception"

	"github.com/yanun0323/errors"
)

// PricingSide bid, offer
type PricingSide uint8

const (
	_pricing_side_beg PricingSide = iota
	PricingSideBid
	PricingSideOffer
	_pricing_side_end
)

func (s PricingSide) IsAvailable() bool {
	return s > _pricing_side_beg && s < _pricing_side_end
}

func (s PricingSide) String() string {
	switch s {
	case PricingSideBid:
		return "BID"
	case PricingSideOffer:
		return "OFFER"
	default:
		return "UNKNOWN"
	}
}

func ParsePricingSide(s string) (PricingSide, error) {
	switch s {
	case "BID":
		return PricingSideBid, nil
	case "OFFER":
		return PricingSideOffer, nil
	default:
		return 0, errors.Wrapf(exception.ErrMalformedRecord, "unknown pricing side %q", s)
	}
}

// Side buy, sell
type Side uint8

const (
	_side_beg Side = iota
	SideBuy
	SideSell
	_side_end
)

func (s Side) IsAvailable() bool {
	return s > _side_beg && s < _side_end
}

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Sign is +1 for buys and -1 for sells.
func (s Side) Sign() int64 {
	if s == SideSell {
		return -1
	}
	return 1
}

func ParseSide(s string) (Side, error) {
	switch s {
	case "BUY":
		return SideBuy, nil
	case "SELL":
		return SideSell, nil
	default:
		return 0, errors.Wrapf(exception.ErrMalformedRecord, "unknown side %q", s)
	}
}
