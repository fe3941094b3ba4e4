package model

import (
	"bondflow/internal/model/enum"

	"github.com/shopspring/decimal"
)

// Quote is a mid price with a bid/offer spread.
type Quote struct {
	Product Product
	Mid     decimal.Decimal
	Spread  decimal.Decimal
}

func (q Quote) Fields() []string {
	return []string{q.Product.ID, formatPrice(q.Mid), formatPrice(q.Spread)}
}

// Order is a single resting level on one side of a book.
type Order struct {
	Price    decimal.Decimal
	Quantity int64
	Side     enum.PricingSide
}

// BidOffer is the top of book.
type BidOffer struct {
	Bid   Order
	Offer Order
}

// Spread is offer minus bid.
func (b BidOffer) Spread() decimal.Decimal {
	return b.Offer.Price.Sub(b.Bid.Price)
}

type OrderBook struct {
	Product Product
	Bids    []Order
	Offers  []Order
}

// BestBidOffer returns the highest bid and the lowest offer. The first
// occurrence wins a tie. ok is false when either side is empty.
func (b OrderBook) BestBidOffer() (BidOffer, bool) {
	if len(b.Bids) == 0 || len(b.Offers) == 0 {
		return BidOffer{}, false
	}

	bid := b.Bids[0]
	for _, o := range b.Bids[1:] {
		if o.Price.GreaterThan(bid.Price) {
			bid = o
		}
	}

	offer := b.Offers[0]
	for _, o := range b.Offers[1:] {
		if o.Price.LessThan(offer.Price) {
			offer = o
		}
	}

	return BidOffer{Bid: bid, Offer: offer}, true
}
