package model

import (
	"bondflow/internal/model/enum"

	"github.com/shopspring/decimal"
)

// PriceStreamOrder is one side of a two-way stream.
type PriceStreamOrder struct {
	Price           decimal.Decimal
	VisibleQuantity int64
	HiddenQuantity  int64
	Side            enum.PricingSide
}

func (o PriceStreamOrder) fields() []string {
	return []string{
		formatPrice(o.Price),
		formatQuantity(o.VisibleQuantity),
		formatQuantity(o.HiddenQuantity),
		o.Side.String(),
	}
}

// PriceStream is a two-way market published for a product.
type PriceStream struct {
	Product Product
	Bid     PriceStreamOrder
	Offer   PriceStreamOrder
}

func (s PriceStream) Fields() []string {
	fields := make([]string, 0, 9)
	fields = append(fields, s.Product.ID)
	fields = append(fields, s.Bid.fields()...)
	return append(fields, s.Offer.fields()...)
}
