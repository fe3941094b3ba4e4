package model

import (
	"bondflow/internal/model/enum"

	"github.com/shopspring/decimal"
)

// Inquiry is a client request for a quote.
type Inquiry struct {
	InquiryID string
	Product   Product
	Side      enum.Side
	Quantity  int64
	Price     decimal.Decimal
	State     enum.InquiryState
}

func (i Inquiry) Fields() []string {
	return []string{
		i.InquiryID,
		i.Product.ID,
		i.Side.String(),
		formatQuantity(i.Quantity),
		formatPrice(i.Price),
		i.State.String(),
	}
}
