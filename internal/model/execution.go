package model

import (
	"bondflow/internal/model/enum"

	"github.com/shopspring/decimal"
)

// ExecutionOrder is an order decided by the algo and sent to a market.
type ExecutionOrder struct {
	Product         Product
	Side            enum.PricingSide
	OrderID         string
	Type            enum.OrderType
	Price           decimal.Decimal
	VisibleQuantity int64
	HiddenQuantity  int64
	ParentOrderID   string
	IsChild         bool
}

// Quantity is visible plus hidden.
func (o ExecutionOrder) Quantity() int64 {
	return o.VisibleQuantity + o.HiddenQuantity
}

func (o ExecutionOrder) Fields() []string {
	return []string{
		o.Product.ID,
		o.Side.String(),
		o.OrderID,
		o.Type.String(),
		formatPrice(o.Price),
		formatQuantity(o.VisibleQuantity),
		formatQuantity(o.HiddenQuantity),
		o.ParentOrderID,
		formatBool(o.IsChild),
	}
}

// Trade is a booked trade.
type Trade struct {
	Product  Product
	TradeID  string
	Price    decimal.Decimal
	Book     string
	Quantity int64
	Side     enum.Side
}

func (t Trade) Fields() []string {
	return []string{
		t.Product.ID,
		t.TradeID,
		formatPrice(t.Price),
		t.Book,
		formatQuantity(t.Quantity),
		t.Side.String(),
	}
}
