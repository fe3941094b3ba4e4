package model

import (
	"strconv"
	"time"

	"bondflow/internal/model/enum"
	"bondflow/pkg/fractional"

	"github.com/shopspring/decimal"
)

// Product is the immutable identity of a tradable security. Stages only use
// its ID as a key.
type Product struct {
	ID       string
	Type     enum.ProductType
	Ticker   string
	Tenor    int
	Coupon   decimal.Decimal
	Maturity time.Time
}

func (p Product) IsZero() bool {
	return p.ID == ""
}

// Record is implemented by every entity written to a historical sink.
type Record interface {
	Fields() []string
}

func formatPrice(p decimal.Decimal) string {
	return fractional.Encode(p)
}

func formatQuantity(q int64) string {
	return strconv.FormatInt(q, 10)
}

func formatBool(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}
