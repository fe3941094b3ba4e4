package refdata

import (
	"strconv"
	"time"

	"bondflow/internal/model"
	"bondflow/internal/model/enum"

	"github.com/shopspring/decimal"
)

type treasury struct {
	tenor    int
	cusip    string
	maturity time.Time
	coupon   string
	pv01     string
}

var treasuries = []treasury{
	{2, "91282CJL6", date(2025, time.November, 30), "0.04875", "0.019851"},
	{3, "91282CJK8", date(2026, time.November, 15), "0.04625", "0.029309"},
	{5, "91282CJN2", date(2028, time.November, 30), "0.04375", "0.048643"},
	{7, "91282CJM4", date(2030, time.November, 30), "0.04375", "0.065843"},
	{10, "91282CJJ1", date(2033, time.November, 15), "0.04500", "0.087939"},
	{20, "912810TW8", date(2043, time.November, 30), "0.04750", "0.12527"},
	{30, "912810TV0", date(2053, time.November, 15), "0.04750", "0.16915"},
}

// Default returns the on-the-run US treasuries from 2Y to 30Y.
func Default() *Registry {
	reg := NewRegistry()
	for _, t := range treasuries {
		err := reg.AddSecurity(Security{
			Product: model.Product{
				ID:       t.cusip,
				Type:     enum.ProductTypeBond,
				Ticker:   Ticker(t.tenor),
				Tenor:    t.tenor,
				Coupon:   decimal.RequireFromString(t.coupon),
				Maturity: t.maturity,
			},
			PV01Factor: decimal.RequireFromString(t.pv01),
		})
		if err != nil {
			panic(err)
		}
	}
	return reg
}

// Ticker renders the ticker of a treasury with the given tenor.
func Ticker(tenor int) string {
	return "US" + strconv.Itoa(tenor) + "Y"
}
