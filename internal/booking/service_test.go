package booking

import (
	"context"
	"strings"
	"testing"

	"bondflow/internal/bus"
	"bondflow/internal/feed"
	"bondflow/internal/model"
	"bondflow/internal/model/enum"
	"bondflow/internal/refdata"
	"bondflow/pkg/exception"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tally map[string]int

func (t tally) TradeBooked(origin string) { t[origin]++ }

func newService(t *testing.T, m Metrics) *Service {
	t.Helper()
	s, err := NewService(nil, refdata.Default(), feed.Options{}, m)
	require.NoError(t, err)
	return s
}

func TestSubscribe(t *testing.T) {
	m := tally{}
	s := newService(t, m)
	var got []model.Trade
	s.AddListener(bus.OnAdd(func(tr model.Trade) error {
		got = append(got, tr)
		return nil
	}))

	in := "91282CJL6,T1,99-16+,TRSY1,1000000,BUY\n" +
		"91282CJL6,T2,99-160,TRSY2,2000000,SELL\n" +
		"91282CJL6,T1,99-170,TRSY3,3000000,SELL\n"
	require.NoError(t, s.Connector().Subscribe(context.Background(), strings.NewReader(in)))

	// one notification per booking
	require.Len(t, got, 3)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, "TRSY3", s.Get("T1").Book)
	assert.Equal(t, enum.SideSell, s.Get("T1").Side)
	assert.True(t, got[0].Price.Equal(decimal.RequireFromString("99.515625")))
	assert.Equal(t, 3, m[OriginFeed])
}

func TestSubscribeRejectsBadSide(t *testing.T) {
	s, err := NewService(nil, refdata.Default(), feed.Options{Policy: feed.PolicyAbort}, nil)
	require.NoError(t, err)
	err = s.Connector().Subscribe(context.Background(), strings.NewReader("91282CJL6,T1,99-000,TRSY1,1,HOLD\n"))
	assert.True(t, exception.Is(err, exception.ErrMalformedRecord))
}

func TestOnExecutionRoundRobin(t *testing.T) {
	m := tally{}
	s := newService(t, m)
	var got []model.Trade
	s.AddListener(bus.OnAdd(func(tr model.Trade) error {
		got = append(got, tr)
		return nil
	}))

	product, _ := refdata.Default().ByID("91282CJL6")
	orders := []model.ExecutionOrder{
		{Product: product, Side: enum.PricingSideOffer, OrderID: "AlgoExec0", VisibleQuantity: 100, HiddenQuantity: 50},
		{Product: product, Side: enum.PricingSideBid, OrderID: "AlgoExec1", VisibleQuantity: 10},
		{Product: product, Side: enum.PricingSideOffer, OrderID: "AlgoExec2", VisibleQuantity: 1},
		{Product: product, Side: enum.PricingSideBid, OrderID: "AlgoExec3", VisibleQuantity: 1},
	}
	for _, o := range orders {
		require.NoError(t, s.OnExecution(o))
	}

	require.Len(t, got, 4)
	assert.Equal(t, []string{"TRSY2", "TRSY3", "TRSY1", "TRSY2"}, []string{got[0].Book, got[1].Book, got[2].Book, got[3].Book})
	assert.Equal(t, enum.SideBuy, got[0].Side)
	assert.Equal(t, enum.SideSell, got[1].Side)
	assert.Equal(t, int64(150), got[0].Quantity)
	assert.Equal(t, "AlgoExec0", got[0].TradeID)
	assert.Equal(t, 4, s.Count())
	assert.Equal(t, 4, m[OriginExecution])
}

func TestCustomBooks(t *testing.T) {
	s, err := NewService([]string{"A", "B"}, refdata.Default(), feed.Options{}, nil)
	require.NoError(t, err)
	require.NoError(t, s.OnExecution(model.ExecutionOrder{OrderID: "x"}))
	assert.Equal(t, "B", s.Get("x").Book)

	_, err = NewService([]string{"A", ""}, refdata.Default(), feed.Options{}, nil)
	assert.True(t, exception.Is(err, exception.ErrInvalidArgument))
}
