package streaming

import (
	"testing"

	"bondflow/internal/bus"
	"bondflow/internal/model"
	"bondflow/internal/model/enum"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bond = model.Product{ID: "91282CJL6", Tenor: 2}

func quote(mid, spread string) model.Quote {
	return model.Quote{Product: bond, Mid: decimal.RequireFromString(mid), Spread: decimal.RequireFromString(spread)}
}

func TestDisabledPublishesNothing(t *testing.T) {
	algo := NewAlgoService(false)
	called := false
	algo.AddListener(bus.OnAdd(func(model.PriceStream) error { called = true; return nil }))

	require.NoError(t, algo.PublishPrice(quote("99.5", "0.0078125")))
	assert.False(t, called)
	assert.Equal(t, 0, algo.Len())
	assert.Equal(t, 0, algo.Count())
}

func TestEnabledAlternatesSize(t *testing.T) {
	algo := NewAlgoService(true)
	svc := NewService()
	algo.AddListener(svc.Listener())

	var got []model.PriceStream
	svc.AddListener(bus.OnAdd(func(s model.PriceStream) error {
		got = append(got, s)
		return nil
	}))

	for i := 0; i < 3; i++ {
		require.NoError(t, algo.PublishPrice(quote("99.5", "0.0078125")))
	}

	require.Len(t, got, 3)
	assert.Equal(t, int64(1000000), got[0].Bid.VisibleQuantity)
	assert.Equal(t, int64(2000000), got[0].Bid.HiddenQuantity)
	assert.Equal(t, int64(2000000), got[1].Offer.VisibleQuantity)
	assert.Equal(t, int64(4000000), got[1].Offer.HiddenQuantity)
	assert.Equal(t, int64(1000000), got[2].Bid.VisibleQuantity)

	s := got[0]
	assert.True(t, s.Bid.Price.Equal(decimal.RequireFromString("99.49609375")))
	assert.True(t, s.Offer.Price.Equal(decimal.RequireFromString("99.50390625")))
	assert.Equal(t, enum.PricingSideBid, s.Bid.Side)
	assert.Equal(t, enum.PricingSideOffer, s.Offer.Side)

	assert.Equal(t, got[2], svc.Get(bond.ID))
	assert.Equal(t, 3, algo.Count())
}

func TestCounterSeeding(t *testing.T) {
	algo := NewAlgoService(true)
	algo.SetCount(5)
	require.NoError(t, algo.PublishPrice(quote("99.5", "0.0078125")))
	assert.Equal(t, int64(2000000), algo.Get(bond.ID).Bid.VisibleQuantity)
	assert.Equal(t, 6, algo.Count())

	algo.Reset()
	require.NoError(t, algo.PublishPrice(quote("99.5", "0.0078125")))
	assert.Equal(t, int64(1000000), algo.Get(bond.ID).Bid.VisibleQuantity)
	assert.Equal(t, 1, algo.Count())
}
