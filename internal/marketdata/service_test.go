package marketdata

import (
	"context"
	"fmt"
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

const cusip = "91282CJL6"

func newService(t *testing.T, cfg Config) *Service {
	t.Helper()
	s, err := NewService(cfg, refdata.Default(), feed.Options{})
	require.NoError(t, err)
	return s
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func order(price string, qty int64, side enum.PricingSide) model.Order {
	return model.Order{Price: dec(price), Quantity: qty, Side: side}
}

func TestBestBidOffer(t *testing.T) {
	s := newService(t, Config{})
	product, _ := refdata.Default().ByID(cusip)
	require.NoError(t, s.OnMessage(model.OrderBook{
		Product: product,
		Bids:    []model.Order{order("100.5", 10000, enum.PricingSideBid), order("100.75", 5000, enum.PricingSideBid)},
		Offers:  []model.Order{order("101", 8000, enum.PricingSideOffer), order("100.9", 6000, enum.PricingSideOffer)},
	}))

	bo, err := s.BestBidOffer(cusip)
	require.NoError(t, err)
	assert.True(t, bo.Bid.Price.Equal(dec("100.75")))
	assert.Equal(t, int64(5000), bo.Bid.Quantity)
	assert.True(t, bo.Offer.Price.Equal(dec("100.9")))
	assert.Equal(t, int64(6000), bo.Offer.Quantity)
}

func TestBestBidOfferMissing(t *testing.T) {
	s := newService(t, Config{})
	_, err := s.BestBidOffer(cusip)
	assert.True(t, exception.Is(err, exception.ErrEmptyBook))

	product, _ := refdata.Default().ByID(cusip)
	require.NoError(t, s.OnMessage(model.OrderBook{Product: product, Bids: []model.Order{order("99", 1, enum.PricingSideBid)}}))
	_, err = s.BestBidOffer(cusip)
	assert.True(t, exception.Is(err, exception.ErrEmptyBook))
}

func bookLines(n int, bid, offer string) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "%s,%s,%d,BID\n", cusip, bid, 1000000*(i+1))
		fmt.Fprintf(&sb, "%s,%s,%d,OFFER\n", cusip, offer, 1000000*(i+1))
	}
	return sb.String()
}

func TestSubscribeEmitsEveryTwoDepth(t *testing.T) {
	s := newService(t, Config{BookDepth: 2})
	var books []model.OrderBook
	s.AddListener(bus.OnAdd(func(b model.OrderBook) error {
		books = append(books, b)
		return nil
	}))

	// two full batches of four orders plus one trailing order
	in := bookLines(2, "99-000", "99-002") + bookLines(2, "99-010", "99-012") + cusip + ",99-000,5,BID\n"
	require.NoError(t, s.Connector().Subscribe(context.Background(), strings.NewReader(in)))

	require.Len(t, books, 2)
	assert.Len(t, books[0].Bids, 2)
	assert.Len(t, books[0].Offers, 2)
	assert.True(t, books[1].Bids[0].Price.Equal(dec("99.03125")))

	stored := s.Get(cusip)
	assert.Equal(t, books[1], stored)
}

func TestSubscribeUsesBatchCompletingProduct(t *testing.T) {
	s := newService(t, Config{BookDepth: 1})
	in := "91282CJL6,99-000,1,BID\n91282CJK8,99-002,1,OFFER\n"
	require.NoError(t, s.Connector().Subscribe(context.Background(), strings.NewReader(in)))
	assert.Equal(t, []string{"91282CJK8"}, s.Keys())
}

func TestAggregateDepthAsIs(t *testing.T) {
	s := newService(t, Config{})
	product, _ := refdata.Default().ByID(cusip)
	require.NoError(t, s.OnMessage(model.OrderBook{
		Product: product,
		Bids: []model.Order{
			order("99", 10, enum.PricingSideBid),
			order("99.5", 20, enum.PricingSideBid),
			order("99", 30, enum.PricingSideBid),
		},
		Offers: []model.Order{
			order("100", 1, enum.PricingSideOffer),
			order("100", 2, enum.PricingSideOffer),
		},
	}))

	agg, err := s.AggregateDepth(cusip)
	require.NoError(t, err)
	require.Len(t, agg.Bids, 2)
	assert.True(t, agg.Bids[0].Price.Equal(dec("99.5")))
	assert.Equal(t, int64(20), agg.Bids[0].Quantity)
	assert.Equal(t, int64(40), agg.Bids[1].Quantity)

	// offers mirror the bid levels
	require.Len(t, agg.Offers, 2)
	assert.True(t, agg.Offers[0].Price.Equal(dec("99")))
	assert.Equal(t, int64(40), agg.Offers[0].Quantity)
	assert.Equal(t, enum.PricingSideOffer, agg.Offers[0].Side)

	// the stored book is not replaced
	assert.Len(t, s.Get(cusip).Bids, 3)
}

func TestAggregateDepthCorrected(t *testing.T) {
	s := newService(t, Config{OfferAggregation: AggregationCorrected})
	product, _ := refdata.Default().ByID(cusip)
	require.NoError(t, s.OnMessage(model.OrderBook{
		Product: product,
		Bids:    []model.Order{order("99", 10, enum.PricingSideBid)},
		Offers: []model.Order{
			order("100.5", 1, enum.PricingSideOffer),
			order("100", 2, enum.PricingSideOffer),
			order("100", 3, enum.PricingSideOffer),
		},
	}))

	agg, err := s.AggregateDepth(cusip)
	require.NoError(t, err)
	require.Len(t, agg.Offers, 2)
	assert.True(t, agg.Offers[0].Price.Equal(dec("100")))
	assert.Equal(t, int64(5), agg.Offers[0].Quantity)
	assert.True(t, agg.Offers[1].Price.Equal(dec("100.5")))
}

func TestAggregateDepthKeepsOffGridPrices(t *testing.T) {
	s := newService(t, Config{OfferAggregation: AggregationCorrected})
	product, _ := refdata.Default().ByID(cusip)
	require.NoError(t, s.OnMessage(model.OrderBook{
		Product: product,
		Bids: []model.Order{
			order("100.5", 10, enum.PricingSideBid),
			order("100.501953125", 5, enum.PricingSideBid),
			order("100.50", 1, enum.PricingSideBid),
		},
		Offers: []model.Order{order("101", 1, enum.PricingSideOffer)},
	}))

	agg, err := s.AggregateDepth(cusip)
	require.NoError(t, err)
	require.Len(t, agg.Bids, 2)
	assert.True(t, agg.Bids[0].Price.Equal(dec("100.501953125")))
	assert.Equal(t, int64(5), agg.Bids[0].Quantity)
	assert.True(t, agg.Bids[1].Price.Equal(dec("100.5")))
	assert.Equal(t, int64(11), agg.Bids[1].Quantity)
}

func TestConfigValidate(t *testing.T) {
	_, err := NewService(Config{BookDepth: -1}, refdata.Default(), feed.Options{})
	assert.True(t, exception.Is(err, exception.ErrInvalidArgument))

	a, err := ParseAggregation("corrected")
	require.NoError(t, err)
	assert.Equal(t, AggregationCorrected, a)
	_, err = ParseAggregation("fixed")
	assert.Error(t, err)
}
