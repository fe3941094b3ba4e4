package enum

import (
	"testing"

	"bondflow/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	for _, s := range []PricingSide{PricingSideBid, PricingSideOffer} {
		got, err := ParsePricingSide(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	for _, s := range []Side{SideBuy, SideSell} {
		got, err := ParseSide(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	for st := _inquiry_state_beg + 1; st < _inquiry_state_end; st++ {
		got, err := ParseInquiryState(st.String())
		require.NoError(t, err)
		assert.Equal(t, st, got)
	}
	for _, sec := range Sectors() {
		got, err := ParseSector(sec.String())
		require.NoError(t, err)
		assert.Equal(t, sec, got)
	}
}

func TestParseRejectsUnknown(t *testing.T) {
	_, err := ParseSide("HOLD")
	assert.True(t, exception.Is(err, exception.ErrMalformedRecord))

	_, err = ParsePricingSide("bid")
	assert.True(t, exception.Is(err, exception.ErrMalformedRecord))

	_, err = ParseInquiryState("OPEN")
	assert.True(t, exception.Is(err, exception.ErrMalformedRecord))
}

func TestIsAvailable(t *testing.T) {
	assert.False(t, PricingSide(0).IsAvailable())
	assert.True(t, SideSell.IsAvailable())
	assert.False(t, _side_end.IsAvailable())
	assert.True(t, MarketCME.IsAvailable())
}

func TestInquiryTerminal(t *testing.T) {
	assert.False(t, InquiryStateReceived.IsTerminal())
	assert.False(t, InquiryStateQuoted.IsTerminal())
	assert.True(t, InquiryStateDone.IsTerminal())
	assert.True(t, InquiryStateRejected.IsTerminal())
	assert.True(t, InquiryStateCustomerRejected.IsTerminal())
}

func TestSideSign(t *testing.T) {
	assert.Equal(t, int64(1), SideBuy.Sign())
	assert.Equal(t, int64(-1), SideSell.Sign())
}
