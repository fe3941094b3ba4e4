package fractional

import (
	"testing"

	"bondflow/pkg/exception"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"100-000", "100"},
		{"99-160", "99.5"},
		{"99-16+", "99.515625"},
		{"100-313", "100.98046875"},
		{"0-001", "0.00390625"},
		{"99-317", "99.99609375"},
	}
	for _, c := range cases {
		got, err := Decode(c.text)
		require.NoError(t, err, c.text)
		assert.Truef(t, got.Equal(decimal.RequireFromString(c.want)), "%s: got %s want %s", c.text, got, c.want)
	}
}

func TestDecodeAcceptsDigitFour(t *testing.T) {
	got, err := Decode("99-164")
	require.NoError(t, err)
	assert.Equal(t, "99-16+", Encode(got))
}

func TestDecodeInvalid(t *testing.T) {
	for _, text := range []string{
		"",
		"100",
		"100.5",
		"-100-000",
		"abc-000",
		"100-320",
		"100-008",
		"100-00x",
		"100-0",
		"100-0000",
		"100-a10",
	} {
		_, err := Decode(text)
		require.Errorf(t, err, "expected error for %q", text)
		assert.Truef(t, exception.Is(err, exception.ErrInvalidFormat), "error for %q should wrap ErrInvalidFormat: %v", text, err)
	}
}

func TestEncode(t *testing.T) {
	assert.Equal(t, "100-000", Encode(decimal.NewFromInt(100)))
	assert.Equal(t, "99-16+", Encode(decimal.RequireFromString("99.515625")))
	assert.Equal(t, "99-011", Encode(decimal.RequireFromString("99.03515625")))
	// 1/512 is below the grid and truncates.
	assert.Equal(t, "99-000", Encode(decimal.RequireFromString("99.001953125")))
}

func TestRoundTripGrid(t *testing.T) {
	for ticks := int64(0); ticks < 200*TicksPerPoint; ticks++ {
		price := FromTicks(ticks)
		text := Encode(price)
		back, err := Decode(text)
		require.NoError(t, err, text)
		if !back.Equal(price) {
			t.Fatalf("decode(encode(%s)) = %s via %q", price, back, text)
		}
		if again := Encode(back); again != text {
			t.Fatalf("encode(decode(%q)) = %q", text, again)
		}
		if Ticks(price) != ticks {
			t.Fatalf("ticks mismatch: got %d want %d", Ticks(price), ticks)
		}
	}
}
