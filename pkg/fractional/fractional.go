// Package fractional converts US treasury prices between decimal values and
// the fractional "<int>-<xy><z>" notation, where xy counts 32nds and z counts
// eighths of a 32nd ('+' stands for 4/8).
package fractional

import (
	"strconv"

	"bondflow/pkg/exception"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
)

// TicksPerPoint is the number of 1/256 ticks in one point of price.
const TicksPerPoint = 256

const (
	separator = '-'
	half      = '+'

	thirtySeconds = 32
	eighths       = 8
)

var ticksPerPointDecimal = decimal.NewFromInt(TicksPerPoint)

// Tick is the smallest price increment, 1/256.
var Tick = decimal.NewFromInt(1).Div(ticksPerPointDecimal)

// Decode parses a fractional price such as "99-16+" into its decimal value.
func Decode(text string) (decimal.Decimal, error) {
	dash := -1
	for i := 0; i < len(text); i++ {
		if text[i] == separator {
			dash = i
			break
		}
	}
	if dash <= 0 {
		return decimal.Zero, errors.Wrapf(exception.ErrInvalidFormat, "missing separator in price %q", text)
	}

	integer, err := strconv.ParseInt(text[:dash], 10, 64)
	if err != nil || integer < 0 {
		return decimal.Zero, errors.Wrapf(exception.ErrInvalidFormat, "invalid integer part in price %q", text)
	}

	frac := text[dash+1:]
	if len(frac) != 3 {
		return decimal.Zero, errors.Wrapf(exception.ErrInvalidFormat, "invalid fractional part in price %q", text)
	}

	xy, ok := parseTwoDigits(frac[0], frac[1])
	if !ok || xy >= thirtySeconds {
		return decimal.Zero, errors.Wrapf(exception.ErrInvalidFormat, "32nds out of range in price %q", text)
	}

	var z int64
	switch c := frac[2]; {
	case c == half:
		z = 4
	case c >= '0' && c <= '7':
		z = int64(c - '0')
	default:
		return decimal.Zero, errors.Wrapf(exception.ErrInvalidFormat, "eighths out of range in price %q", text)
	}

	ticks := integer*TicksPerPoint + xy*eighths + z
	return decimal.NewFromInt(ticks).Div(ticksPerPointDecimal), nil
}

// MustDecode is Decode for literals known to be well formed.
func MustDecode(text string) decimal.Decimal {
	p, err := Decode(text)
	if err != nil {
		panic(err)
	}
	return p
}

// Encode renders a decimal price in fractional notation. Precision below
// 1/256 is truncated.
func Encode(price decimal.Decimal) string {
	return string(AppendEncode(make([]byte, 0, 16), price))
}

// AppendEncode appends the fractional notation of price to buf.
func AppendEncode(buf []byte, price decimal.Decimal) []byte {
	integer := price.IntPart()
	frac := price.Sub(decimal.NewFromInt(integer))
	ticks := frac.Mul(ticksPerPointDecimal).Floor().IntPart()
	xy := ticks / eighths
	z := ticks % eighths

	buf = strconv.AppendInt(buf, integer, 10)
	buf = append(buf, separator)
	if xy < 10 {
		buf = append(buf, '0')
	}
	buf = strconv.AppendInt(buf, xy, 10)
	if z == 4 {
		return append(buf, half)
	}
	return append(buf, byte('0'+z))
}

// Ticks returns floor(price * 256), an ordered integer key for prices on the
// 1/256 grid.
func Ticks(price decimal.Decimal) int64 {
	return price.Mul(ticksPerPointDecimal).Floor().IntPart()
}

// FromTicks is the inverse of Ticks for grid prices.
func FromTicks(ticks int64) decimal.Decimal {
	return decimal.NewFromInt(ticks).Div(ticksPerPointDecimal)
}

func parseTwoDigits(a, b byte) (int64, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int64(a-'0')*10 + int64(b-'0'), true
}
