package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strs(fields [][]byte) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = string(f)
	}
	return out
}

func TestSplitFields(t *testing.T) {
	assert.Equal(t, []string{"91282CJL6", "99-16+", "1000000", "BID"},
		strs(SplitFields(nil, []byte("91282CJL6,99-16+,1000000,BID\r\n"), ',')))
	assert.Equal(t, []string{"a", "", "c"}, strs(SplitFields(nil, []byte("a, ,c"), ',')))
	assert.Equal(t, []string{"a", ""}, strs(SplitFields(nil, []byte("a,"), ',')))
	assert.Empty(t, SplitFields(nil, []byte("   \n"), ','))
}

func TestSplitFieldsReusesDst(t *testing.T) {
	buf := make([][]byte, 0, 8)
	buf = SplitFields(buf[:0], []byte("x,y"), ',')
	assert.Equal(t, 8, cap(buf))
	assert.Equal(t, []string{"x", "y"}, strs(buf))
}

func TestParseInt(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"0", 0, true},
		{"1000000", 1000000, true},
		{"-42", -42, true},
		{"+7", 7, true},
		{"", 0, false},
		{"-", 0, false},
		{"1e6", 0, false},
		{"9223372036854775807", 9223372036854775807, true},
		{"9223372036854775808", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseInt([]byte(c.in))
		assert.Equal(t, c.ok, ok, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}
