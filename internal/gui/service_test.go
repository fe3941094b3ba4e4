package gui

import (
	"testing"
	"time"

	"bondflow/internal/historical"
	"bondflow/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memWriter struct {
	lines []string
}

func (m *memWriter) Write(r historical.Record) error {
	m.lines = append(m.lines, r.Line())
	return nil
}

func (m *memWriter) Close() error { return nil }

type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time { return c.now }

func (c *stepClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type counts struct {
	written, failed, throttled int
}

func (c *counts) SinkWritten(string) { c.written++ }
func (c *counts) SinkFailed(string)  { c.failed++ }
func (c *counts) GUIThrottled()      { c.throttled++ }

func quote(mid string) model.Quote {
	return model.Quote{
		Product: model.Product{ID: "91282CJL6"},
		Mid:     decimal.RequireFromString(mid),
		Spread:  decimal.RequireFromString("0.0078125"),
	}
}

func TestThrottle(t *testing.T) {
	clock := &stepClock{now: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
	w := &memWriter{}
	m := &counts{}
	s := NewService(0, w, clock.Now, m)

	require.NoError(t, s.OnMessage(quote("99")))
	clock.advance(100 * time.Millisecond)
	require.NoError(t, s.OnMessage(quote("99.5")))
	clock.advance(200 * time.Millisecond)
	require.NoError(t, s.OnMessage(quote("100")))
	clock.advance(299 * time.Millisecond)
	require.NoError(t, s.OnMessage(quote("100.5")))

	assert.Equal(t, []string{
		"2024-01-02 03:04:05.000000,91282CJL6,99-000,0-002",
		"2024-01-02 03:04:05.300000,91282CJL6,100-000,0-002",
	}, w.lines)
	assert.Equal(t, 2, m.written)
	assert.Equal(t, 2, m.throttled)

	// the store always keeps the latest quote
	assert.True(t, s.Get("91282CJL6").Mid.Equal(decimal.RequireFromString("100.5")))
}

func TestCustomThrottle(t *testing.T) {
	clock := &stepClock{now: time.Unix(0, 0)}
	w := &memWriter{}
	s := NewService(time.Second, w, clock.Now, nil)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.OnMessage(quote("99")))
		clock.advance(500 * time.Millisecond)
	}
	assert.Len(t, w.lines, 3)
}
