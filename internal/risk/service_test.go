package risk

import (
	"testing"

	"bondflow/internal/bus"
	"bondflow/internal/model"
	"bondflow/internal/model/enum"
	"bondflow/internal/refdata"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reg = refdata.Default()

func position(tenor int, book string, qty int64) model.Position {
	p, _ := reg.ByTenor(tenor)
	return model.NewPosition(p).With(book, qty)
}

type breaches []string

func (b *breaches) RiskLimitBreached(id string) { *b = append(*b, id) }

func TestAddPosition(t *testing.T) {
	s := NewService(Config{}, reg, nil)
	var got []model.PV01
	s.AddListener(bus.OnAdd(func(r model.PV01) error {
		got = append(got, r)
		return nil
	}))

	pos := position(2, "TRSY1", 1000000).With("TRSY2", -500000)
	require.NoError(t, s.AddPosition(pos))

	require.Len(t, got, 1)
	r := s.Get(pos.Product.ID)
	assert.True(t, r.Factor.Equal(decimal.RequireFromString("0.019851")))
	assert.True(t, r.Book("TRSY1").Equal(decimal.RequireFromString("19851")))
	assert.True(t, r.Aggregate().Equal(decimal.RequireFromString("9925.5")))
}

func TestBucketedRisk(t *testing.T) {
	s := NewService(Config{}, reg, nil)
	require.NoError(t, s.AddPosition(position(5, "TRSY1", 1000000)))
	require.NoError(t, s.AddPosition(position(7, "TRSY2", 2000000)))
	require.NoError(t, s.AddPosition(position(30, "TRSY3", 1000000)))

	belly := s.BucketedRisk(enum.SectorBelly)
	assert.Len(t, belly.Products, 3)
	assert.Equal(t, int64(3000000), belly.Quantity)
	// 0.048643 * 1e6 + 0.065843 * 2e6
	assert.True(t, belly.PV01.Equal(decimal.RequireFromString("180329")), belly.PV01.String())

	front := s.BucketedRisk(enum.SectorFrontEnd)
	assert.True(t, front.PV01.IsZero())
	assert.Equal(t, []string{"FRONT_END", "0", "0"}, front.Fields())

	long := s.BucketedRisk(enum.SectorLongEnd)
	assert.True(t, long.PV01.Equal(decimal.RequireFromString("169150")))
}

func TestLimitBreach(t *testing.T) {
	var b breaches
	s := NewService(Config{MaxAggregatePV01: decimal.NewFromInt(20000)}, reg, &b)

	require.NoError(t, s.AddPosition(position(2, "TRSY1", 1000000)))
	require.NoError(t, s.AddPosition(position(10, "TRSY1", -1000000)))

	ten, _ := reg.ByTenor(10)
	assert.Equal(t, []string{ten.ID}, []string(b))
	assert.Equal(t, 1, s.Breaches(ten.ID))
	// breaching updates are still stored
	assert.Equal(t, 2, s.Len())
}
