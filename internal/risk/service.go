// Package risk maps net positions to PV01 with a per-security factor.
package risk

import (
	"bondflow/internal/bus"
	"bondflow/internal/model"
	"bondflow/internal/model/enum"
	"bondflow/internal/refdata"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/logs"
)

// Config defines risk limits. A zero limit is disabled.
type Config struct {
	MaxAggregatePV01 decimal.Decimal `json:"maxAggregatePv01" yaml:"maxAggregatePv01"`
}

// Metrics counts risk limit breaches. Implementations must accept calls on
// a nil receiver.
type Metrics interface {
	RiskLimitBreached(productID string)
}

// Service keeps the latest PV01 per product.
type Service struct {
	*bus.Store[string, model.PV01]
	cfg      Config
	registry *refdata.Registry
	metrics  Metrics
	breaches map[string]int
}

func NewService(cfg Config, reg *refdata.Registry, m Metrics, opts ...bus.Option) *Service {
	return &Service{
		Store:    bus.NewStore[string, model.PV01]("risk", func(r model.PV01) string { return r.Product.ID }, opts...),
		cfg:      cfg,
		registry: reg,
		metrics:  m,
		breaches: make(map[string]int),
	}
}

// Listener subscribes the service to position updates.
func (s *Service) Listener() bus.Listener[model.Position] {
	return bus.OnAdd(s.AddPosition)
}

// AddPosition derives the PV01 of position, stores it and notifies the
// listeners. Products without a factor carry zero risk.
func (s *Service) AddPosition(position model.Position) error {
	factor, _ := s.registry.PV01Factor(position.Product.ID)
	r := model.NewPV01(factor, position)
	s.checkLimit(r)
	return s.Ingest(r)
}

func (s *Service) checkLimit(r model.PV01) {
	limit := s.cfg.MaxAggregatePV01
	if !limit.IsPositive() {
		return
	}
	if r.Aggregate().Abs().LessThanOrEqual(limit) {
		return
	}
	s.breaches[r.Product.ID]++
	if s.metrics != nil {
		s.metrics.RiskLimitBreached(r.Product.ID)
	}
	logs.Errorf("risk limit breached, product: %s, pv01: %s, limit: %s", r.Product.ID, r.Aggregate(), limit)
}

// Breaches returns how many updates of a product exceeded the limit.
func (s *Service) Breaches(productID string) int {
	return s.breaches[productID]
}

// BucketedRisk sums the stored PV01 and quantity of every product in sector.
func (s *Service) BucketedRisk(sector enum.Sector) model.BucketedPV01 {
	out := model.BucketedPV01{
		Sector:   sector,
		Products: s.registry.InSector(sector),
		PV01:     decimal.Zero,
	}
	for _, p := range out.Products {
		r, ok := s.Lookup(p.ID)
		if !ok {
			continue
		}
		out.PV01 = out.PV01.Add(r.Aggregate())
		out.Quantity += r.Quantity()
	}
	return out
}
