// Package refdata is the static security reference table. A Registry is
// built once, injected into the stages that need it and only read after.
package refdata

import (
	"time"

	"bondflow/internal/model"
	"bondflow/internal/model/enum"
	"bondflow/pkg/exception"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
)

// Security is a product together with its risk factor.
type Security struct {
	Product    model.Product
	PV01Factor decimal.Decimal
}

// Registry maps product ids and tenors to securities.
type Registry struct {
	securities []Security
	byID       map[string]int
	byTenor    map[int]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:    make(map[string]int),
		byTenor: make(map[int]int),
	}
}

// AddSecurity registers a security. Ids and tenors must be unique.
func (r *Registry) AddSecurity(sec Security) error {
	id := sec.Product.ID
	if id == "" {
		return errors.Wrap(exception.ErrInvalidArgument, "security id is empty")
	}
	if sec.Product.Tenor <= 0 {
		return errors.Wrapf(exception.ErrInvalidArgument, "security %s: tenor must be > 0", id)
	}
	if sec.PV01Factor.IsNegative() {
		return errors.Wrapf(exception.ErrInvalidArgument, "security %s: pv01 factor must be >= 0", id)
	}
	if _, ok := r.byID[id]; ok {
		return errors.Wrapf(exception.ErrInvalidArgument, "security already exists: %s", id)
	}
	if _, ok := r.byTenor[sec.Product.Tenor]; ok {
		return errors.Wrapf(exception.ErrInvalidArgument, "tenor already exists: %dY", sec.Product.Tenor)
	}
	if sec.Product.Type == 0 {
		sec.Product.Type = enum.ProductTypeBond
	}

	r.byID[id] = len(r.securities)
	r.byTenor[sec.Product.Tenor] = len(r.securities)
	r.securities = append(r.securities, sec)
	return nil
}

// ByID returns the product by CUSIP.
func (r *Registry) ByID(id string) (model.Product, bool) {
	idx, ok := r.byID[id]
	if !ok {
		return model.Product{}, false
	}
	return r.securities[idx].Product, true
}

// Resolve is ByID for record parsing: unknown ids fail with
// exception.ErrUnknownProduct.
func (r *Registry) Resolve(id string) (model.Product, error) {
	p, ok := r.ByID(id)
	if !ok {
		return model.Product{}, errors.Wrapf(exception.ErrUnknownProduct, "product id: %s", id)
	}
	return p, nil
}

// ByTenor returns the product for a tenor in years.
func (r *Registry) ByTenor(tenor int) (model.Product, bool) {
	idx, ok := r.byTenor[tenor]
	if !ok {
		return model.Product{}, false
	}
	return r.securities[idx].Product, true
}

// Securities returns every security in registration order.
func (r *Registry) Securities() []Security {
	out := make([]Security, len(r.securities))
	copy(out, r.securities)
	return out
}

// Len returns the number of securities.
func (r *Registry) Len() int {
	return len(r.securities)
}

// PV01Factor returns the risk factor of a product.
func (r *Registry) PV01Factor(id string) (decimal.Decimal, bool) {
	idx, ok := r.byID[id]
	if !ok {
		return decimal.Zero, false
	}
	return r.securities[idx].PV01Factor, true
}

// Sector returns the curve sector of a product.
func (r *Registry) Sector(id string) (enum.Sector, bool) {
	p, ok := r.ByID(id)
	if !ok {
		return 0, false
	}
	return SectorOf(p.Tenor)
}

// InSector returns the products of a sector in registration order.
func (r *Registry) InSector(sector enum.Sector) []model.Product {
	var out []model.Product
	for _, sec := range r.securities {
		if s, ok := SectorOf(sec.Product.Tenor); ok && s == sector {
			out = append(out, sec.Product)
		}
	}
	return out
}

// SectorOf buckets a tenor: up to 3Y is the front end, up to 10Y the belly,
// anything longer the long end.
func SectorOf(tenor int) (enum.Sector, bool) {
	switch {
	case tenor <= 0:
		return 0, false
	case tenor <= 3:
		return enum.SectorFrontEnd, true
	case tenor <= 10:
		return enum.SectorBelly, true
	default:
		return enum.SectorLongEnd, true
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
