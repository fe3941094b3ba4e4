package model

import (
	"sort"

	"bondflow/internal/model/enum"

	"github.com/shopspring/decimal"
)

// Position is the net quantity per book of one product. The zero value is a
// flat position.
type Position struct {
	Product Product
	books   map[string]int64
}

func NewPosition(product Product) Position {
	return Position{Product: product}
}

// Quantity returns the net quantity on book, zero when never traded.
func (p Position) Quantity(book string) int64 {
	return p.books[book]
}

// Aggregate sums every book.
func (p Position) Aggregate() int64 {
	var total int64
	for _, q := range p.books {
		total += q
	}
	return total
}

// Books returns the traded books in lexical order.
func (p Position) Books() []string {
	books := make([]string, 0, len(p.books))
	for b := range p.books {
		books = append(books, b)
	}
	sort.Strings(books)
	return books
}

// With returns a copy of p with delta added to book. p is left untouched.
func (p Position) With(book string, delta int64) Position {
	next := p.Merge(Position{})
	if next.books == nil {
		next.books = make(map[string]int64, 1)
	}
	next.books[book] += delta
	return next
}

// Merge returns a copy holding the per-book sum of p and other. The product
// of p is kept unless p is zero.
func (p Position) Merge(other Position) Position {
	out := Position{Product: p.Product}
	if out.Product.IsZero() {
		out.Product = other.Product
	}
	if len(p.books)+len(other.books) == 0 {
		return out
	}
	out.books = make(map[string]int64, len(p.books)+len(other.books))
	for b, q := range p.books {
		out.books[b] += q
	}
	for b, q := range other.books {
		out.books[b] += q
	}
	return out
}

func (p Position) Fields() []string {
	books := p.Books()
	fields := make([]string, 0, 1+2*len(books))
	fields = append(fields, p.Product.ID)
	for _, b := range books {
		fields = append(fields, b, formatQuantity(p.books[b]))
	}
	return fields
}

// PV01 is the risk of a position, factor times quantity per book.
type PV01 struct {
	Product  Product
	Factor   decimal.Decimal
	position Position
}

func NewPV01(factor decimal.Decimal, position Position) PV01 {
	return PV01{Product: position.Product, Factor: factor, position: position}
}

// Book returns the PV01 of a single book.
func (r PV01) Book(book string) decimal.Decimal {
	return r.Factor.Mul(decimal.NewFromInt(r.position.Quantity(book)))
}

// Aggregate returns the PV01 over every book.
func (r PV01) Aggregate() decimal.Decimal {
	return r.Factor.Mul(decimal.NewFromInt(r.position.Aggregate()))
}

// Quantity is the aggregate position the risk is computed on.
func (r PV01) Quantity() int64 {
	return r.position.Aggregate()
}

func (r PV01) Fields() []string {
	books := r.position.Books()
	fields := make([]string, 0, 4+2*len(books))
	fields = append(fields, r.Product.ID, r.Factor.String())
	for _, b := range books {
		fields = append(fields, b, r.Book(b).String())
	}
	return append(fields, "AGGREGATE", r.Aggregate().String())
}

// BucketedPV01 is the risk of every product in a sector.
type BucketedPV01 struct {
	Sector   enum.Sector
	Products []Product
	PV01     decimal.Decimal
	Quantity int64
}

func (b BucketedPV01) Fields() []string {
	return []string{b.Sector.String(), b.PV01.String(), formatQuantity(b.Quantity)}
}
