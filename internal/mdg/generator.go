// Package mdg generates synthetic input files for the pipeline.
package mdg

import (
	"bufio"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"

	"bondflow/internal/booking"
	"bondflow/internal/core"
	"bondflow/internal/refdata"
	"bondflow/pkg/exception"
	"bondflow/pkg/fractional"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// Prices live on the 1/256 grid between 99 and 101.
const (
	lowTicks   = 99 * fractional.TicksPerPoint
	highTicks  = 101 * fractional.TicksPerPoint
	rangeTicks = highTicks - lowTicks

	levelSize = 10_000_000
	lotSize   = 1_000_000
)

// Config sizes the generated files. Counts are per security.
type Config struct {
	Seed      uint64
	Prices    int
	Books     int
	Levels    int
	Trades    int
	Inquiries int
}

func DefaultConfig() Config {
	return Config{
		Seed:      1,
		Prices:    10_000,
		Books:     1_000,
		Levels:    5,
		Trades:    10,
		Inquiries: 10,
	}
}

func (c Config) Validate() error {
	if c.Prices < 0 || c.Books < 0 || c.Trades < 0 || c.Inquiries < 0 {
		return errors.Wrap(exception.ErrInvalidArgument, "counts must be >= 0")
	}
	if c.Levels <= 0 {
		return errors.Wrapf(exception.ErrInvalidArgument, "levels must be > 0, got %d", c.Levels)
	}
	return nil
}

// Generator writes deterministic input files for every security of a
// registry. The same seed always yields the same files.
type Generator struct {
	cfg        Config
	securities []refdata.Security
	books      []string
	rnd        *rand.Rand
}

// NewGenerator creates a generator for all securities in the registry.
func NewGenerator(reg *refdata.Registry, cfg Config) (*Generator, error) {
	if reg == nil || reg.Len() == 0 {
		return nil, errors.Wrap(exception.ErrInvalidArgument, "registry has no securities")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{
		cfg:        cfg,
		securities: reg.Securities(),
		books:      booking.DefaultBooks(),
		rnd:        rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
	}, nil
}

// WriteAll writes the four input files into dir.
func (g *Generator) WriteAll(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", dir)
	}
	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{core.FilePrices, g.WritePrices},
		{core.FileMarketData, g.WriteMarketData},
		{core.FileTrades, g.WriteTrades},
		{core.FileInquiries, g.WriteInquiries},
	}
	for _, f := range files {
		if err := writeFile(filepath.Join(dir, f.name), f.write); err != nil {
			return err
		}
		logs.Infof("generated %s", filepath.Join(dir, f.name))
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	w := bufio.NewWriter(f)
	if err := write(w); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "flush %s", path)
	}
	return f.Close()
}

// WritePrices writes "productId,bid,offer" lines. The centre walks one tick
// at a time between the limits and each side widens by a tick at random.
func (g *Generator) WritePrices(w io.Writer) error {
	var buf []byte
	for _, sec := range g.securities {
		low, high := int64(lowTicks+2), int64(highTicks-2)
		centre, up := low, true
		for i := 0; i < g.cfg.Prices; i++ {
			bid, offer := centre-1, centre+1
			if g.rnd.IntN(2) == 1 {
				offer++
			}
			if g.rnd.IntN(2) == 1 {
				bid--
			}
			if up {
				centre++
			} else {
				centre--
			}
			if centre >= high {
				up = false
			}
			if centre <= low {
				up = true
			}

			buf = append(buf[:0], sec.Product.ID...)
			buf = append(buf, ',')
			buf = appendTicks(buf, bid)
			buf = append(buf, ',')
			buf = appendTicks(buf, offer)
			buf = append(buf, '\n')
			if _, err := w.Write(buf); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteMarketData writes "productId,price,quantity,side" lines, Levels bid
// and offer pairs per update with the spread and size growing by level.
func (g *Generator) WriteMarketData(w io.Writer) error {
	var buf []byte
	for _, sec := range g.securities {
		price, up := int64(lowTicks), true
		for i := 0; i < g.cfg.Books; i++ {
			for level := 1; level <= g.cfg.Levels; level++ {
				size := int64(level) * levelSize
				buf = appendOrder(buf[:0], sec.Product.ID, price-int64(level), size, "BID")
				buf = appendOrder(buf, sec.Product.ID, price+int64(level), size, "OFFER")
				if _, err := w.Write(buf); err != nil {
					return err
				}
			}
			if price >= highTicks-1 {
				up = false
			}
			if price <= lowTicks+1 {
				up = true
			}
			if up {
				price++
			} else {
				price--
			}
		}
	}
	return nil
}

// WriteTrades writes "productId,tradeId,price,book,quantity,side" lines.
func (g *Generator) WriteTrades(w io.Writer) error {
	var buf []byte
	for _, sec := range g.securities {
		id := sec.Product.ID
		for i := 0; i < g.cfg.Trades; i++ {
			book := g.books[g.rnd.IntN(len(g.books))]
			price := lowTicks + g.rnd.Int64N(rangeTicks)

			buf = append(buf[:0], id...)
			buf = append(buf, ',')
			buf = append(buf, id...)
			buf = append(buf, "_TRADE"...)
			buf = strconv.AppendInt(buf, int64(i), 10)
			buf = append(buf, ',')
			buf = appendTicks(buf, price)
			buf = append(buf, ',')
			buf = append(buf, book...)
			buf = append(buf, ',')
			buf = strconv.AppendInt(buf, quantity(i), 10)
			buf = append(buf, ',')
			buf = append(buf, side(i)...)
			buf = append(buf, '\n')
			if _, err := w.Write(buf); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteInquiries writes "inquiryId,productId,side,quantity,price,RECEIVED"
// lines.
func (g *Generator) WriteInquiries(w io.Writer) error {
	var buf []byte
	for _, sec := range g.securities {
		id := sec.Product.ID
		for i := 0; i < g.cfg.Inquiries; i++ {
			price := lowTicks + g.rnd.Int64N(rangeTicks)

			buf = append(buf[:0], id...)
			buf = append(buf, "_INQ"...)
			buf = strconv.AppendInt(buf, int64(i), 10)
			buf = append(buf, ',')
			buf = append(buf, id...)
			buf = append(buf, ',')
			buf = append(buf, side(i)...)
			buf = append(buf, ',')
			buf = strconv.AppendInt(buf, quantity(i), 10)
			buf = append(buf, ',')
			buf = appendTicks(buf, price)
			buf = append(buf, ",RECEIVED\n"...)
			if _, err := w.Write(buf); err != nil {
				return err
			}
		}
	}
	return nil
}

func appendOrder(buf []byte, id string, ticks, size int64, side string) []byte {
	buf = append(buf, id...)
	buf = append(buf, ',')
	buf = appendTicks(buf, ticks)
	buf = append(buf, ',')
	buf = strconv.AppendInt(buf, size, 10)
	buf = append(buf, ',')
	buf = append(buf, side...)
	return append(buf, '\n')
}

func appendTicks(buf []byte, ticks int64) []byte {
	return fractional.AppendEncode(buf, fractional.FromTicks(ticks))
}

// side alternates BUY and SELL.
func side(i int) string {
	if i%2 == 0 {
		return "BUY"
	}
	return "SELL"
}

// quantity cycles 1MM to 5MM.
func quantity(i int) int64 {
	return int64(i%5+1) * lotSize
}
