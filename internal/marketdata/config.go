package marketdata

import (
	"bondflow/pkg/exception"

	"github.com/yanun0323/errors"
)

const DefaultBookDepth = 10

// Aggregation selects how AggregateDepth builds the offer side.
type Aggregation uint8

const (
	_aggregation_beg Aggregation = iota
	// AggregationAsIs mirrors the aggregated bid levels onto the offer side,
	// relabelled OFFER. This keeps the output of the legacy system.
	AggregationAsIs
	// AggregationCorrected aggregates the offer stack on its own.
	AggregationCorrected
	_aggregation_end
)

func (a Aggregation) IsAvailable() bool {
	return a > _aggregation_beg && a < _aggregation_end
}

func (a Aggregation) String() string {
	switch a {
	case AggregationAsIs:
		return "as-is"
	case AggregationCorrected:
		return "corrected"
	default:
		return "unknown"
	}
}

func ParseAggregation(s string) (Aggregation, error) {
	switch s {
	case "", "as-is":
		return AggregationAsIs, nil
	case "corrected":
		return AggregationCorrected, nil
	default:
		return 0, errors.Wrapf(exception.ErrInvalidArgument, "unknown offer aggregation %q", s)
	}
}

// Config defines the market data stage.
type Config struct {
	// BookDepth is the number of levels per side of a snapshot.
	BookDepth        int
	OfferAggregation Aggregation
}

func DefaultConfig() Config {
	return Config{
		BookDepth:        DefaultBookDepth,
		OfferAggregation: AggregationAsIs,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.BookDepth == 0 {
		c.BookDepth = def.BookDepth
	}
	if c.OfferAggregation == 0 {
		c.OfferAggregation = def.OfferAggregation
	}
	return c
}

func (c Config) Validate() error {
	if c.BookDepth <= 0 {
		return errors.Wrapf(exception.ErrInvalidArgument, "book depth must be > 0, got %d", c.BookDepth)
	}
	if !c.OfferAggregation.IsAvailable() {
		return errors.Wrap(exception.ErrInvalidArgument, "offer aggregation is invalid")
	}
	return nil
}
