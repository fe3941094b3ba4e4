package exception

import "github.com/yanun0323/errors"

// Record errors are raised by connectors while parsing input lines. They are
// subject to the configured bad-record policy.
var (
	ErrInvalidFormat   = errors.New("record: invalid format")
	ErrMalformedRecord = errors.New("record: malformed")
	ErrUnknownProduct  = errors.New("record: unknown product")
)

// IsRecordError reports whether err was caused by a single bad input record.
func IsRecordError(err error) bool {
	return Is(err, ErrInvalidFormat) || Is(err, ErrMalformedRecord) || Is(err, ErrUnknownProduct)
}
