package feed

import (
	"bondflow/pkg/exception"

	"github.com/yanun0323/errors"
)

// Policy decides what happens to a record that cannot be parsed.
type Policy uint8

const (
	_policy_beg Policy = iota
	// PolicySkip logs and counts the record, then moves on.
	PolicySkip
	// PolicyAbort stops reading the current input.
	PolicyAbort
	_policy_end
)

func (p Policy) IsAvailable() bool {
	return p > _policy_beg && p < _policy_end
}

func (p Policy) String() string {
	switch p {
	case PolicySkip:
		return "skip"
	case PolicyAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// ParsePolicy accepts "skip" and "abort". Empty means skip.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "skip":
		return PolicySkip, nil
	case "abort":
		return PolicyAbort, nil
	default:
		return 0, errors.Wrapf(exception.ErrInvalidArgument, "unknown bad record policy %q", s)
	}
}
