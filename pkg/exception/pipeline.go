package exception

import (
	stderrors "errors"

	"github.com/yanun0323/errors"
)

// Pipeline errors
var (
	ErrCallDepthExceeded = errors.New("pipeline: call depth exceeded")
	ErrEmptyBook         = errors.New("pipeline: order book is empty")
	ErrUnknownInquiry    = errors.New("pipeline: unknown inquiry")
	ErrSinkUnavailable   = errors.New("pipeline: sink unavailable")
	ErrInvalidTransition = errors.New("pipeline: invalid state transition")
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}
