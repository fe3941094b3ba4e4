package enum

import (
	"bondflow/pkg/exception"

	"github.com/yanun0323/errors"
)

// InquiryState received, quoted, done, rejected, customer rejected
type InquiryState uint8

const (
	_inquiry_state_beg InquiryState = iota
	InquiryStateReceived
	InquiryStateQuoted
	InquiryStateDone
	InquiryStateRejected
	InquiryStateCustomerRejected
	_inquiry_state_end
)

func (s InquiryState) IsAvailable() bool {
	return s > _inquiry_state_beg && s < _inquiry_state_end
}

// IsTerminal reports whether no further transition is accepted.
func (s InquiryState) IsTerminal() bool {
	switch s {
	case InquiryStateDone, InquiryStateRejected, InquiryStateCustomerRejected:
		return true
	default:
		return false
	}
}

func (s InquiryState) String() string {
	switch s {
	case InquiryStateReceived:
		return "RECEIVED"
	case InquiryStateQuoted:
		return "QUOTED"
	case InquiryStateDone:
		return "DONE"
	case InquiryStateRejected:
		return "REJECTED"
	case InquiryStateCustomerRejected:
		return "CUSTOMER_REJECTED"
	default:
		return "UNKNOWN"
	}
}

func ParseInquiryState(s string) (InquiryState, error) {
	for st := _inquiry_state_beg + 1; st < _inquiry_state_end; st++ {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, errors.Wrapf(exception.ErrMalformedRecord, "unknown inquiry state %q", s)
}
