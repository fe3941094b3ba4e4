// Package inquiry runs the client inquiry lifecycle:
// RECEIVED -> QUOTED -> DONE, with REJECTED and CUSTOMER_REJECTED as
// terminal exits.
package inquiry

import (
	"context"
	"io"

	"bondflow/internal/bus"
	"bondflow/internal/feed"
	"bondflow/internal/model"
	"bondflow/internal/model/enum"
	"bondflow/internal/refdata"
	"bondflow/pkg/exception"
	"bondflow/pkg/fractional"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
)

const Source = "inquiries"

// Service keeps every inquiry by inquiry id.
type Service struct {
	*bus.Store[string, model.Inquiry]
	conn *Connector
}

func NewService(reg *refdata.Registry, in feed.Options, opts ...bus.Option) *Service {
	if in.Source == "" {
		in.Source = Source
	}
	s := &Service{
		Store: bus.NewStore[string, model.Inquiry]("inquiry", func(i model.Inquiry) string { return i.InquiryID }, opts...),
	}
	s.conn = &Connector{service: s, registry: reg, in: in}
	return s
}

func (s *Service) Connector() *Connector {
	return s.conn
}

// OnMessage advances inq by its state. A RECEIVED inquiry is stored and
// quoted through the connector, a QUOTED one is completed and fanned out,
// anything else is only stored. Records for an inquiry already in a
// terminal state are ignored.
func (s *Service) OnMessage(inq model.Inquiry) error {
	if stored, ok := s.Lookup(inq.InquiryID); ok && stored.State.IsTerminal() {
		return nil
	}

	switch inq.State {
	case enum.InquiryStateReceived:
		s.Put(inq)
		return s.conn.Publish(inq)
	case enum.InquiryStateQuoted:
		inq.State = enum.InquiryStateDone
		return s.Ingest(inq)
	default:
		s.Put(inq)
		return nil
	}
}

// SendQuote sets the price of an inquiry without changing its state and
// notifies the listeners.
func (s *Service) SendQuote(id string, price decimal.Decimal) error {
	inq, err := s.lookup(id)
	if err != nil {
		return err
	}
	inq.Price = price
	return s.Ingest(inq)
}

// RejectInquiry moves an inquiry to REJECTED whatever its state. Listeners
// are not notified.
func (s *Service) RejectInquiry(id string) error {
	inq, err := s.lookup(id)
	if err != nil {
		return err
	}
	inq.State = enum.InquiryStateRejected
	s.Put(inq)
	return nil
}

// CustomerReject records that the client walked away from an open inquiry
// and notifies the listeners.
func (s *Service) CustomerReject(id string) error {
	inq, err := s.lookup(id)
	if err != nil {
		return err
	}
	if inq.State.IsTerminal() {
		return errors.Wrapf(exception.ErrInvalidTransition, "inquiry %s: %s -> %s", id, inq.State, enum.InquiryStateCustomerRejected)
	}
	inq.State = enum.InquiryStateCustomerRejected
	return s.Ingest(inq)
}

func (s *Service) lookup(id string) (model.Inquiry, error) {
	inq, ok := s.Lookup(id)
	if !ok {
		return model.Inquiry{}, errors.Wrapf(exception.ErrUnknownInquiry, "inquiry id: %s", id)
	}
	return inq, nil
}

// Connector quotes received inquiries straight back into the service and
// reads "inquiryId,productId,side,quantity,price,state" records.
type Connector struct {
	service  *Service
	registry *refdata.Registry
	in       feed.Options
}

// Publish quotes a RECEIVED inquiry and re-submits it. Other states are
// dropped.
func (c *Connector) Publish(inq model.Inquiry) error {
	if inq.State != enum.InquiryStateReceived {
		return nil
	}
	inq.State = enum.InquiryStateQuoted
	return c.service.OnMessage(inq)
}

func (c *Connector) Subscribe(ctx context.Context, r io.Reader) error {
	return feed.Scan(ctx, r, c.in, func(_ int, fields [][]byte) error {
		inq, err := c.parse(fields)
		if err != nil {
			return err
		}
		return c.service.OnMessage(inq)
	})
}

func (c *Connector) parse(fields [][]byte) (model.Inquiry, error) {
	if err := feed.Expect(fields, 6); err != nil {
		return model.Inquiry{}, err
	}
	if len(fields[0]) == 0 {
		return model.Inquiry{}, errors.Wrap(exception.ErrMalformedRecord, "empty inquiry id")
	}
	product, err := c.registry.Resolve(string(fields[1]))
	if err != nil {
		return model.Inquiry{}, err
	}
	side, err := enum.ParseSide(string(fields[2]))
	if err != nil {
		return model.Inquiry{}, err
	}
	qty, err := feed.Int(fields[3], "quantity")
	if err != nil {
		return model.Inquiry{}, err
	}
	price, err := fractional.Decode(string(fields[4]))
	if err != nil {
		return model.Inquiry{}, err
	}
	state, err := enum.ParseInquiryState(string(fields[5]))
	if err != nil {
		return model.Inquiry{}, err
	}
	return model.Inquiry{
		InquiryID: string(fields[0]),
		Product:   product,
		Side:      side,
		Quantity:  qty,
		Price:     price,
		State:     state,
	}, nil
}
