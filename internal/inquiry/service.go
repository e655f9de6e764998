package inquiry

import (
	"github.com/yanun0323/errors"

	"tradeflow/internal/bus"
	"tradeflow/internal/schema"
	"tradeflow/pkg/exception"
)

// StageName is the metrics and sink name of the inquiry stage.
var StageName = schema.EventInquiry.String()

// Connector is the outbound side of the customer channel.
type Connector interface {
	Publish(inq schema.Inquiry)
}

// Service drives customer inquiries keyed on inquiry id.
//
// A Received inquiry is stored and handed to the connector, which answers it
// by sending it back Quoted. A Quoted inquiry is completed to Done, stored and
// published. Any other state is ignored so the loop ends after one hop.
type Service struct {
	*bus.Store[string, schema.Inquiry]
	connector Connector
}

// NewService creates an inquiry service without a connector. Received
// inquiries are only stored until SetConnector is called.
func NewService(opts ...bus.Option) *Service {
	return &Service{
		Store: bus.NewStore(StageName, schema.Inquiry.PersistKey, opts...),
	}
}

// SetConnector attaches the outbound connector.
func (s *Service) SetConnector(c Connector) {
	s.connector = c
}

// OnMessage applies an inbound inquiry.
func (s *Service) OnMessage(inq schema.Inquiry) {
	switch inq.State {
	case schema.InquiryStateReceived:
		s.Put(inq)
		if s.connector != nil {
			s.connector.Publish(inq)
		}
	case schema.InquiryStateQuoted:
		inq.State = schema.InquiryStateDone
		s.Put(inq)
		s.Publish(inq)
	}
}

// SendQuote sets the price of a stored inquiry and republishes it. The state
// is left unchanged.
func (s *Service) SendQuote(id string, price float64) error {
	inq, ok := s.Get(id)
	if !ok {
		return errors.Wrap(exception.ErrNotFound, "send quote").With("inquiry", id)
	}
	inq.Price = price
	s.Put(inq)
	s.Publish(inq)
	return nil
}

// RejectInquiry marks a stored inquiry Rejected without notifying listeners.
func (s *Service) RejectInquiry(id string) error {
	inq, ok := s.Get(id)
	if !ok {
		return errors.Wrap(exception.ErrNotFound, "reject inquiry").With("inquiry", id)
	}
	inq.State = schema.InquiryStateRejected
	s.Put(inq)
	return nil
}

// Loopback is the in-process customer channel: every Received inquiry it
// publishes is immediately returned to the service as Quoted.
type Loopback struct {
	service *Service
}

// NewLoopback creates a loopback connector and attaches it to service.
func NewLoopback(service *Service) *Loopback {
	l := &Loopback{service: service}
	service.SetConnector(l)
	return l
}

// Publish implements Connector.
func (l *Loopback) Publish(inq schema.Inquiry) {
	if inq.State != schema.InquiryStateReceived {
		return
	}
	inq.State = schema.InquiryStateQuoted
	l.service.OnMessage(inq)
}
