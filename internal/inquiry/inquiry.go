// Package inquiry implements BondInquiryService: tracks customer inquiries
// through RECEIVED -> QUOTED -> DONE, auto-quoting every inquiry the moment
// it arrives.
//
// Grounded verbatim on
// _examples/original_source/bondinquiryservice.hpp /
// _examples/original_source/inquiryservice.hpp /
// _examples/original_source/inquirysocketreaderconnector.hpp's ReceiveQuote.
package inquiry

import (
	"github.com/nickserkes/bond-pipeline/internal/bond"
	"github.com/nickserkes/bond-pipeline/internal/svc"
)

// quoteFaceValue is the hardcoded quote price BondInquiryService always
// sends back, regardless of the bond or inquiry — not a computed fair
// value, preserved as the original's literal behavior (DESIGN.md Open
// Question #3).
const quoteFaceValue = 100.0

// Service is the primary store of Inquiry per inquiry id (not per CUSIP — a
// bond may have many open inquiries at once).
type Service struct {
	*svc.Store[string, bond.Inquiry]
}

// New returns an empty inquiry service. Inbound inquiries arrive via
// OnMessage, called directly by the inquiries connector.
func New() *Service {
	return &Service{Store: svc.New[string, bond.Inquiry]("inquiry")}
}

// OnMessage stores inq, fans out to listeners, and — only when inq arrives
// in the RECEIVED state — immediately auto-quotes it. Auto-quoting
// re-enters OnMessage twice more (QUOTED, then DONE), each of which stores
// and fans out again but never re-triggers the quote cascade a second time,
// matching the original's state guard.
func (s *Service) OnMessage(inq bond.Inquiry) {
	s.Store.OnMessage(inq.InquiryID, inq)
	if inq.State == bond.Received {
		s.SendQuote(inq.InquiryID, quoteFaceValue)
	}
}

// SendQuote sets price on the stored inquiry, then drives it through
// QUOTED and DONE, publishing (re-entering OnMessage) after each
// transition.
func (s *Service) SendQuote(inquiryID string, price float64) {
	inq, ok := s.GetData(inquiryID)
	if !ok {
		return
	}
	inq.Price = price

	inq.State = bond.Quoted
	s.OnMessage(inq)

	inq.State = bond.Done
	s.OnMessage(inq)
}

// RejectInquiry is a no-op, matching the original's empty override.
func (s *Service) RejectInquiry(inquiryID string) {}
