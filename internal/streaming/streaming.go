// Package streaming implements BondStreamingService: the primary store of
// the latest published AlgoStream per CUSIP, which also owns the outbound
// TCP publisher on port 9000.
//
// Grounded verbatim on
// _examples/original_source/bondstreamingservice.hpp: the original's
// BondStreamingServiceConnector is the same port/shape as
// internal/connector.Outbound; OnMessage publishes, then upserts and fans
// out to listeners, in exactly that order.
package streaming

import (
	"time"

	"github.com/nickserkes/bond-pipeline/internal/bond"
	"github.com/nickserkes/bond-pipeline/internal/connector"
	"github.com/nickserkes/bond-pipeline/internal/svc"
	"github.com/nickserkes/bond-pipeline/internal/wire"
)

// Service stores the latest AlgoStream per CUSIP, publishes every update to
// its outbound connector, and fans out to listeners (e.g. the historical
// archiver) after publishing.
type Service struct {
	*svc.Store[string, bond.AlgoStream]
	out *connector.Outbound
	now func() time.Time
}

// New returns a streaming service that publishes through out. algo is the
// algo streaming service to subscribe to.
func New(out *connector.Outbound, algo interface {
	AddListener(svc.Listener[bond.AlgoStream])
}) *Service {
	s := &Service{Store: svc.New[string, bond.AlgoStream]("streaming"), out: out, now: time.Now}
	algo.AddListener(algoListener{s})
	return s
}

type algoListener struct{ s *Service }

func (l algoListener) ProcessAdd(stream bond.AlgoStream) { l.s.OnMessage(stream) }
func (l algoListener) ProcessRemove(bond.AlgoStream)     {}
func (l algoListener) ProcessUpdate(bond.AlgoStream)     {}

// OnMessage publishes the CSV line on the outbound connector, then upserts
// stream keyed by its CUSIP and fans out to this service's own listeners.
func (s *Service) OnMessage(stream bond.AlgoStream) {
	productID := stream.PriceStream.Product.ProductID
	s.out.Publish(wire.StreamingCSV(s.now(), stream))
	s.Store.OnMessage(productID, stream)
}
