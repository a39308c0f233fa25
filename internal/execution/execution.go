// Package execution implements BondExecutionService: the primary store of
// the latest published ExecutionOrder per CUSIP, which also owns the
// outbound TCP publisher on port 3000.
//
// Grounded verbatim on
// _examples/original_source/bondexecutionservice.hpp.
package execution

import (
	"github.com/nickserkes/bond-pipeline/internal/bond"
	"github.com/nickserkes/bond-pipeline/internal/connector"
	"github.com/nickserkes/bond-pipeline/internal/svc"
	"github.com/nickserkes/bond-pipeline/internal/wire"
)

// Service stores the latest ExecutionOrder per CUSIP, publishes every
// update on its outbound connector, then fans out to listeners (e.g.
// trade booking) after publishing.
type Service struct {
	*svc.Store[string, bond.ExecutionOrder]
	out *connector.Outbound
}

// New returns an execution service that publishes through out, subscribed
// to algo execution.
func New(out *connector.Outbound, algoExecution interface {
	AddListener(svc.Listener[bond.AlgoExecution])
}) *Service {
	s := &Service{Store: svc.New[string, bond.ExecutionOrder]("execution"), out: out}
	algoExecution.AddListener(algoListener{s})
	return s
}

type algoListener struct{ s *Service }

func (l algoListener) ProcessAdd(ae bond.AlgoExecution) { l.s.OnMessage(ae.Order) }
func (l algoListener) ProcessRemove(bond.AlgoExecution)  {}
func (l algoListener) ProcessUpdate(bond.AlgoExecution)  {}

// OnMessage publishes the CSV line on the outbound connector, then upserts
// order keyed by its CUSIP and fans out to this service's own listeners.
func (s *Service) OnMessage(order bond.ExecutionOrder) {
	s.out.Publish(wire.ExecutionCSV(order))
	s.Store.OnMessage(order.Product.ProductID, order)
}
