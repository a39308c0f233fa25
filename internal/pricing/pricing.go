// Package pricing implements BondPricingService: the primary store of the
// latest quoted Price per CUSIP.
//
// Grounded verbatim on
// _examples/original_source/bondpricingservice.hpp: no parsing (that is the
// Prices connector's job) and no derivation, purely an upsert-and-fan-out
// store built on internal/svc.
package pricing

import (
	"github.com/nickserkes/bond-pipeline/internal/bond"
	"github.com/nickserkes/bond-pipeline/internal/svc"
)

// Service stores the latest Price per CUSIP and fans out to listeners on
// every update.
type Service struct {
	*svc.Store[string, bond.Price]
}

// New returns an empty pricing service.
func New() *Service {
	return &Service{Store: svc.New[string, bond.Price]("pricing")}
}

// OnMessage upserts price keyed by its CUSIP and notifies listeners.
func (s *Service) OnMessage(price bond.Price) {
	s.Store.OnMessage(price.Product.ProductID, price)
}
