// Package algostreaming implements BondAlgoStreamingService: derives a
// two-sided AlgoStream from every pricing update, alternating visible/hidden
// size on a single process-wide toggle.
//
// Grounded verbatim on
// _examples/original_source/bondalgostreamingservice.hpp's
// BondAlgoStreamingServiceListener::ProcessAdd.
package algostreaming

import (
	"sync"

	"github.com/nickserkes/bond-pipeline/internal/bond"
	"github.com/nickserkes/bond-pipeline/internal/svc"
)

// Service derives the latest AlgoStream per CUSIP from pricing updates.
type Service struct {
	*svc.Store[string, bond.AlgoStream]

	mu        sync.Mutex
	alternate bool // process-wide toggle, not per-CUSIP (matches the original's function-static bool)
}

// New returns an algo streaming service subscribed to pricing.
func New(pricing interface {
	AddListener(svc.Listener[bond.Price])
}) *Service {
	s := &Service{Store: svc.New[string, bond.AlgoStream]("algostreaming")}
	pricing.AddListener(priceListener{s})
	return s
}

// priceListener adapts Service to svc.Listener[bond.Price].
type priceListener struct{ s *Service }

func (l priceListener) ProcessAdd(price bond.Price)  { l.s.onPrice(price) }
func (l priceListener) ProcessRemove(bond.Price)     {}
func (l priceListener) ProcessUpdate(bond.Price)     {}

// onPrice derives a two-sided quote: bid/offer straddle the mid by half the
// spread, and visible/hidden size alternates 1M/2M <-> 2M/4M on every call
// regardless of which CUSIP triggered it.
func (s *Service) onPrice(price bond.Price) {
	bidPrice := price.Mid - price.Spread/2.0
	offerPrice := price.Mid + price.Spread/2.0

	s.mu.Lock()
	alternate := s.alternate
	s.alternate = !s.alternate
	s.mu.Unlock()

	visible, hidden := int64(1_000_000), int64(2_000_000)
	if alternate {
		visible, hidden = 2_000_000, 4_000_000
	}

	stream := bond.AlgoStream{PriceStream: bond.PriceStream{
		Product: price.Product,
		Bid:     bond.PriceStreamOrder{Price: bidPrice, Visible: visible, Hidden: hidden, Side: bond.Bid},
		Offer:   bond.PriceStreamOrder{Price: offerPrice, Visible: visible, Hidden: hidden, Side: bond.Offer},
	}}
	s.Store.OnMessage(price.Product.ProductID, stream)
}
