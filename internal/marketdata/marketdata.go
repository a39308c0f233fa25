// Package marketdata implements BondMarketDataService: the primary store of
// the latest OrderBook per CUSIP.
//
// Grounded verbatim on
// _examples/original_source/bondmarketdataservice.hpp.
package marketdata

import (
	"fmt"

	"github.com/nickserkes/bond-pipeline/internal/bond"
	"github.com/nickserkes/bond-pipeline/internal/svc"
)

// Service stores the latest OrderBook per CUSIP.
type Service struct {
	*svc.Store[string, bond.OrderBook]
}

// New returns an empty market data service.
func New() *Service {
	return &Service{Store: svc.New[string, bond.OrderBook]("marketdata")}
}

// OnMessage upserts book keyed by its CUSIP and notifies listeners.
func (s *Service) OnMessage(book bond.OrderBook) {
	s.Store.OnMessage(book.Product.ProductID, book)
}

// GetBestBidOffer returns the top-of-book pair for productID, erroring if
// the book is absent (it does not require both sides to be non-empty; a
// one-sided book is a valid, if unaggresssable, book).
func (s *Service) GetBestBidOffer(productID string) (bid, offer bond.Order, err error) {
	book, ok := s.GetData(productID)
	if !ok {
		return bond.Order{}, bond.Order{}, fmt.Errorf("marketdata: no order book for %s", productID)
	}
	if len(book.Bids) > 0 {
		bid = book.Bids[0]
	}
	if len(book.Offers) > 0 {
		offer = book.Offers[0]
	}
	return bid, offer, nil
}

// AggregateDepth returns the full book for productID. The contract allows a
// richer aggregation; here, as in the original, it is the identity.
func (s *Service) AggregateDepth(productID string) (bond.OrderBook, error) {
	book, ok := s.GetData(productID)
	if !ok {
		return bond.OrderBook{}, fmt.Errorf("marketdata: no order book for %s", productID)
	}
	return book, nil
}
