// Package position implements BondPositionService: tracks running position
// per book for every bond traded, derived from booked trades.
//
// Grounded verbatim on
// _examples/original_source/bondpositionservice.hpp /
// _examples/original_source/positionservice.hpp.
package position

import (
	"github.com/nickserkes/bond-pipeline/internal/bond"
	"github.com/nickserkes/bond-pipeline/internal/svc"
)

// Service stores the latest Position per CUSIP.
type Service struct {
	*svc.Store[string, bond.Position]
}

// New returns a position service subscribed to trade booking.
func New(tradeBooking interface {
	AddListener(svc.Listener[bond.Trade])
}) *Service {
	s := &Service{Store: svc.New[string, bond.Position]("position")}
	tradeBooking.AddListener(tradeListener{s})
	return s
}

type tradeListener struct{ s *Service }

func (l tradeListener) ProcessAdd(trade bond.Trade) { l.s.AddTrade(trade) }
func (l tradeListener) ProcessRemove(bond.Trade)    {}
func (l tradeListener) ProcessUpdate(bond.Trade)    {}

// AddTrade lazily creates the product's Position if this is its first trade,
// adds (BUY) or subtracts (SELL) the trade quantity from its book, and
// notifies listeners with the updated Position.
func (s *Service) AddTrade(trade bond.Trade) {
	productID := trade.Product.ProductID
	pos, ok := s.GetData(productID)
	if !ok {
		pos = bond.NewPosition(trade.Product)
	}

	quantity := trade.Quantity
	if trade.Side == bond.Sell {
		quantity = -quantity
	}
	pos.AddPosition(trade.Book, quantity)

	s.Store.OnMessage(productID, pos)
}
