// Package tradebooking implements TradeBookingService: books every
// execution as a Trade against a rotating set of three books, keyed on
// trade id.
//
// Grounded verbatim on
// _examples/original_source/tradebookingservice.hpp. See DESIGN.md's
// resolved Open Question #1 for the exact book/id sequencing (book reads
// the counter before increment, trade id reads it after — the first trade
// lands on TRSY1 with id "E1", not TRSY2 as spec.md's own restated claim
// suggests).
package tradebooking

import (
	"fmt"

	"github.com/nickserkes/bond-pipeline/internal/bond"
	"github.com/nickserkes/bond-pipeline/internal/svc"
)

var books = [3]string{"TRSY1", "TRSY2", "TRSY3"}

// Service stores the latest Trade per trade id.
type Service struct {
	*svc.Store[string, bond.Trade]

	orderID int
}

// New returns a trade booking service subscribed to execution.
func New(execution interface {
	AddListener(svc.Listener[bond.ExecutionOrder])
}) *Service {
	s := &Service{Store: svc.New[string, bond.Trade]("tradebooking")}
	execution.AddListener(executionListener{s})
	return s
}

type executionListener struct{ s *Service }

func (l executionListener) ProcessAdd(order bond.ExecutionOrder) { l.s.onExecution(order) }
func (l executionListener) ProcessRemove(bond.ExecutionOrder)    {}
func (l executionListener) ProcessUpdate(bond.ExecutionOrder)    {}

// onExecution books the order's full (visible+hidden) quantity against the
// next book in rotation, converting pricing side BID/OFFER to trade side
// BUY/SELL.
func (s *Service) onExecution(order bond.ExecutionOrder) {
	book := books[s.orderID%3]
	s.orderID++
	tradeID := fmt.Sprintf("E%d", s.orderID)

	side := bond.Sell
	if order.Side == bond.Bid {
		side = bond.Buy
	}

	trade := bond.Trade{
		Product:  order.Product,
		TradeID:  tradeID,
		Price:    order.Price,
		Book:     book,
		Quantity: order.Visible + order.Hidden,
		Side:     side,
	}
	s.Store.OnMessage(tradeID, trade)
}
