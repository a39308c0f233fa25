// Package algoexecution implements BondAlgoExecutionService: aggresses the
// top of book whenever the market-data spread is tight enough, alternating
// which side it aggresses on every trigger.
//
// Grounded verbatim on
// _examples/original_source/bondalgoexecutionservice.hpp.
package algoexecution

import (
	"fmt"

	"github.com/nickserkes/bond-pipeline/internal/bond"
	"github.com/nickserkes/bond-pipeline/internal/svc"
)

// maxAggressSpread is the original's "1.00001/128.0" tolerance: a spread
// strictly greater than this is too wide to aggress on.
const maxAggressSpread = 1.00001 / 128.0

// Service derives the latest AlgoExecution (a wrapped ExecutionOrder) per
// CUSIP from order book updates.
type Service struct {
	*svc.Store[string, bond.AlgoExecution]

	isBuy       bool
	nextOrderID int
}

// New returns an algo execution service subscribed to market data. isBuy
// starts true, matching the original's `bool is_buy = true`.
func New(marketData interface {
	AddListener(svc.Listener[bond.OrderBook])
}) *Service {
	s := &Service{
		Store:       svc.New[string, bond.AlgoExecution]("algoexecution"),
		isBuy:       true,
		nextOrderID: 1,
	}
	marketData.AddListener(bookListener{s})
	return s
}

type bookListener struct{ s *Service }

func (l bookListener) ProcessAdd(book bond.OrderBook) { l.s.onBook(book) }
func (l bookListener) ProcessRemove(bond.OrderBook)   {}
func (l bookListener) ProcessUpdate(bond.OrderBook)   {}

// onBook drops an empty-sided book silently, then aggresses only if the
// top-of-book spread is within maxAggressSpread.
func (s *Service) onBook(book bond.OrderBook) {
	bid, offer, ok := book.BestBidOffer()
	if !ok {
		return
	}
	if offer.Price-bid.Price > maxAggressSpread {
		return
	}
	s.aggressOnBook(book, bid, offer)
}

// aggressOnBook builds a market order on the side the book offers liquidity
// on the aggressor's current turn, then flips the turn for next time. Order
// ids are zero-padded to 8 digits and reused as both OrderID and ParentID,
// matching the original's oss.str() used for both.
func (s *Service) aggressOnBook(book bond.OrderBook, bid, offer bond.Order) {
	var side bond.Side
	var price float64
	var quantity int64
	if s.isBuy {
		side = bond.Bid
		price = offer.Price
		quantity = offer.Quantity
	} else {
		side = bond.Offer
		price = bid.Price
		quantity = bid.Quantity
	}
	s.isBuy = !s.isBuy

	orderID := fmt.Sprintf("%08d", s.nextOrderID)
	s.nextOrderID++

	order := bond.ExecutionOrder{
		Product:   book.Product,
		Side:      side,
		OrderID:   orderID,
		OrderType: bond.Market,
		Price:     price,
		Visible:   quantity,
		Hidden:    0,
		ParentID:  orderID,
		IsChild:   false,
	}
	s.Store.OnMessage(book.Product.ProductID, bond.AlgoExecution{Order: order})
}
