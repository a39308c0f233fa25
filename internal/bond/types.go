// Package bond defines the domain types shared by every service in the
// pipeline: reference data, prices, order books, trades, positions, risk,
// streaming quotes, execution orders, and customer inquiries.
package bond

import "fmt"

// Side is the pricing side of a two-sided quote or order book level.
type Side int

const (
	Bid Side = iota
	Offer
)

func (s Side) String() string {
	if s == Bid {
		return "BID"
	}
	return "OFFER"
}

// TradeSide is the side of a booked trade or customer inquiry.
type TradeSide int

const (
	Buy TradeSide = iota
	Sell
)

func (s TradeSide) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// Bond is the immutable reference record for a single security. Identity is
// the product id (CUSIP).
type Bond struct {
	ProductID string // 9-char CUSIP
	Ticker    string
	Coupon    float64
	Maturity  MaturityDate
}

// MaturityDate holds only what BondRiskService's PV01 formula needs: the
// calendar year. Month and day are carried for completeness but are never
// consulted by risk math (see internal/risk).
type MaturityDate struct {
	Month, Day, Year int
}

func (m MaturityDate) String() string {
	return fmt.Sprintf("%02d/%02d/%02d", m.Month, m.Day, m.Year%100)
}

// Price is the latest quoted mid/spread for a bond.
type Price struct {
	Product Bond
	Mid     float64 // decimal dollars
	Spread  float64 // decimal dollars (wire form is an integer count of 128ths)
}

// Order is a single level in an OrderBook.
type Order struct {
	Price    float64
	Quantity int64
	Side     Side
}

// OrderBook holds the latest two-sided depth for a bond. Bids and Offers are
// ordered with top-of-book at index 0; the connector that parses an inbound
// line is responsible for that ordering, the service itself never reorders.
type OrderBook struct {
	Product Bond
	Bids    []Order
	Offers  []Order
}

// BestBidOffer returns the top-of-book pair. The caller must check ok; an
// empty book on either side is not an error here, it just returns ok=false
// (internal/algoexecution skips the book in that case).
func (b OrderBook) BestBidOffer() (bid, offer Order, ok bool) {
	if len(b.Bids) == 0 || len(b.Offers) == 0 {
		return Order{}, Order{}, false
	}
	return b.Bids[0], b.Offers[0], true
}

// Trade is a booked trade against a specific book.
type Trade struct {
	Product  Bond
	TradeID  string
	Price    float64
	Book     string
	Quantity int64
	Side     TradeSide
}

// Position tracks signed quantity per book for one bond. Zero-valued book
// entries are intentionally never pruned (spec invariant).
type Position struct {
	Product Bond
	Books   map[string]int64
}

// NewPosition returns a zero position for product, ready for AddPosition.
func NewPosition(product Bond) Position {
	return Position{Product: product, Books: make(map[string]int64)}
}

// AddPosition adds quantity (positive or negative) to book and returns the
// book's new running total.
func (p *Position) AddPosition(book string, quantity int64) int64 {
	p.Books[book] += quantity
	return p.Books[book]
}

// Aggregate sums every book's signed quantity.
func (p Position) Aggregate() int64 {
	var total int64
	for _, q := range p.Books {
		total += q
	}
	return total
}

// PV01 is the per-unit interest rate risk for a bond, scaled to a quantity.
type PV01 struct {
	Product  Bond
	PerUnit  float64
	Quantity int64
}

// TotalRisk is PerUnit * Quantity.
func (p PV01) TotalRisk() float64 {
	return p.PerUnit * float64(p.Quantity)
}

// BucketedSector groups bonds under a named risk bucket (FrontEnd, Belly,
// LongEnd).
type BucketedSector struct {
	Products []Bond
	Name     string
}

// PriceStreamOrder is one side of a two-sided algo-streamed quote.
type PriceStreamOrder struct {
	Price   float64
	Visible int64
	Hidden  int64
	Side    Side
}

// PriceStream is a two-sided algo-streamed quote for one bond.
type PriceStream struct {
	Product Bond
	Bid     PriceStreamOrder
	Offer   PriceStreamOrder
}

// AlgoStream wraps the PriceStream currently published for a bond.
type AlgoStream struct {
	PriceStream PriceStream
}

// OrderType enumerates execution order types. MARKET is the only type this
// system ever emits.
type OrderType int

const (
	Market OrderType = iota
)

func (t OrderType) String() string {
	return "MARKET"
}

// ExecutionOrder is an aggression order generated by BondAlgoExecutionService
// and published by BondExecutionService.
type ExecutionOrder struct {
	Product   Bond
	Side      Side
	OrderID   string // zero-padded to 8 digits
	OrderType OrderType
	Price     float64
	Visible   int64
	Hidden    int64
	ParentID  string
	IsChild   bool
}

// AlgoExecution wraps the ExecutionOrder currently published for a bond.
type AlgoExecution struct {
	Order ExecutionOrder
}

// InquiryState is a customer inquiry's place in its state machine.
type InquiryState int

const (
	Received InquiryState = iota
	Quoted
	Done
	Rejected
	CustomerRejected
)

func (s InquiryState) String() string {
	switch s {
	case Received:
		return "RECEIVED"
	case Quoted:
		return "QUOTED"
	case Done:
		return "DONE"
	case Rejected:
		return "REJECTED"
	case CustomerRejected:
		return "CUSTOMER_REJECTED"
	default:
		return "UNKNOWN"
	}
}

// Inquiry is a customer request for a quote, keyed by InquiryID (not by
// product — a single bond may have many open inquiries at once).
type Inquiry struct {
	InquiryID string
	Product   Bond
	Side      TradeSide
	Quantity  int64
	Price     float64
	State     InquiryState
}
