// Package historical implements BondHistoricalDataService: a generic
// timestamp-prefixed CSV archiver subscribed to one upstream service,
// writing a header line once and one row per update thereafter.
//
// Grounded verbatim on
// _examples/original_source/bondhistoricaldataservice.hpp /
// _examples/original_source/filewriterconnector.hpp. The risk archiver's
// extra live-sector-lookup behavior does not fit this generic shape and is
// implemented separately in internal/riskhistory.
package historical

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/nickserkes/bond-pipeline/internal/svc"
	"github.com/nickserkes/bond-pipeline/internal/wire"
)

// Archiver writes one CSV row per upstream update: "timestamp,<record>\n".
// record renders the domain value's columns (the wire.*Record functions).
type Archiver[V any] struct {
	mu     sync.Mutex
	w      io.Writer
	record func(V) string
	now    func() time.Time
}

// New writes header (if non-empty) immediately, then subscribes to source,
// appending one row per value via record.
func New[V any](w io.Writer, header string, record func(V) string, source interface {
	AddListener(svc.Listener[V])
}) *Archiver[V] {
	a := &Archiver[V]{w: w, record: record, now: time.Now}
	if header != "" {
		fmt.Fprintln(w, header)
	}
	source.AddListener(archiverListener[V]{a})
	return a
}

type archiverListener[V any] struct{ a *Archiver[V] }

func (l archiverListener[V]) ProcessAdd(v V)    { l.a.persist(v) }
func (l archiverListener[V]) ProcessRemove(V)   {}
func (l archiverListener[V]) ProcessUpdate(v V) { l.a.persist(v) }

func (a *Archiver[V]) persist(v V) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprintf(a.w, "%s,%s\n", wire.Timestamp(a.now()), a.record(v))
}

// Header strings for each of the four generic archiver feeds, grounded
// verbatim on filewriterconnector.hpp's per-type preamble.
const (
	PositionsHeader  = "Timestamp, CUSIP, Book, Position, [Book], [Position], [Book], [Position], Aggregate, Position"
	ExecutionsHeader = "Timestamp, CUSIP, OrderID, OrderType, Side, Price, Quantity"
	StreamingHeader  = "Timestamp, CUSIP, BidPrice, OfferPrice, BidVisible, BidHidden, OfferVisible, OfferHidden"
	InquiriesHeader  = "Timestamp, CUSIP, InquiryId, Side, Quantity, Price, State"
)
