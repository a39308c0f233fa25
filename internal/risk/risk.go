// Package risk implements BondRiskService: derives PV01 (price value of a
// basis point) per CUSIP from position updates, and rolls bucketed sectors
// up from the individual PV01s they contain.
//
// Grounded verbatim on
// _examples/original_source/bondriskservice.hpp /
// _examples/original_source/riskservice.hpp.
package risk

import (
	"math"
	"sync"

	"github.com/nickserkes/bond-pipeline/internal/bond"
	"github.com/nickserkes/bond-pipeline/internal/svc"
)

// Service stores the latest PV01 per CUSIP.
type Service struct {
	*svc.Store[string, bond.PV01]

	mu        sync.Mutex
	pv01Cache map[string]float64

	// bucketMu and byProduct are a second, independent snapshot of the same
	// data svc.Store holds, read by GetBucketedRisk instead of GetData. A
	// listener registered on this service's embedded Store (e.g. the risk
	// history archiver) runs synchronously inside Store.OnMessage's fan-out,
	// with Store's own mutex held; if GetBucketedRisk called back into
	// GetData from there it would try to re-lock that same held mutex and
	// deadlock the ingest goroutine forever. byProduct is written under
	// bucketMu before OnMessage is ever called, so listeners can read it
	// during fan-out without touching Store's mutex at all.
	bucketMu  sync.Mutex
	byProduct map[string]bond.PV01
}

// New returns a risk service subscribed to position.
func New(position interface {
	AddListener(svc.Listener[bond.Position])
}) *Service {
	s := &Service{
		Store:     svc.New[string, bond.PV01]("risk"),
		pv01Cache: make(map[string]float64),
		byProduct: make(map[string]bond.PV01),
	}
	position.AddListener(positionListener{s})
	return s
}

type positionListener struct{ s *Service }

func (l positionListener) ProcessAdd(pos bond.Position)    { l.s.AddPosition(pos) }
func (l positionListener) ProcessRemove(bond.Position)     {}
func (l positionListener) ProcessUpdate(pos bond.Position) { l.s.AddPosition(pos) }

// AddPosition (re)computes the PV01 for position's product, scaled to its
// current aggregate quantity, and notifies listeners. The bucket snapshot is
// updated before OnMessage's fan-out starts, so a listener invoked during
// that fan-out can safely call GetBucketedRisk without re-entering Store's
// mutex.
func (s *Service) AddPosition(pos bond.Position) {
	quantity := pos.Aggregate()
	perUnit := s.pv01PerUnit(pos.Product)
	pv01 := bond.PV01{
		Product:  pos.Product,
		PerUnit:  perUnit,
		Quantity: quantity,
	}

	s.bucketMu.Lock()
	s.byProduct[pos.Product.ProductID] = pv01
	s.bucketMu.Unlock()

	s.Store.OnMessage(pos.Product.ProductID, pv01)
}

// pv01PerUnit memoizes the per-unit PV01 for a bond the first time it's
// requested; the original source never recomputes once cached.
func (s *Service) pv01PerUnit(b bond.Bond) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.pv01Cache[b.ProductID]; ok {
		return v
	}
	// Integer calendar-year difference only; month/day are ignored, matching
	// the original's "maturity.year() - 2024" literally.
	timeToMaturity := float64(b.Maturity.Year - 2024)
	v := calculatePV01(b.Coupon, timeToMaturity)
	s.pv01Cache[b.ProductID] = v
	return v
}

// GetBucketedRisk sums PerUnit*Quantity across every bond in sector that has
// a known PV01, skipping bonds not yet seen (spec §4.10.2: bonds absent from
// risk are skipped, not treated as zero-but-present). It reads from the
// byProduct snapshot rather than GetData/Store.Range: this method is called
// by risk listeners (e.g. the risk history archiver) from inside Store's own
// OnMessage fan-out, and GetData would try to re-lock Store's already-held
// mutex. byProduct carries its own, independent mutex so this never happens.
func (s *Service) GetBucketedRisk(sector bond.BucketedSector) bond.PV01 {
	s.bucketMu.Lock()
	defer s.bucketMu.Unlock()

	var total float64
	for _, product := range sector.Products {
		pv01, ok := s.byProduct[product.ProductID]
		if !ok {
			continue
		}
		total += pv01.PerUnit * float64(pv01.Quantity)
	}
	return bond.PV01{
		Product:  bond.Bond{ProductID: sector.Name, Ticker: sector.Name},
		PerUnit:  total,
		Quantity: 1,
	}
}

// calculatePrice discounts semi-annual coupon payments plus face value at
// yield, translated verbatim from the original's calculatePrice.
func calculatePrice(couponRate, yield float64, timeToMaturity float64, faceValue float64) float64 {
	periods := int(timeToMaturity * 2)
	semiAnnualYield := yield / 2
	semiAnnualCoupon := couponRate * faceValue / 2

	price := 0.0
	for t := 1; t <= periods; t++ {
		price += semiAnnualCoupon / math.Pow(1+semiAnnualYield, float64(t))
	}
	price += faceValue / math.Pow(1+semiAnnualYield, float64(periods))
	return price
}

// calculatePV01 is the price delta for a one-basis-point yield bump on a
// bond priced at par with yield assumed equal to its coupon rate,
// translated verbatim from the original's calculatePV01.
func calculatePV01(couponRate float64, timeToMaturity float64) float64 {
	const faceValue = 100.0
	yield := couponRate
	initialPrice := calculatePrice(couponRate, yield, timeToMaturity, faceValue)
	newPrice := calculatePrice(couponRate, yield+0.0001, timeToMaturity, faceValue)
	return initialPrice - newPrice
}
