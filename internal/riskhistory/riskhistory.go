// Package riskhistory implements BondRiskHistoricalDataService: the risk
// archiver's row needs more than the PV01 value being persisted — it looks
// up the bond's sector and asks the live risk service for that sector's
// currently bucketed PV01 at the moment of archiving, so it cannot reuse
// the generic internal/historical.Archiver.
//
// Grounded verbatim on
// _examples/original_source/bondriskhistoricaldataservice.hpp.
package riskhistory

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/nickserkes/bond-pipeline/internal/bond"
	"github.com/nickserkes/bond-pipeline/internal/refdata"
	"github.com/nickserkes/bond-pipeline/internal/svc"
	"github.com/nickserkes/bond-pipeline/internal/wire"
)

// Header is the risk archiver's preamble, grounded verbatim on
// filewriterconnector.hpp's RISK case.
const Header = "Timestamp, CUSIP, PV01, Quantity, PV01*Quantity, Grouping, CombinedRisk (PV01*Quantity)"

// riskService is the subset of risk.Service this archiver depends on.
type riskService interface {
	GetBucketedRisk(sector bond.BucketedSector) bond.PV01
}

// Archiver writes one timestamped row per risk update: the PV01 columns
// plus the bond's sector name and that sector's live bucketed PV01.
type Archiver struct {
	mu      sync.Mutex
	w       io.Writer
	risk    riskService
	sectors map[string]bond.BucketedSector // by CUSIP
	now     func() time.Time
}

// New writes Header immediately, builds the CUSIP->sector lookup from
// table's reference data and refdata.DefaultSectorCUSIPs, and subscribes to
// risk for PV01 updates.
func New(w io.Writer, table *refdata.Table, risk interface {
	riskService
	AddListener(svc.Listener[bond.PV01])
}) *Archiver {
	sectorBuckets := table.BuildSectors(refdata.DefaultSectorCUSIPs())
	sectors := make(map[string]bond.BucketedSector)
	for _, sector := range sectorBuckets {
		for _, product := range sector.Products {
			sectors[product.ProductID] = sector
		}
	}

	a := &Archiver{w: w, risk: risk, sectors: sectors, now: time.Now}
	fmt.Fprintln(w, Header)
	risk.AddListener(pv01Listener{a})
	return a
}

type pv01Listener struct{ a *Archiver }

func (l pv01Listener) ProcessAdd(v bond.PV01)    { l.a.persist(v) }
func (l pv01Listener) ProcessRemove(bond.PV01)   {}
func (l pv01Listener) ProcessUpdate(bond.PV01)   {}

// persist looks up the bond's sector (skipping the row if the bond belongs
// to no tracked sector) and asks risk for that sector's current bucketed
// PV01 before writing the row.
func (a *Archiver) persist(v bond.PV01) {
	a.mu.Lock()
	defer a.mu.Unlock()

	sector, ok := a.sectors[v.Product.ProductID]
	if !ok {
		return
	}
	sectorRisk := a.risk.GetBucketedRisk(sector)
	fmt.Fprintf(a.w, "%s,%s,%s,%s\n",
		wire.Timestamp(a.now()), wire.PV01Record(v), sector.Name,
		strconv.FormatFloat(sectorRisk.PerUnit, 'f', -1, 64))
}
