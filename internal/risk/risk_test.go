package risk

import (
	"testing"

	"github.com/nickserkes/bond-pipeline/internal/bond"
	"github.com/nickserkes/bond-pipeline/internal/svc"
)

type fakePosition struct {
	listeners []svc.Listener[bond.Position]
}

func (p *fakePosition) AddListener(l svc.Listener[bond.Position]) {
	p.listeners = append(p.listeners, l)
}

func (p *fakePosition) fire(pos bond.Position) {
	for _, l := range p.listeners {
		l.ProcessAdd(pos)
	}
}

func TestAddPositionComputesAndMemoizesPV01(t *testing.T) {
	pos := &fakePosition{}
	svc := New(pos)

	product := bond.Bond{ProductID: "91282CLY5", Coupon: 0.045, Maturity: bond.MaturityDate{Year: 2026}}
	p := bond.NewPosition(product)
	p.AddPosition("TRSY1", 1_000_000)
	pos.fire(p)

	risk, ok := svc.GetData("91282CLY5")
	if !ok {
		t.Fatal("expected risk entry")
	}
	if risk.Quantity != 1_000_000 {
		t.Fatalf("quantity = %d", risk.Quantity)
	}
	if risk.PerUnit == 0 {
		t.Fatalf("expected non-zero PV01 per unit, got %v", risk.PerUnit)
	}

	cached := svc.pv01Cache["91282CLY5"]
	p.AddPosition("TRSY2", 500_000)
	pos.fire(p)
	risk2, _ := svc.GetData("91282CLY5")
	if risk2.PerUnit != cached {
		t.Fatalf("PV01 per unit should stay memoized: got %v, want %v", risk2.PerUnit, cached)
	}
	if risk2.Quantity != 1_500_000 {
		t.Fatalf("quantity after second trade = %d", risk2.Quantity)
	}
}

func TestGetBucketedRiskSkipsUnseenBonds(t *testing.T) {
	pos := &fakePosition{}
	svc := New(pos)

	seen := bond.Bond{ProductID: "91282CLY5", Coupon: 0.045, Maturity: bond.MaturityDate{Year: 2026}}
	p := bond.NewPosition(seen)
	p.AddPosition("TRSY1", 1_000_000)
	pos.fire(p)

	unseen := bond.Bond{ProductID: "91282CMB4"}
	sector := bond.BucketedSector{Name: "FrontEnd", Products: []bond.Bond{seen, unseen}}

	bucketed := svc.GetBucketedRisk(sector)
	want, _ := svc.GetData("91282CLY5")
	if bucketed.PerUnit != want.PerUnit*float64(want.Quantity) {
		t.Fatalf("bucketed PerUnit = %v, want %v", bucketed.PerUnit, want.PerUnit*float64(want.Quantity))
	}
}
