package tradebooking

import (
	"testing"

	"github.com/nickserkes/bond-pipeline/internal/bond"
	"github.com/nickserkes/bond-pipeline/internal/svc"
)

type fakeExecution struct {
	listeners []svc.Listener[bond.ExecutionOrder]
}

func (e *fakeExecution) AddListener(l svc.Listener[bond.ExecutionOrder]) {
	e.listeners = append(e.listeners, l)
}

func (e *fakeExecution) fire(order bond.ExecutionOrder) {
	for _, l := range e.listeners {
		l.ProcessAdd(order)
	}
}

func TestFirstTradeLandsOnTRSY1WithIdE1(t *testing.T) {
	exec := &fakeExecution{}
	svc := New(exec)

	product := bond.Bond{ProductID: "91282CLY5"}
	exec.fire(bond.ExecutionOrder{Product: product, Side: bond.Bid, Price: 100, Visible: 1_000_000, Hidden: 2_000_000})

	trade, ok := svc.GetData("E1")
	if !ok {
		t.Fatal("expected trade E1")
	}
	if trade.Book != "TRSY1" || trade.Side != bond.Buy || trade.Quantity != 3_000_000 {
		t.Fatalf("trade = %+v", trade)
	}
}

func TestBooksRotateAndSideMapsFromPricingSide(t *testing.T) {
	exec := &fakeExecution{}
	svc := New(exec)

	product := bond.Bond{ProductID: "91282CLY5"}
	exec.fire(bond.ExecutionOrder{Product: product, Side: bond.Bid, Price: 100, Visible: 1_000_000})
	exec.fire(bond.ExecutionOrder{Product: product, Side: bond.Offer, Price: 100, Visible: 1_000_000})
	exec.fire(bond.ExecutionOrder{Product: product, Side: bond.Bid, Price: 100, Visible: 1_000_000})
	exec.fire(bond.ExecutionOrder{Product: product, Side: bond.Bid, Price: 100, Visible: 1_000_000})

	e2, _ := svc.GetData("E2")
	if e2.Book != "TRSY2" || e2.Side != bond.Sell {
		t.Fatalf("E2 = %+v", e2)
	}
	e3, _ := svc.GetData("E3")
	if e3.Book != "TRSY3" || e3.Side != bond.Buy {
		t.Fatalf("E3 = %+v", e3)
	}
	e4, _ := svc.GetData("E4")
	if e4.Book != "TRSY1" {
		t.Fatalf("E4 = %+v", e4)
	}
}
