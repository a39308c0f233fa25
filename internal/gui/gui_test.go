package gui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/nickserkes/bond-pipeline/internal/bond"
	"github.com/nickserkes/bond-pipeline/internal/svc"
)

type recordingListener struct{ adds int }

func (l *recordingListener) ProcessAdd(bond.Price)    { l.adds++ }
func (l *recordingListener) ProcessRemove(bond.Price) {}
func (l *recordingListener) ProcessUpdate(bond.Price) {}

// fakePricing stands in for pricing.Service: it just remembers listeners and
// lets the test fire a price directly, instead of wiring a full store.
type fakePricing struct {
	listeners []svc.Listener[bond.Price]
}

func (p *fakePricing) AddListener(l svc.Listener[bond.Price]) {
	p.listeners = append(p.listeners, l)
}

func (p *fakePricing) fire(price bond.Price) {
	for _, l := range p.listeners {
		l.ProcessAdd(price)
	}
}

func TestThrottleGatesWrites(t *testing.T) {
	var buf bytes.Buffer
	pricing := &fakePricing{}
	svc := New(&buf, pricing)
	l := &recordingListener{}
	svc.AddListener(l)

	now := time.Date(2026, 1, 1, 9, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	svc.lastUpdate = now.Add(-throttleInterval) // gate just open for the first write

	product := bond.Bond{ProductID: "91282CLY5"}
	pricing.fire(bond.Price{Product: product, Mid: 100, Spread: 1.0 / 16})
	if l.adds != 1 {
		t.Fatalf("expected 1 notify after first write, got %d", l.adds)
	}
	if !strings.Contains(buf.String(), "91282CLY5") {
		t.Fatalf("snapshot missing CUSIP: %q", buf.String())
	}

	// immediately fire again: throttle gate hasn't elapsed, no write/notify
	pricing.fire(bond.Price{Product: product, Mid: 101, Spread: 1.0 / 16})
	if l.adds != 1 {
		t.Fatalf("expected throttle to suppress second notify, got %d", l.adds)
	}

	// but the latest price is still stored regardless of the throttle
	got, ok := svc.GetData("91282CLY5")
	if !ok || got.Mid != 101 {
		t.Fatalf("GetData = %+v, %v", got, ok)
	}
}

func TestMaxUpdatesCap(t *testing.T) {
	var buf bytes.Buffer
	pricing := &fakePricing{}
	svc := New(&buf, pricing)
	svc.updateCount = maxUpdates

	product := bond.Bond{ProductID: "91282CLY5"}
	pricing.fire(bond.Price{Product: product, Mid: 100, Spread: 1.0 / 16})
	if buf.Len() != 0 {
		t.Fatalf("expected no writes past the cap, got %q", buf.String())
	}
}
