// Package gui implements GUIService: a throttled snapshot writer driven by
// pricing updates — a write happens once at least throttleInterval has
// passed since lastUpdate, capped at maxUpdates total writes for the process
// lifetime.
//
// Grounded verbatim on _examples/original_source/guiservice.hpp.
package gui

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/nickserkes/bond-pipeline/internal/bond"
	"github.com/nickserkes/bond-pipeline/internal/svc"
	"github.com/nickserkes/bond-pipeline/internal/wire"
)

const (
	throttleInterval = 30 * time.Millisecond
	updateAdvance    = 300 * time.Millisecond
	maxUpdates       = 100
)

// Service snapshots every known price to w whenever at least throttleInterval
// has passed since lastUpdate, stopping entirely once maxUpdates writes have
// happened. Because lastUpdate moves forward by updateAdvance per write
// rather than to the wall clock, a long idle gap lets several writes follow
// one another with less than throttleInterval between them.
type Service struct {
	*svc.Store[string, bond.Price]

	mu          sync.Mutex
	w           io.Writer
	lastUpdate  time.Time
	updateCount int
	now         func() time.Time
}

// New returns a GUI throttler writing snapshots to w, subscribed to
// pricing.
func New(w io.Writer, pricing interface {
	AddListener(svc.Listener[bond.Price])
}) *Service {
	s := &Service{
		Store:      svc.New[string, bond.Price]("gui"),
		w:          w,
		lastUpdate: time.Now(),
		now:        time.Now,
	}
	pricing.AddListener(priceListener{s})
	return s
}

type priceListener struct{ s *Service }

func (l priceListener) ProcessAdd(price bond.Price) { l.s.OnMessage(price) }
func (l priceListener) ProcessRemove(bond.Price)     {}
func (l priceListener) ProcessUpdate(bond.Price)     {}

// OnMessage updates the latest price for its CUSIP unconditionally, then —
// unless the write cap has already been hit — checks the throttle gate and,
// if it has elapsed, writes a full snapshot of every known price and
// notifies listeners with the triggering price. lastUpdate only ever
// advances by a fixed updateAdvance on a successful write, it is never reset
// to wall-clock now (matches the original's "lastUpdate += 300ms").
func (s *Service) OnMessage(price bond.Price) {
	s.Store.Set(price.Product.ProductID, price)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.updateCount >= maxUpdates {
		return
	}
	now := s.now()
	if now.Sub(s.lastUpdate) < throttleInterval {
		return
	}

	s.updateCount++
	fmt.Fprintf(s.w, "Timestamp: %s | Price Update %d:\n", wire.Timestamp(now), s.updateCount)

	snapshot := make(map[string]bond.Price)
	s.Range(func(productID string, p bond.Price) { snapshot[productID] = p })
	ids := make([]string, 0, len(snapshot))
	for id := range snapshot {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		p := snapshot[id]
		fmt.Fprintf(s.w, "%s Mid: %s Spread: %s\n", id,
			wire.FormatFractional(p.Mid), wire.Format256th(p.Spread))
	}

	s.lastUpdate = s.lastUpdate.Add(updateAdvance)
	s.Store.Notify(price)
}
