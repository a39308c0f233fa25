package audit

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/nickserkes/bond-pipeline/internal/bond"
	"github.com/nickserkes/bond-pipeline/internal/svc"
)

// Mirror subscribes to trade booking, position, and risk updates and
// writes each one to MongoDB. Every write is best-effort: a mirror failure
// is logged, never propagated back into the service graph it observes.
type Mirror struct {
	store *Store
}

// NewMirror wires a Mirror to the given upstream services.
func NewMirror(store *Store,
	tradeBooking interface{ AddListener(svc.Listener[bond.Trade]) },
	position interface{ AddListener(svc.Listener[bond.Position]) },
	risk interface{ AddListener(svc.Listener[bond.PV01]) },
) *Mirror {
	m := &Mirror{store: store}
	tradeBooking.AddListener(tradeListener{m})
	position.AddListener(positionListener{m})
	risk.AddListener(riskListener{m})
	return m
}

type tradeListener struct{ m *Mirror }

func (l tradeListener) ProcessAdd(t bond.Trade)    { l.m.saveTrade(t) }
func (l tradeListener) ProcessRemove(bond.Trade)   {}
func (l tradeListener) ProcessUpdate(bond.Trade)   {}

type positionListener struct{ m *Mirror }

func (l positionListener) ProcessAdd(p bond.Position)    { l.m.savePosition(p) }
func (l positionListener) ProcessRemove(bond.Position)   {}
func (l positionListener) ProcessUpdate(p bond.Position) { l.m.savePosition(p) }

type riskListener struct{ m *Mirror }

func (l riskListener) ProcessAdd(v bond.PV01)    { l.m.saveRisk(v) }
func (l riskListener) ProcessRemove(bond.PV01)   {}
func (l riskListener) ProcessUpdate(v bond.PV01) { l.m.saveRisk(v) }

func (m *Mirror) saveTrade(t bond.Trade) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := m.store.db.Collection("trades").InsertOne(ctx, bson.M{
		"trade_id":  t.TradeID,
		"cusip":     t.Product.ProductID,
		"book":      t.Book,
		"side":      t.Side.String(),
		"price":     t.Price,
		"quantity":  t.Quantity,
		"booked_at": time.Now(),
	})
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return // idempotent: a trade id is booked exactly once
	}
	if err != nil {
		log.Printf("audit: save trade %s: %v", t.TradeID, err)
	}
}

func (m *Mirror) savePosition(p bond.Position) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := m.store.db.Collection("positions").UpdateOne(ctx,
		bson.M{"cusip": p.Product.ProductID},
		bson.M{"$set": bson.M{
			"cusip":      p.Product.ProductID,
			"books":      p.Books,
			"aggregate":  p.Aggregate(),
			"updated_at": time.Now(),
		}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		log.Printf("audit: save position %s: %v", p.Product.ProductID, err)
	}
}

func (m *Mirror) saveRisk(v bond.PV01) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := m.store.db.Collection("risk").UpdateOne(ctx,
		bson.M{"cusip": v.Product.ProductID},
		bson.M{"$set": bson.M{
			"cusip":      v.Product.ProductID,
			"per_unit":   v.PerUnit,
			"quantity":   v.Quantity,
			"total_risk": v.TotalRisk(),
			"updated_at": time.Now(),
		}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		log.Printf("audit: save risk %s: %v", v.Product.ProductID, err)
	}
}
