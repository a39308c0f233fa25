package audit

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// TradeRecord is one row of the mirrored trades collection, as returned by
// QueryTrades.
type TradeRecord struct {
	TradeID  string    `bson:"trade_id"  json:"tradeId"`
	CUSIP    string    `bson:"cusip"     json:"cusip"`
	Book     string    `bson:"book"      json:"book"`
	Side     string    `bson:"side"      json:"side"`
	Price    float64   `bson:"price"     json:"price"`
	Quantity int64     `bson:"quantity"  json:"quantity"`
	BookedAt time.Time `bson:"booked_at" json:"bookedAt"`
}

// QueryTrades returns the most recent mirrored trades for cusip, newest
// first, bounded by limit.
func (s *Store) QueryTrades(ctx context.Context, cusip string, limit int) ([]TradeRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "booked_at", Value: -1}}).SetLimit(int64(limit))
	cur, err := s.db.Collection("trades").Find(ctx, bson.M{"cusip": cusip}, opts)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer cur.Close(ctx)

	var out []TradeRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode trades: %w", err)
	}
	return out, nil
}
