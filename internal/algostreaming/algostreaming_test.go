package algostreaming

import (
	"testing"

	"github.com/nickserkes/bond-pipeline/internal/bond"
	"github.com/nickserkes/bond-pipeline/internal/pricing"
)

func TestOnPriceDerivesStraddleAndAlternates(t *testing.T) {
	prices := pricing.New()
	streams := New(prices)

	product := bond.Bond{ProductID: "91282CLY5"}
	prices.OnMessage(bond.Price{Product: product, Mid: 100, Spread: 1.0 / 16})

	got, ok := streams.GetData("91282CLY5")
	if !ok {
		t.Fatal("expected algo stream to be present")
	}
	if got.PriceStream.Bid.Price != 100-1.0/32 || got.PriceStream.Offer.Price != 100+1.0/32 {
		t.Fatalf("straddle = %+v", got.PriceStream)
	}
	if got.PriceStream.Bid.Visible != 1_000_000 || got.PriceStream.Bid.Hidden != 2_000_000 {
		t.Fatalf("first call sizes = %+v", got.PriceStream.Bid)
	}

	prices.OnMessage(bond.Price{Product: product, Mid: 100, Spread: 1.0 / 16})
	got, _ = streams.GetData("91282CLY5")
	if got.PriceStream.Bid.Visible != 2_000_000 || got.PriceStream.Bid.Hidden != 4_000_000 {
		t.Fatalf("second call sizes = %+v", got.PriceStream.Bid)
	}
}
