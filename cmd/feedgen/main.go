// Command feedgen is a synthetic feed generator: it dials the four live
// inbound TCP ports a running bondpipe process exposes (prices, trades,
// market data, inquiries) and drives them with plausible traffic, the way an
// operator would point a test harness at the pipeline instead of a real
// upstream venue.
//
// Grounded on _examples/original_source/main.cpp's FileReaderConnector test
// harness, which feeds pre-recorded lines into the program's real inbound
// sockets rather than looping data back in-process, and on
// cmd/feedsim/main.go's symbolRunner/stressRunner split: most bonds tick at
// a fixed interval, one designated bond runs under engine.StressController
// for bursty, variable-rate traffic. Per-tick action selection is grounded
// on internal/orderbook/simulator.go's weighted action dispatch
// (actionWeights + rng.WeightedPick).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/nickserkes/bond-pipeline/internal/bond"
	"github.com/nickserkes/bond-pipeline/internal/engine"
	"github.com/nickserkes/bond-pipeline/internal/refdata"
	"github.com/nickserkes/bond-pipeline/internal/wire"
)

var bookNames = []string{"TRSY1", "TRSY2", "TRSY3"}

// feedActionWeights mirrors orderbook.actionWeights' shape: a fixed
// distribution over what a tick does, picked once per tick via
// rng.WeightedPick. Price updates dominate since every feed consumer expects
// a steady heartbeat of quotes; trades, book refreshes, and inquiries are
// comparatively rare.
var feedActionWeights = []float64{
	0.55, // price update
	0.20, // trade
	0.20, // market data snapshot
	0.05, // customer inquiry
}

const (
	actionPrice      = 0
	actionTrade      = 1
	actionMarketData = 2
	actionInquiry    = 3
)

func main() {
	pricesAddr := flag.String("prices-addr", "localhost:8080", "prices feed address to dial")
	tradesAddr := flag.String("trades-addr", "localhost:8081", "trades feed address to dial")
	marketDataAddr := flag.String("marketdata-addr", "localhost:8082", "market data feed address to dial")
	inquiriesAddr := flag.String("inquiries-addr", "localhost:8083", "inquiries feed address to dial")
	bondCSV := flag.String("bond-csv", "TBonds.csv", "path to the CUSIP reference data CSV")
	seed := flag.Int64("seed", 0, "PRNG seed (0 = seed from current time)")
	tickMs := flag.Int("tick-interval-ms", 500, "tick interval for non-stress bonds, in milliseconds")
	stressCUSIP := flag.String("stress-cusip", "", "CUSIP to drive with bursty variable-rate traffic (empty picks one automatically)")
	flag.Parse()

	log.SetFlags(log.Ltime | log.Lmicroseconds)
	log.Println("feedgen starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("received signal %v, shutting down...", sig)
		cancel()
	}()

	table, err := refdata.Load(*bondCSV)
	if err != nil {
		log.Fatalf("load reference data: %v", err)
	}
	bonds := table.All()
	if len(bonds) == 0 {
		log.Fatalf("no bonds loaded from %s", *bondCSV)
	}
	log.Printf("loaded %d bonds from %s", len(bonds), *bondCSV)

	rng := engine.NewRNG(*seed)
	log.Printf("PRNG seed: %d", *seed)

	feeds := feedClients{
		prices:     dialFeedClient(ctx, "prices", *pricesAddr),
		trades:     dialFeedClient(ctx, "trades", *tradesAddr),
		marketData: dialFeedClient(ctx, "marketdata", *marketDataAddr),
		inquiries:  dialFeedClient(ctx, "inquiries", *inquiriesAddr),
	}
	defer feeds.Close()

	stress := *stressCUSIP
	if stress == "" {
		stress = bonds[len(bonds)-1].ProductID
	}

	ids := &idCounters{}
	interval := time.Duration(*tickMs) * time.Millisecond

	for _, b := range bonds {
		b := b
		if b.ProductID == stress {
			go runStressBond(ctx, rng, b, feeds, ids)
		} else {
			go runBond(ctx, rng, b, feeds, ids, interval)
		}
	}
	log.Printf("driving %d bonds (%s under stress)", len(bonds), stress)

	<-ctx.Done()
	log.Println("feedgen stopped")
}

type feedClients struct {
	prices     *feedClient
	trades     *feedClient
	marketData *feedClient
	inquiries  *feedClient
}

func (f feedClients) Close() {
	f.prices.Close()
	f.trades.Close()
	f.marketData.Close()
	f.inquiries.Close()
}

// idCounters hands out zero-padded sequential ids for trades and inquiries,
// safe for concurrent use across every bond's runner goroutine.
type idCounters struct {
	trade    uint64
	inquiry  uint64
}

func (c *idCounters) nextTrade() string {
	return fmt.Sprintf("T%08d", atomic.AddUint64(&c.trade, 1))
}

func (c *idCounters) nextInquiry() string {
	return fmt.Sprintf("INQ%08d", atomic.AddUint64(&c.inquiry, 1))
}

// bondState tracks one bond's current mid price across ticks, a random walk
// seeded at a uniformly random starting level in [99, 101).
type bondState struct {
	product bond.Bond
	mid     float64
}

func newBondState(rng *engine.RNG, b bond.Bond) *bondState {
	return &bondState{product: b, mid: 99.0 + rng.Float64()*2.0}
}

// runBond drives a single non-stress bond at a fixed tick interval, the
// steady-state counterpart to the stress bond's variable-rate runner.
func runBond(ctx context.Context, rng *engine.RNG, b bond.Bond, feeds feedClients, ids *idCounters, interval time.Duration) {
	st := newBondState(rng, b)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick(rng, feeds, st, ids, 1+rng.Intn(2), feedActionWeights)
		}
	}
}

// runStressBond drives the designated bond under engine.StressController,
// producing calm/active/burst phases of variable tick rate and action count.
func runStressBond(ctx context.Context, rng *engine.RNG, b bond.Bond, feeds feedClients, ids *idCounters) {
	st := newBondState(rng, b)
	ctrl := engine.NewStressController(rng, engine.DefaultStressConfig())
	lastPhaseLog := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		interval, numActions := ctrl.Tick()
		if time.Since(lastPhaseLog) > 5*time.Second {
			log.Printf("feedgen stress %s: phase=%s intensity=%.2f interval=%v actions=%d",
				st.product.ProductID, ctrl.Phase(), ctrl.Intensity(), interval, numActions)
			lastPhaseLog = time.Now()
		}

		weights := ctrl.PhaseActionWeights(feedActionWeights)
		tick(rng, feeds, st, ids, numActions, weights)

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}

// tick performs numActions weighted-random feed emissions for a bond,
// grounded on orderbook.Simulator.Step's action-per-iteration loop. weights
// is feedActionWeights as-is for a steady-state bond, or the stress
// controller's phase-adjusted variant for the designated stress CUSIP.
func tick(rng *engine.RNG, feeds feedClients, st *bondState, ids *idCounters, numActions int, weights []float64) {
	for i := 0; i < numActions; i++ {
		switch rng.WeightedPick(weights) {
		case actionPrice:
			emitPrice(rng, feeds, st)
		case actionTrade:
			emitTrade(rng, feeds, st, ids)
		case actionMarketData:
			emitMarketData(rng, feeds, st)
		case actionInquiry:
			emitInquiry(rng, feeds, st, ids)
		}
	}
}

// emitPrice advances the random walk and publishes the Prices feed line:
// "CUSIP price spread-digit".
func emitPrice(rng *engine.RNG, feeds feedClients, st *bondState) {
	st.mid = rng.PriceWalk(st.mid, 0.01)
	spreadDigit := rng.Intn(10)
	line := fmt.Sprintf("%s %s %d", st.product.ProductID, wire.FormatFractional(st.mid), spreadDigit)
	feeds.prices.Send(line)
}

// emitTrade publishes a Trades feed line: "CUSIP tradeId price book qty side".
func emitTrade(rng *engine.RNG, feeds feedClients, st *bondState, ids *idCounters) {
	price := st.mid + (rng.Float64()-0.5)*0.02
	book := rng.PickString(bookNames)
	qty := rng.Quantity(50, 1_000_000)
	side := rng.Side()
	line := fmt.Sprintf("%s %s %s %s %s %s", st.product.ProductID, ids.nextTrade(),
		strconv.FormatFloat(price, 'f', 4, 64), book, strconv.FormatInt(qty, 10), side)
	feeds.trades.Send(line)
}

// emitMarketData publishes a MarketData feed line: a CUSIP followed by
// repeating (side,price,qtyCode) tuples, per wire.ParseOrderBook.
func emitMarketData(rng *engine.RNG, feeds feedClients, st *bondState) {
	codes := quantityCodes()
	const levels = 3
	tuples := make([]string, 0, levels*2)
	for lvl := 1; lvl <= levels; lvl++ {
		bidPrice := st.mid - float64(lvl)*0.0625
		offerPrice := st.mid + float64(lvl)*0.0625
		bidCode := rng.PickString(codes)
		offerCode := rng.PickString(codes)
		tuples = append(tuples, fmt.Sprintf("0,%s,%s", wire.FormatFractional(bidPrice), bidCode))
		tuples = append(tuples, fmt.Sprintf("1,%s,%s", wire.FormatFractional(offerPrice), offerCode))
	}
	line := st.product.ProductID + ", "
	for i, t := range tuples {
		if i > 0 {
			line += ", "
		}
		line += t
	}
	feeds.marketData.Send(line)
}

// emitInquiry publishes an Inquiries feed line: "inquiryId CUSIP side qty".
func emitInquiry(rng *engine.RNG, feeds feedClients, st *bondState, ids *idCounters) {
	side := rng.Side()
	qty := rng.Quantity(20, 1_000_000)
	line := fmt.Sprintf("%s %s %s %s", ids.nextInquiry(), st.product.ProductID, side, strconv.FormatInt(qty, 10))
	feeds.inquiries.Send(line)
}

var quantityCodeList []string

// quantityCodes returns the wire package's quantity codes as a slice, built
// once from wire.QuantityCodes on first use. The order is that of the map
// iteration at that moment: fixed for the life of the process, but not the
// same from one run to the next.
func quantityCodes() []string {
	if quantityCodeList == nil {
		for code := range wire.QuantityCodes {
			quantityCodeList = append(quantityCodeList, code)
		}
	}
	return quantityCodeList
}
