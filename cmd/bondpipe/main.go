// Command bondpipe wires the full bond pricing/trading service graph:
// four inbound TCP feeds drive pricing/market-data, which derive algo
// streams and algo executions, which book trades, positions, and risk;
// five CSV historical archivers, an optional MongoDB audit mirror, an
// optional S3 cold storage rotator, a REST read API, and a GUI
// websocket dashboard all observe the graph without altering it.
//
// Grounded on _examples/ndrandal-feed-simulator/cmd/feedsim/main.go's
// overall shape: config.Load, context+signal.Notify graceful shutdown,
// background workers started as goroutines, one http.Server carrying
// both the REST API and the dashboard, Shutdown on <-ctx.Done().
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/nickserkes/bond-pipeline/internal/algoexecution"
	"github.com/nickserkes/bond-pipeline/internal/algostreaming"
	"github.com/nickserkes/bond-pipeline/internal/api"
	"github.com/nickserkes/bond-pipeline/internal/audit"
	"github.com/nickserkes/bond-pipeline/internal/coldstore"
	"github.com/nickserkes/bond-pipeline/internal/config"
	"github.com/nickserkes/bond-pipeline/internal/connector"
	"github.com/nickserkes/bond-pipeline/internal/execution"
	"github.com/nickserkes/bond-pipeline/internal/gui"
	"github.com/nickserkes/bond-pipeline/internal/guiws"
	"github.com/nickserkes/bond-pipeline/internal/historical"
	"github.com/nickserkes/bond-pipeline/internal/inquiry"
	"github.com/nickserkes/bond-pipeline/internal/marketdata"
	"github.com/nickserkes/bond-pipeline/internal/position"
	"github.com/nickserkes/bond-pipeline/internal/pricing"
	"github.com/nickserkes/bond-pipeline/internal/refdata"
	"github.com/nickserkes/bond-pipeline/internal/risk"
	"github.com/nickserkes/bond-pipeline/internal/riskhistory"
	"github.com/nickserkes/bond-pipeline/internal/streaming"
	"github.com/nickserkes/bond-pipeline/internal/tradebooking"
	"github.com/nickserkes/bond-pipeline/internal/wire"
)

func main() {
	cfg := config.Load()

	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Println("bondpipe starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("received signal %v, shutting down...", sig)
		cancel()
	}()

	table, err := refdata.Load(cfg.BondCSVPath)
	if err != nil {
		log.Fatalf("load reference data: %v", err)
	}
	log.Printf("loaded %d bonds from %s", table.Len(), cfg.BondCSVPath)

	if err := os.MkdirAll(cfg.HistoricalDir, 0o755); err != nil {
		log.Fatalf("create historical dir: %v", err)
	}

	// Outbound publishers. Services that publish (streaming, execution) need
	// these before they can be constructed.
	streamingOut, err := connector.ListenOutbound(ctx, "streaming", cfg.StreamingAddr)
	if err != nil {
		log.Fatalf("listen streaming outbound: %v", err)
	}
	executionOut, err := connector.ListenOutbound(ctx, "execution", cfg.ExecutionAddr)
	if err != nil {
		log.Fatalf("listen execution outbound: %v", err)
	}

	// Core service graph, wired in dependency order.
	pricingSvc := pricing.New()
	algoStreamingSvc := algostreaming.New(pricingSvc)
	streamingSvc := streaming.New(streamingOut, algoStreamingSvc)

	marketDataSvc := marketdata.New()
	algoExecutionSvc := algoexecution.New(marketDataSvc)
	executionSvc := execution.New(executionOut, algoExecutionSvc)
	tradeBookingSvc := tradebooking.New(executionSvc)
	positionSvc := position.New(tradeBookingSvc)
	riskSvc := risk.New(positionSvc)

	inquirySvc := inquiry.New()

	guiSvc := gui.New(os.Stdout, pricingSvc)
	guiHub := guiws.NewHub(64, guiSvc)

	// Historical CSV archivers, one file per feed.
	historicalFile(cfg.HistoricalDir, "positions.csv", func(w *os.File) {
		historical.New(w, historical.PositionsHeader, wire.PositionRecord, positionSvc)
	})
	historicalFile(cfg.HistoricalDir, "executions.csv", func(w *os.File) {
		historical.New(w, historical.ExecutionsHeader, wire.ExecutionOrderRecord, executionSvc)
	})
	historicalFile(cfg.HistoricalDir, "streaming.csv", func(w *os.File) {
		historical.New(w, historical.StreamingHeader, wire.AlgoStreamRecord, streamingSvc)
	})
	historicalFile(cfg.HistoricalDir, "inquiries.csv", func(w *os.File) {
		historical.New(w, historical.InquiriesHeader, wire.InquiryRecord, inquirySvc)
	})
	historicalFile(cfg.HistoricalDir, "risk.csv", func(w *os.File) {
		riskhistory.New(w, table, riskSvc)
	})

	// Audit mirror: optional, keyed off MongoURI.
	var auditStore *audit.Store
	if cfg.MongoURI != "" {
		auditStore, err = audit.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Fatalf("audit mirror: connect: %v", err)
		}
		defer auditStore.Close(context.Background())

		if err := auditStore.Migrate(ctx); err != nil {
			log.Fatalf("audit mirror: migrate: %v", err)
		}
		audit.NewMirror(auditStore, tradeBookingSvc, positionSvc, riskSvc)
		go audit.RunRetention(ctx, auditStore, cfg.AuditRetentionDays)
	} else {
		log.Println("audit mirror disabled (no MONGO_URI)")
	}

	// Cold storage rotation: always gzips aged historical CSVs; uploads to
	// S3 only when a bucket is configured.
	var uploader coldstore.Uploader
	if cfg.S3Bucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3Region))
		if err != nil {
			log.Fatalf("cold storage: load AWS config: %v", err)
		}
		uploader = s3.NewFromConfig(awsCfg)
	} else {
		log.Println("cold storage S3 upload disabled (no S3_BUCKET); rotating to local gzip only")
	}
	rotator := coldstore.New(cfg.HistoricalDir, cfg.ColdStoreAfterHrs, cfg.S3Bucket, cfg.S3Prefix, uploader)
	go rotator.Run(ctx, time.Duration(cfg.ColdStoreIntervalMin)*time.Minute)

	// Inbound feeds.
	pricesIn, err := connector.ListenInbound("prices", cfg.PricesAddr, func(line string) {
		price, err := wire.ParsePrice(line, table)
		if err != nil {
			log.Printf("prices: %v", err)
			return
		}
		pricingSvc.OnMessage(price)
	})
	if err != nil {
		log.Fatalf("listen prices inbound: %v", err)
	}
	go pricesIn.Serve(ctx)

	tradesIn, err := connector.ListenInbound("trades", cfg.TradesAddr, func(line string) {
		trade, err := wire.ParseTrade(line, table)
		if err != nil {
			log.Printf("trades: %v", err)
			return
		}
		// Writes straight into the trade booking store, in parallel with the
		// execution-derived path below — both write into the same keyed
		// store, matching the original's two independent producers into one
		// TradeBookingService.
		tradeBookingSvc.OnMessage(trade.TradeID, trade)
	})
	if err != nil {
		log.Fatalf("listen trades inbound: %v", err)
	}
	go tradesIn.Serve(ctx)

	marketDataIn, err := connector.ListenInbound("marketdata", cfg.MarketDataAddr, func(line string) {
		book, err := wire.ParseOrderBook(line, table)
		if err != nil {
			log.Printf("marketdata: %v", err)
			return
		}
		marketDataSvc.OnMessage(book)
	})
	if err != nil {
		log.Fatalf("listen marketdata inbound: %v", err)
	}
	go marketDataIn.Serve(ctx)

	inquiriesIn, err := connector.ListenInbound("inquiries", cfg.InquiriesAddr, func(line string) {
		inq, err := wire.ParseInquiry(line, table)
		if err != nil {
			log.Printf("inquiries: %v", err)
			return
		}
		inquirySvc.OnMessage(inq)
	})
	if err != nil {
		log.Fatalf("listen inquiries inbound: %v", err)
	}
	go inquiriesIn.Serve(ctx)

	// REST API + GUI websocket dashboard on one HTTP server.
	var auditReader interface {
		QueryTrades(ctx context.Context, cusip string, limit int) ([]audit.TradeRecord, error)
	}
	if auditStore != nil {
		auditReader = auditStore
	}
	apiServer := api.NewServer(table, pricingSvc, marketDataSvc, algoStreamingSvc, executionSvc,
		auditReader, positionSvc, riskSvc, inquirySvc, refdata.DefaultSectorCUSIPs())

	mux := http.NewServeMux()
	apiServer.Register(mux)
	mux.HandleFunc("GET /dashboard", guiws.Handler(guiHub))

	srv := &http.Server{Addr: cfg.APIAddr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
		streamingOut.Close()
		executionOut.Close()
		pricesIn.Close()
		tradesIn.Close()
		marketDataIn.Close()
		inquiriesIn.Close()
	}()

	log.Printf("REST API listening on http://%s/api/bonds", cfg.APIAddr)
	log.Printf("GUI dashboard listening on ws://%s/dashboard", cfg.APIAddr)
	log.Printf("inbound: prices=%s trades=%s marketdata=%s inquiries=%s",
		cfg.PricesAddr, cfg.TradesAddr, cfg.MarketDataAddr, cfg.InquiriesAddr)
	log.Printf("outbound: streaming=%s execution=%s", streamingOut.Addr(), executionOut.Addr())

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}

	log.Println("bondpipe stopped")
}

// historicalFile opens dir/name for append (creating it if absent) and
// calls build with the resulting file. The archiver build funcs never need
// to close the file: it lives for the process lifetime, like the teacher's
// own long-lived file handles in cmd/feedsim.
func historicalFile(dir, name string, build func(*os.File)) {
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatalf("open historical file %s: %v", path, err)
	}
	build(f)
}
