// Package api exposes a read-only REST view over the pipeline's live
// service graph: prices, market data depth, algo streams, executions,
// trades, positions, risk, and inquiries.
//
// Grounded on _examples/ndrandal-feed-simulator/internal/api/api.go's
// Server/Register/writeJSON/writeError/parseIntParam shape, adapted from a
// single market-data simulator to a fan of independent bond-pipeline
// services.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/nickserkes/bond-pipeline/internal/audit"
	"github.com/nickserkes/bond-pipeline/internal/bond"
	"github.com/nickserkes/bond-pipeline/internal/refdata"
)

// priceReader is the subset of pricing.Service the API reads from.
type priceReader interface {
	GetData(cusip string) (bond.Price, bool)
}

// marketDataReader is the subset of marketdata.Service the API reads from.
type marketDataReader interface {
	AggregateDepth(productID string) (bond.OrderBook, error)
}

// streamReader is the subset of algostreaming.Service the API reads from.
type streamReader interface {
	GetData(cusip string) (bond.AlgoStream, bool)
}

// executionReader is the subset of execution.Service the API reads from.
type executionReader interface {
	GetData(cusip string) (bond.ExecutionOrder, bool)
}

// tradeHistoryReader is the subset of audit.Store the API reads trade
// history from. Trades are served from the audit mirror, never from live
// in-memory state, so a restart of the API loses nothing a client can
// already see: the mirror is the durable record.
type tradeHistoryReader interface {
	QueryTrades(ctx context.Context, cusip string, limit int) ([]audit.TradeRecord, error)
}

// positionReader is the subset of position.Service the API reads from.
type positionReader interface {
	GetData(cusip string) (bond.Position, bool)
}

// riskReader is the subset of risk.Service the API reads from.
type riskReader interface {
	GetData(cusip string) (bond.PV01, bool)
	GetBucketedRisk(sector bond.BucketedSector) bond.PV01
}

// inquiryReader is the subset of inquiry.Service the API reads from.
type inquiryReader interface {
	GetData(inquiryID string) (bond.Inquiry, bool)
}

// Server provides REST read endpoints over the live pipeline.
type Server struct {
	table     *refdata.Table
	prices    priceReader
	market    marketDataReader
	streams   streamReader
	execution executionReader
	trades    tradeHistoryReader
	positions positionReader
	risk      riskReader
	inquiries inquiryReader
	sectors   map[string]bond.BucketedSector
	startAt   time.Time
}

// NewServer creates a new API server over the given service readers. trades
// may be nil when the audit mirror is disabled (empty MongoURI); in that
// case /api/trades/{cusip} returns 503. sectorCUSIPs is typically
// refdata.DefaultSectorCUSIPs().
func NewServer(table *refdata.Table, prices priceReader, market marketDataReader, streams streamReader,
	execution executionReader, trades tradeHistoryReader, positions positionReader, risk riskReader,
	inquiries inquiryReader, sectorCUSIPs map[string][]string) *Server {
	sectors := make(map[string]bond.BucketedSector)
	for _, sector := range table.BuildSectors(sectorCUSIPs) {
		sectors[sector.Name] = sector
	}
	return &Server{
		table: table, prices: prices, market: market, streams: streams,
		execution: execution, trades: trades, positions: positions, risk: risk,
		inquiries: inquiries, sectors: sectors, startAt: time.Now(),
	}
}

// Register attaches API routes to the given mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/bonds", s.handleBonds)
	mux.HandleFunc("GET /api/prices/{cusip}", s.handlePrice)
	mux.HandleFunc("GET /api/book/{cusip}", s.handleBookDepth)
	mux.HandleFunc("GET /api/streams/{cusip}", s.handleStream)
	mux.HandleFunc("GET /api/executions/{cusip}", s.handleExecution)
	mux.HandleFunc("GET /api/trades/{cusip}", s.handleTrade)
	mux.HandleFunc("GET /api/positions/{cusip}", s.handlePosition)
	mux.HandleFunc("GET /api/risk/{cusip}", s.handleRisk)
	mux.HandleFunc("GET /api/risk/sector/{sector}", s.handleSectorRisk)
	mux.HandleFunc("GET /api/inquiries/{inquiryId}", s.handleInquiry)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/stats", s.handleStats)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// resolveBond looks up a CUSIP in the reference table, writing a 404 if not
// found. Returns ok=false if the error has already been written.
func (s *Server) resolveBond(w http.ResponseWriter, cusip string) (bond.Bond, bool) {
	b, ok := s.table.Lookup(cusip)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown CUSIP: "+cusip)
		return bond.Bond{}, false
	}
	return b, true
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
