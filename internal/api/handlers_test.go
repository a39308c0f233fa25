package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/nickserkes/bond-pipeline/internal/audit"
	"github.com/nickserkes/bond-pipeline/internal/bond"
	"github.com/nickserkes/bond-pipeline/internal/refdata"
)

const testCUSIP = "91282CLY5"

func testTable(t *testing.T) *refdata.Table {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "TBonds.csv")
	csv := testCUSIP + ",x,T2Y,4.5,11/30/26\n91282CMB4,x,T3Y,4.25,11/30/27\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}
	table, err := refdata.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	return table
}

type stubPrices struct{ v bond.Price; ok bool }

func (s stubPrices) GetData(string) (bond.Price, bool) { return s.v, s.ok }

type stubMarket struct {
	v   bond.OrderBook
	err error
}

func (s stubMarket) AggregateDepth(string) (bond.OrderBook, error) { return s.v, s.err }

type stubStreams struct{ v bond.AlgoStream; ok bool }

func (s stubStreams) GetData(string) (bond.AlgoStream, bool) { return s.v, s.ok }

type stubExecution struct{ v bond.ExecutionOrder; ok bool }

func (s stubExecution) GetData(string) (bond.ExecutionOrder, bool) { return s.v, s.ok }

type stubTrades struct {
	v   []audit.TradeRecord
	err error
}

func (s stubTrades) QueryTrades(ctx context.Context, cusip string, limit int) ([]audit.TradeRecord, error) {
	return s.v, s.err
}

type stubPositions struct{ v bond.Position; ok bool }

func (s stubPositions) GetData(string) (bond.Position, bool) { return s.v, s.ok }

type stubRisk struct {
	v         bond.PV01
	ok        bool
	bucketed  bond.PV01
}

func (s stubRisk) GetData(string) (bond.PV01, bool)                    { return s.v, s.ok }
func (s stubRisk) GetBucketedRisk(bond.BucketedSector) bond.PV01 { return s.bucketed }

type stubInquiries struct{ v bond.Inquiry; ok bool }

func (s stubInquiries) GetData(string) (bond.Inquiry, bool) { return s.v, s.ok }

func newTestServer(t *testing.T, prices priceReader, market marketDataReader, streams streamReader,
	execution executionReader, trades tradeHistoryReader, positions positionReader, risk riskReader,
	inquiries inquiryReader) (*Server, *http.ServeMux) {
	t.Helper()
	srv := NewServer(testTable(t), prices, market, streams, execution, trades, positions, risk, inquiries, refdata.DefaultSectorCUSIPs())
	mux := http.NewServeMux()
	srv.Register(mux)
	return srv, mux
}

func mustDecodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
}

func TestHandlePrice(t *testing.T) {
	_, mux := newTestServer(t, stubPrices{v: bond.Price{Mid: 99.5, Spread: 0.03}, ok: true},
		stubMarket{}, stubStreams{}, stubExecution{}, stubTrades{}, stubPositions{}, stubRisk{}, stubInquiries{})

	req := httptest.NewRequest("GET", "/api/prices/"+testCUSIP, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var out map[string]any
	mustDecodeJSON(t, w.Result(), &out)
	if out["Mid"] != 99.5 {
		t.Errorf("expected Mid=99.5, got %v", out["Mid"])
	}
}

func TestHandlePriceUnknownCUSIP(t *testing.T) {
	_, mux := newTestServer(t, stubPrices{}, stubMarket{}, stubStreams{}, stubExecution{},
		stubTrades{}, stubPositions{}, stubRisk{}, stubInquiries{})

	req := httptest.NewRequest("GET", "/api/prices/000000000", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestHandlePriceNoDataYet(t *testing.T) {
	_, mux := newTestServer(t, stubPrices{ok: false}, stubMarket{}, stubStreams{}, stubExecution{},
		stubTrades{}, stubPositions{}, stubRisk{}, stubInquiries{})

	req := httptest.NewRequest("GET", "/api/prices/"+testCUSIP, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestHandleSectorRisk(t *testing.T) {
	_, mux := newTestServer(t, stubPrices{}, stubMarket{}, stubStreams{}, stubExecution{}, stubTrades{},
		stubPositions{}, stubRisk{bucketed: bond.PV01{PerUnit: 12.3}}, stubInquiries{})

	req := httptest.NewRequest("GET", "/api/risk/sector/FrontEnd", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var out map[string]any
	mustDecodeJSON(t, w.Result(), &out)
	if out["PerUnit"] != 12.3 {
		t.Errorf("expected PerUnit=12.3, got %v", out["PerUnit"])
	}
}

func TestHandleSectorRiskUnknownSector(t *testing.T) {
	_, mux := newTestServer(t, stubPrices{}, stubMarket{}, stubStreams{}, stubExecution{}, stubTrades{},
		stubPositions{}, stubRisk{}, stubInquiries{})

	req := httptest.NewRequest("GET", "/api/risk/sector/Nonexistent", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestHandleTrade(t *testing.T) {
	_, mux := newTestServer(t, stubPrices{}, stubMarket{}, stubStreams{}, stubExecution{},
		stubTrades{v: []audit.TradeRecord{{TradeID: "E1", CUSIP: testCUSIP, Book: "TRSY1"}}},
		stubPositions{}, stubRisk{}, stubInquiries{})

	req := httptest.NewRequest("GET", "/api/trades/"+testCUSIP, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var out []map[string]any
	mustDecodeJSON(t, w.Result(), &out)
	if len(out) != 1 || out[0]["book"] != "TRSY1" {
		t.Errorf("expected one trade with book=TRSY1, got %v", out)
	}
}

func TestHandleTradeAuditDisabled(t *testing.T) {
	_, mux := newTestServer(t, stubPrices{}, stubMarket{}, stubStreams{}, stubExecution{},
		nil, stubPositions{}, stubRisk{}, stubInquiries{})

	req := httptest.NewRequest("GET", "/api/trades/"+testCUSIP, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	_, mux := newTestServer(t, stubPrices{}, stubMarket{}, stubStreams{}, stubExecution{},
		stubTrades{}, stubPositions{}, stubRisk{}, stubInquiries{})

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var out map[string]any
	mustDecodeJSON(t, w.Result(), &out)
	if out["status"] != "ok" || out["auditMirror"] != true {
		t.Errorf("unexpected health response: %v", out)
	}
}

func TestHandleStats(t *testing.T) {
	_, mux := newTestServer(t, stubPrices{}, stubMarket{}, stubStreams{}, stubExecution{}, stubTrades{},
		stubPositions{}, stubRisk{}, stubInquiries{})

	req := httptest.NewRequest("GET", "/api/stats", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var out map[string]any
	mustDecodeJSON(t, w.Result(), &out)
	if out["bonds"] != float64(2) {
		t.Errorf("expected bonds=2, got %v", out["bonds"])
	}
}

func TestParseIntParam(t *testing.T) {
	tests := []struct {
		url  string
		key  string
		def  int
		want int
	}{
		{"/test", "limit", 100, 100},
		{"/test?limit=50", "limit", 100, 50},
		{"/test?limit=abc", "limit", 100, 100},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", tt.url, nil)
		got := parseIntParam(req, tt.key, tt.def)
		if got != tt.want {
			t.Errorf("parseIntParam(%q, %q, %d) = %d, want %d", tt.url, tt.key, tt.def, got, tt.want)
		}
	}
}
