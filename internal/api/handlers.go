package api

import (
	"net/http"
	"time"
)

const defaultTradeHistoryLimit = 50

// handleBonds returns the full reference data table.
func (s *Server) handleBonds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.table.All())
}

// handlePrice returns the latest quoted price for a CUSIP.
func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	cusip := r.PathValue("cusip")
	if _, ok := s.resolveBond(w, cusip); !ok {
		return
	}
	price, ok := s.prices.GetData(cusip)
	if !ok {
		writeError(w, http.StatusNotFound, "no price for CUSIP: "+cusip)
		return
	}
	writeJSON(w, http.StatusOK, price)
}

// handleBookDepth returns the aggregated market-data depth for a CUSIP.
func (s *Server) handleBookDepth(w http.ResponseWriter, r *http.Request) {
	cusip := r.PathValue("cusip")
	if _, ok := s.resolveBond(w, cusip); !ok {
		return
	}
	book, err := s.market.AggregateDepth(cusip)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// handleStream returns the currently published algo stream for a CUSIP.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	cusip := r.PathValue("cusip")
	if _, ok := s.resolveBond(w, cusip); !ok {
		return
	}
	stream, ok := s.streams.GetData(cusip)
	if !ok {
		writeError(w, http.StatusNotFound, "no stream for CUSIP: "+cusip)
		return
	}
	writeJSON(w, http.StatusOK, stream)
}

// handleExecution returns the latest aggression order published for a CUSIP.
func (s *Server) handleExecution(w http.ResponseWriter, r *http.Request) {
	cusip := r.PathValue("cusip")
	if _, ok := s.resolveBond(w, cusip); !ok {
		return
	}
	exec, ok := s.execution.GetData(cusip)
	if !ok {
		writeError(w, http.StatusNotFound, "no execution for CUSIP: "+cusip)
		return
	}
	writeJSON(w, http.StatusOK, exec)
}

// handleTrade returns the most recent booked trades for a CUSIP, newest
// first, read from the audit mirror rather than live in-memory state.
func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	cusip := r.PathValue("cusip")
	if _, ok := s.resolveBond(w, cusip); !ok {
		return
	}
	if s.trades == nil {
		writeError(w, http.StatusServiceUnavailable, "audit mirror is disabled")
		return
	}
	limit := parseIntParam(r, "limit", defaultTradeHistoryLimit)
	trades, err := s.trades.QueryTrades(r.Context(), cusip, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, trades)
}

// handlePosition returns the current position for a CUSIP.
func (s *Server) handlePosition(w http.ResponseWriter, r *http.Request) {
	cusip := r.PathValue("cusip")
	if _, ok := s.resolveBond(w, cusip); !ok {
		return
	}
	pos, ok := s.positions.GetData(cusip)
	if !ok {
		writeError(w, http.StatusNotFound, "no position for CUSIP: "+cusip)
		return
	}
	writeJSON(w, http.StatusOK, pos)
}

// handleRisk returns the current PV01 for a CUSIP.
func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	cusip := r.PathValue("cusip")
	if _, ok := s.resolveBond(w, cusip); !ok {
		return
	}
	pv01, ok := s.risk.GetData(cusip)
	if !ok {
		writeError(w, http.StatusNotFound, "no risk for CUSIP: "+cusip)
		return
	}
	writeJSON(w, http.StatusOK, pv01)
}

// handleSectorRisk returns the live bucketed PV01 for a named sector
// (FrontEnd, Belly, LongEnd).
func (s *Server) handleSectorRisk(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("sector")
	sector, ok := s.sectors[name]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown sector: "+name)
		return
	}
	writeJSON(w, http.StatusOK, s.risk.GetBucketedRisk(sector))
}

// handleInquiry returns a single customer inquiry by id.
func (s *Server) handleInquiry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("inquiryId")
	inq, ok := s.inquiries.GetData(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown inquiry id: "+id)
		return
	}
	writeJSON(w, http.StatusOK, inq)
}

// handleHealth reports process liveness and whether the audit mirror is
// wired in, mirroring the teacher's inline health handler in cmd/feedsim.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"uptime":      time.Since(s.startAt).Truncate(time.Second).String(),
		"auditMirror": s.trades != nil,
	})
}

type statsResponse struct {
	Uptime string `json:"uptime"`
	Bonds  int    `json:"bonds"`
}

// handleStats returns runtime and reference data statistics.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statsResponse{
		Uptime: time.Since(s.startAt).Truncate(time.Second).String(),
		Bonds:  s.table.Len(),
	})
}
