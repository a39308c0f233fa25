package wire

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nickserkes/bond-pipeline/internal/bond"
)

// Timestamp renders t as HH:MM:SS.mmm, the prefix every outbound and
// historical line carries (original uses localtime + a manual millisecond
// suffix; time.Format with "15:04:05.000" is the Go idiom for the same
// shape).
func Timestamp(t time.Time) string {
	return t.Format("15:04:05.000")
}

// StreamingCSV formats one AlgoStream as the streaming outbound line
// (port 9000), grounded verbatim on bondstreamingservice.hpp's Publish.
func StreamingCSV(ts time.Time, s bond.AlgoStream) string {
	ps := s.PriceStream
	return fmt.Sprintf("%s,%s,%s,%s,%d,%d,%d,%d\n",
		Timestamp(ts), ps.Product.ProductID,
		formatFloat(ps.Bid.Price), formatFloat(ps.Offer.Price),
		ps.Bid.Visible, ps.Bid.Hidden, ps.Offer.Visible, ps.Offer.Hidden)
}

// ExecutionCSV formats one ExecutionOrder as the executions outbound line
// (port 3000), grounded verbatim on bondexecutionservice.hpp's Publish.
// Pricing side BID maps to BUY, OFFER maps to SELL (the verb names the
// aggressor, not the quoted side).
func ExecutionCSV(o bond.ExecutionOrder) string {
	side := "SELL"
	if o.Side == bond.Bid {
		side = "BUY"
	}
	return fmt.Sprintf("%s,%s,%s,%s,%s,%d\n",
		o.Product.ProductID, o.OrderID, o.OrderType.String(), side,
		formatFloat(o.Price), o.Visible)
}

// AlgoStreamRecord formats an AlgoStream for the streaming historical
// archiver: the same fields as StreamingCSV minus the timestamp, since the
// generic archiver (internal/historical) prepends its own.
func AlgoStreamRecord(s bond.AlgoStream) string {
	ps := s.PriceStream
	return fmt.Sprintf("%s,%s,%s,%d,%d,%d,%d",
		ps.Product.ProductID, formatFloat(ps.Bid.Price), formatFloat(ps.Offer.Price),
		ps.Bid.Visible, ps.Bid.Hidden, ps.Offer.Visible, ps.Offer.Hidden)
}

// ExecutionOrderRecord formats an ExecutionOrder for the executions
// historical archiver, reusing the same column shape as ExecutionCSV minus
// the trailing newline (the archiver adds its own).
func ExecutionOrderRecord(o bond.ExecutionOrder) string {
	return strings.TrimSuffix(ExecutionCSV(o), "\n")
}

// PositionRecord formats a Position for the positions historical archiver,
// grounded verbatim on positionservice.hpp's Position::to_string(). Books
// are iterated in sorted order to match C++ std::map's deterministic
// key-sorted iteration.
func PositionRecord(p bond.Position) string {
	var sb strings.Builder
	sb.WriteString(p.Product.ProductID)
	sb.WriteByte(',')
	keys := make([]string, 0, len(p.Books))
	for k := range p.Books {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteByte(',')
		sb.WriteString(strconv.FormatInt(p.Books[k], 10))
		sb.WriteByte(',')
	}
	sb.WriteString("Aggregate,")
	sb.WriteString(strconv.FormatInt(p.Aggregate(), 10))
	return sb.String()
}

// PV01Record formats a PV01 for the risk historical archiver's base
// columns, grounded verbatim on riskservice.hpp's PV01::to_string(). The
// risk archiver (internal/riskhistory) appends sector name and live bucketed PV01
// after this.
func PV01Record(p bond.PV01) string {
	return fmt.Sprintf("%s,%s,%d,%s",
		p.Product.ProductID, strconv.FormatFloat(p.PerUnit, 'f', -1, 64),
		p.Quantity, strconv.FormatFloat(p.TotalRisk(), 'f', -1, 64))
}

// InquiryRecord formats an Inquiry for the inquiries historical
// archiver, grounded verbatim on inquiryservice.hpp's Inquiry::to_string().
func InquiryRecord(i bond.Inquiry) string {
	return fmt.Sprintf("%s,%s,%s,%d,%s,%s",
		i.Product.ProductID, i.InquiryID, i.Side.String(), i.Quantity,
		FormatFractional(i.Price), i.State.String())
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
