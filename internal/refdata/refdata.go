// Package refdata loads the static CUSIP -> bond.Bond reference table from a
// CSV file at startup. The table is read-only after Load returns.
//
// Grounded on _examples/original_source/pricesocketreaderconnector.hpp's
// GetBondMap() (warn-and-skip malformed lines, never abort the whole load)
// and structurally on the teacher's internal/symbol.Symbol table (typed
// reference data with lookup helpers), generalized from hardcoded Go
// literals to CSV-driven loading per spec.md §6.4.
package refdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/nickserkes/bond-pipeline/internal/bond"
)

// Table is the immutable CUSIP -> Bond reference table.
type Table struct {
	byCUSIP map[string]bond.Bond
}

// Load reads path (TBonds.csv: productId, _, ticker, coupon,
// maturityDate(MM/DD/YY(YY))) and returns the resulting Table. Malformed
// rows are logged and skipped, mirroring GetBondMap's tolerance for bad
// input — a single bad reference row must never prevent the rest of the
// universe from loading.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("refdata: open %s: %w", path, err)
	}
	defer f.Close()

	t := &Table{byCUSIP: make(map[string]bond.Bond)}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	lineNo := 0
	for {
		lineNo++
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("refdata: %s: line %d: %v, skipping", path, lineNo, err)
			continue
		}
		b, err := parseRow(record)
		if err != nil {
			log.Printf("refdata: %s: line %d: %v, skipping", path, lineNo, err)
			continue
		}
		if _, dup := t.byCUSIP[b.ProductID]; dup {
			log.Printf("refdata: %s: line %d: duplicate CUSIP %s, overwriting", path, lineNo, b.ProductID)
		}
		t.byCUSIP[b.ProductID] = b
	}
	return t, nil
}

func parseRow(tokens []string) (bond.Bond, error) {
	if len(tokens) < 5 {
		return bond.Bond{}, fmt.Errorf("want >= 5 columns, got %d", len(tokens))
	}
	productID := strings.TrimSpace(tokens[0])
	ticker := strings.TrimSpace(tokens[2])
	coupon, err := strconv.ParseFloat(strings.TrimSpace(tokens[3]), 64)
	if err != nil {
		return bond.Bond{}, fmt.Errorf("coupon %q: %w", tokens[3], err)
	}
	maturity, err := parseMaturity(strings.TrimSpace(tokens[4]))
	if err != nil {
		return bond.Bond{}, fmt.Errorf("maturity %q: %w", tokens[4], err)
	}
	return bond.Bond{
		ProductID: productID,
		Ticker:    ticker,
		Coupon:    coupon,
		Maturity:  maturity,
	}, nil
}

// parseMaturity parses MM/DD/YY or MM/DD/YYYY, normalising two-digit years
// to 2000+yy (spec.md §6.4).
func parseMaturity(s string) (bond.MaturityDate, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return bond.MaturityDate{}, fmt.Errorf("want MM/DD/YY(YY), got %q", s)
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil {
		return bond.MaturityDate{}, err
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return bond.MaturityDate{}, err
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return bond.MaturityDate{}, err
	}
	if year < 100 {
		year += 2000
	}
	return bond.MaturityDate{Month: month, Day: day, Year: year}, nil
}

// Lookup returns the Bond for cusip and whether it was found.
func (t *Table) Lookup(cusip string) (bond.Bond, bool) {
	b, ok := t.byCUSIP[cusip]
	return b, ok
}

// All returns every bond in the table; order is unspecified.
func (t *Table) All() []bond.Bond {
	out := make([]bond.Bond, 0, len(t.byCUSIP))
	for _, b := range t.byCUSIP {
		out = append(out, b)
	}
	return out
}

// Len reports the number of bonds loaded.
func (t *Table) Len() int {
	return len(t.byCUSIP)
}

// DefaultSectorCUSIPs is the canonical FrontEnd/Belly/LongEnd partition of
// the bond universe by CUSIP, grounded on the hardcoded lists in
// _examples/original_source/bondriskhistoricaldataservice.hpp. Sector names
// and membership are configuration in principle (spec.md §4.10.2) but this
// reference implementation's universe is small enough to ship as a default.
func DefaultSectorCUSIPs() map[string][]string {
	return map[string][]string{
		"FrontEnd": {"91282CLY5", "91282CMB4"},
		"Belly":    {"91282CMA6", "91282CLZ2", "91282CLW9"},
		"LongEnd":  {"912810UF3", "912810UE6"},
	}
}

// BuildSectors resolves each sector's CUSIP list against t, producing
// bond.BucketedSector values. CUSIPs absent from the table are logged and
// skipped, never fatal to the rest of the sector.
func (t *Table) BuildSectors(sectorCUSIPs map[string][]string) []bond.BucketedSector {
	out := make([]bond.BucketedSector, 0, len(sectorCUSIPs))
	for name, cusips := range sectorCUSIPs {
		var products []bond.Bond
		for _, c := range cusips {
			b, ok := t.Lookup(c)
			if !ok {
				log.Printf("refdata: sector %s: CUSIP %s not in reference table, skipping", name, c)
				continue
			}
			products = append(products, b)
		}
		out = append(out, bond.BucketedSector{Products: products, Name: name})
	}
	return out
}
