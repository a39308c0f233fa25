package wire

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nickserkes/bond-pipeline/internal/bond"
	"github.com/nickserkes/bond-pipeline/internal/refdata"
)

// QuantityCodes maps the market-data feed's coded lot sizes to raw
// quantities, grounded on marketdatasocketreaderconnector.hpp's quantityMap.
var QuantityCodes = map[string]int64{
	"10M": 10_000_000,
	"20M": 20_000_000,
	"30M": 30_000_000,
	"40M": 40_000_000,
	"50M": 50_000_000,
}

// QuantityCode is the inverse of QuantityCodes: the code for qty, or false
// when qty has none.
func QuantityCode(qty int64) (string, bool) {
	for code, v := range QuantityCodes {
		if v == qty {
			return code, true
		}
	}
	return "", false
}

// ParsePrice decodes one line of the Prices feed (port 8080):
// "CUSIP price spread-digit", space-delimited, grounded on
// pricesocketreaderconnector.hpp's MakePrice.
func ParsePrice(line string, table *refdata.Table) (bond.Price, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return bond.Price{}, fmt.Errorf("wire: price line %q: want 3 fields, got %d", line, len(fields))
	}
	cusip, priceToken, spreadToken := fields[0], fields[1], fields[2]

	b, ok := table.Lookup(cusip)
	if !ok {
		return bond.Price{}, fmt.Errorf("wire: price line %q: unknown CUSIP %s", line, cusip)
	}
	mid, err := ParsePriceToken(priceToken)
	if err != nil {
		return bond.Price{}, fmt.Errorf("wire: price line %q: %w", line, err)
	}
	if len(spreadToken) != 1 || spreadToken[0] < '0' || spreadToken[0] > '9' {
		return bond.Price{}, fmt.Errorf("wire: price line %q: malformed spread digit %q", line, spreadToken)
	}
	spread := float64(spreadToken[0]-'0') / 128

	return bond.Price{Product: b, Mid: mid, Spread: spread}, nil
}

// ParseTrade decodes one line of the Trades feed (port 8081):
// "CUSIP tradeId price book qty side", space-delimited, grounded on
// tradesocketreaderconnector.hpp's MakeTrade. side '0' = BUY, else SELL.
func ParseTrade(line string, table *refdata.Table) (bond.Trade, error) {
	fields := strings.Fields(line)
	if len(fields) != 6 {
		return bond.Trade{}, fmt.Errorf("wire: trade line %q: want 6 fields, got %d", line, len(fields))
	}
	cusip, tradeID, priceStr, book, qtyStr, sideStr := fields[0], fields[1], fields[2], fields[3], fields[4], fields[5]

	b, ok := table.Lookup(cusip)
	if !ok {
		return bond.Trade{}, fmt.Errorf("wire: trade line %q: unknown CUSIP %s", line, cusip)
	}
	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil {
		return bond.Trade{}, fmt.Errorf("wire: trade line %q: price %w", line, err)
	}
	qty, err := strconv.ParseInt(qtyStr, 10, 64)
	if err != nil {
		return bond.Trade{}, fmt.Errorf("wire: trade line %q: qty %w", line, err)
	}
	side := bond.Sell
	if sideStr == "0" {
		side = bond.Buy
	}
	return bond.Trade{
		Product:  b,
		TradeID:  tradeID,
		Price:    price,
		Book:     book,
		Quantity: qty,
		Side:     side,
	}, nil
}

// ParseInquiry decodes one line of the Inquiries feed (port 8083):
// "inquiryId CUSIP side qty", space-delimited, grounded on
// inquirysocketreaderconnector.hpp's MakeInquiry. side '0' = BUY, else SELL.
func ParseInquiry(line string, table *refdata.Table) (bond.Inquiry, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return bond.Inquiry{}, fmt.Errorf("wire: inquiry line %q: want 4 fields, got %d", line, len(fields))
	}
	inquiryID, cusip, sideStr, qtyStr := fields[0], fields[1], fields[2], fields[3]

	b, ok := table.Lookup(cusip)
	if !ok {
		return bond.Inquiry{}, fmt.Errorf("wire: inquiry line %q: unknown CUSIP %s", line, cusip)
	}
	qty, err := strconv.ParseInt(qtyStr, 10, 64)
	if err != nil {
		return bond.Inquiry{}, fmt.Errorf("wire: inquiry line %q: qty %w", line, err)
	}
	side := bond.Sell
	if sideStr == "0" {
		side = bond.Buy
	}
	return bond.Inquiry{
		InquiryID: inquiryID,
		Product:   b,
		Side:      side,
		Quantity:  qty,
		State:     bond.Received,
	}, nil
}

// ParseOrderBook decodes one line of the MarketData feed (port 8082):
// "CUSIP, side,price,qtyCode, side,price,qtyCode, ..." — comma-space
// delimited, grounded on marketdatasocketreaderconnector.hpp's
// MakeOrderBook: the CUSIP precedes the first comma, then repeating
// 3-tuples of (side, price, qtyCode) follow, each tuple separated from the
// next by ", ".
func ParseOrderBook(line string, table *refdata.Table) (bond.OrderBook, error) {
	commaIdx := strings.IndexByte(line, ',')
	if commaIdx < 0 {
		return bond.OrderBook{}, fmt.Errorf("wire: market data line %q: no comma found", line)
	}
	cusip := line[:commaIdx]
	b, ok := table.Lookup(cusip)
	if !ok {
		return bond.OrderBook{}, fmt.Errorf("wire: market data line %q: unknown CUSIP %s", line, cusip)
	}

	rest := line[commaIdx+1:]
	rest = strings.TrimPrefix(rest, " ")
	tokens := splitCommaSpace(rest)
	if len(tokens)%3 != 0 || len(tokens) == 0 {
		return bond.OrderBook{}, fmt.Errorf("wire: market data line %q: tuples not a multiple of 3", line)
	}

	var bids, offers []bond.Order
	for i := 0; i+3 <= len(tokens); i += 3 {
		sideTok, priceTok, qtyTok := tokens[i], tokens[i+1], tokens[i+2]
		sideVal, err := strconv.Atoi(sideTok)
		if err != nil {
			return bond.OrderBook{}, fmt.Errorf("wire: market data line %q: side %w", line, err)
		}
		side := bond.Bid
		if sideVal != 0 {
			side = bond.Offer
		}
		price, err := ParsePriceToken(priceTok)
		if err != nil {
			return bond.OrderBook{}, fmt.Errorf("wire: market data line %q: %w", line, err)
		}
		qty, ok := QuantityCodes[qtyTok]
		if !ok {
			return bond.OrderBook{}, fmt.Errorf("wire: market data line %q: unknown quantity code %q", line, qtyTok)
		}
		order := bond.Order{Price: price, Quantity: qty, Side: side}
		if side == bond.Bid {
			bids = append(bids, order)
		} else {
			offers = append(offers, order)
		}
	}

	return bond.OrderBook{Product: b, Bids: bids, Offers: offers}, nil
}

// splitCommaSpace splits s on ", " the way MakeOrderBook's substr loop
// does (skip the comma and the single following space). A trailing token
// with no separator is returned as the final element.
func splitCommaSpace(s string) []string {
	var out []string
	for {
		idx := strings.IndexByte(s, ',')
		if idx < 0 {
			if s != "" {
				out = append(out, s)
			}
			return out
		}
		out = append(out, s[:idx])
		if idx+1 < len(s) && s[idx+1] == ' ' {
			s = s[idx+2:]
		} else {
			s = s[idx+1:]
		}
	}
}
