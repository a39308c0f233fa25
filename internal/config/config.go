// Package config loads process configuration from flags with environment
// variable fallback, matching the teacher's flag+env pattern
// (internal/config/config.go's envStr/envInt helpers).
package config

import (
	"flag"
	"os"
	"strconv"
)

// Config holds all bondpipe process configuration.
type Config struct {
	// Reference data
	BondCSVPath string

	// Inbound feed listen addresses
	PricesAddr     string
	TradesAddr     string
	MarketDataAddr string
	InquiriesAddr  string

	// Outbound publisher listen addresses
	StreamingAddr string
	ExecutionAddr string

	// REST read API + GUI websocket dashboard
	APIAddr string
	WSAddr  string

	// Historical CSV output directory
	HistoricalDir string

	// MongoDB audit mirror (empty MongoURI disables the mirror)
	MongoURI           string
	MongoDB            string
	AuditRetentionDays int

	// Cold storage: gzip+upload rotation of historical CSVs
	S3Bucket             string
	S3Region             string
	S3Prefix             string
	ColdStoreAfterHrs    int
	ColdStoreIntervalMin int
}

// Load parses flags (seeded from environment variables where set) into a
// Config.
func Load() *Config {
	c := &Config{}

	flag.StringVar(&c.BondCSVPath, "bond-csv", envStr("BOND_CSV_PATH", "TBonds.csv"), "path to the CUSIP reference data CSV")

	flag.StringVar(&c.PricesAddr, "prices-addr", envStr("PRICES_ADDR", ":8080"), "inbound prices feed listen address")
	flag.StringVar(&c.TradesAddr, "trades-addr", envStr("TRADES_ADDR", ":8081"), "inbound trades feed listen address")
	flag.StringVar(&c.MarketDataAddr, "marketdata-addr", envStr("MARKETDATA_ADDR", ":8082"), "inbound market data feed listen address")
	flag.StringVar(&c.InquiriesAddr, "inquiries-addr", envStr("INQUIRIES_ADDR", ":8083"), "inbound inquiries feed listen address")

	flag.StringVar(&c.StreamingAddr, "streaming-addr", envStr("STREAMING_ADDR", ":9000"), "outbound streaming publisher listen address")
	flag.StringVar(&c.ExecutionAddr, "execution-addr", envStr("EXECUTION_ADDR", ":3000"), "outbound execution publisher listen address")

	flag.StringVar(&c.APIAddr, "api-addr", envStr("API_ADDR", ":8085"), "REST read API listen address")
	flag.StringVar(&c.WSAddr, "ws-addr", envStr("WS_ADDR", ":8086"), "unused: the GUI websocket dashboard is served at /dashboard on api-addr")

	flag.StringVar(&c.HistoricalDir, "historical-dir", envStr("HISTORICAL_DIR", "./historical"), "directory for historical CSV output")

	flag.StringVar(&c.MongoURI, "mongo-uri", envStr("MONGO_URI", ""), "MongoDB URI for the audit mirror (empty disables it)")
	flag.StringVar(&c.MongoDB, "mongo-db", envStr("MONGO_DB", "bondpipe"), "MongoDB database name for the audit mirror")
	flag.IntVar(&c.AuditRetentionDays, "audit-retention-days", envInt("AUDIT_RETENTION_DAYS", 30), "days to keep mirrored trades before pruning (<= 0 disables pruning)")

	flag.StringVar(&c.S3Bucket, "s3-bucket", envStr("S3_BUCKET", ""), "S3 bucket for cold storage upload (empty disables upload, rotation still gzips locally)")
	flag.StringVar(&c.S3Region, "s3-region", envStr("S3_REGION", "us-east-1"), "AWS region for S3")
	flag.StringVar(&c.S3Prefix, "s3-prefix", envStr("S3_PREFIX", "bondpipe"), "S3 key prefix for cold-stored historical files")
	flag.IntVar(&c.ColdStoreAfterHrs, "coldstore-after-hours", envInt("COLDSTORE_AFTER_HOURS", 24), "rotate a historical file to cold storage once it's this many hours old")
	flag.IntVar(&c.ColdStoreIntervalMin, "coldstore-interval-minutes", envInt("COLDSTORE_INTERVAL_MINUTES", 60), "minutes between cold storage rotation cycles")

	flag.Parse()
	return c
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
